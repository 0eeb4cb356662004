package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"dashan/core"
	"dashan/host/robot"
	"dashan/protocol"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live TUI showing status, sensors, and protocol statistics",
	Long: `Monitor the robot in a live terminal UI.

The top panels show the last status and sensor frames, the stats bar
tracks the protocol engine counters, and the input line at the bottom
sends commands:

  state <name>          request a state transition
  expr <name> [ms]      show an expression, optionally timed
  servo <h|v> <angle>   move a servo
  gaze <x> <y>          point the gaze (-100..100)
  center                re-center the gaze
  record [seconds]      start recording
  camera [seconds]      start periodic capture
  stop                  stop recording and capture`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type monTickMsg time.Time

type monStatusMsg robot.Status

type monSensorMsg robot.SensorReading

type monErrorMsg robot.ErrorReport

type monAudioMsg int // chunk size in bytes

type monImageMsg struct {
	frame uint16
	size  int
}

type monFaultMsg struct {
	cmd uint8
	err error
}

type monLogMsg struct {
	text    string
	isError bool
}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

type monLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

type monModel struct {
	client   *robot.Client
	connInfo string

	lastStatus   *robot.Status
	statusAt     time.Time
	lastSensor   *robot.SensorReading
	sensorAt     time.Time
	stats        protocol.Stats
	audioChunks  int
	audioBytes   int
	imagesSaved  int
	lastImage    *monImageMsg
	pollCooldown int

	input         textinput.Model
	eventLog      []monLogEntry
	maxLogEntries int

	width    int
	height   int
	quitting bool
}

func initialMonModel(client *robot.Client, connInfo string) monModel {
	ti := textinput.New()
	ti.Placeholder = "state wake"
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Focus()

	return monModel{
		client:        client,
		connInfo:      connInfo,
		input:         ti,
		eventLog:      make([]monLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func monTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monTickMsg(t)
	})
}

func (m monModel) Init() tea.Cmd {
	return tea.Batch(
		monTickCmd(),
		monPollCmd(m.client),
		tea.EnterAltScreen,
	)
}

// monPollCmd requests a status frame; the reply arrives through the
// push callback, so only failures produce a message here.
func monPollCmd(c *robot.Client) tea.Cmd {
	return func() tea.Msg {
		if _, err := c.GetStatus(); err != nil {
			return monLogMsg{text: fmt.Sprintf("status poll failed: %v", err), isError: true}
		}
		return nil
	}
}

//////////////////////////////////////////////////////////////
// Update
//////////////////////////////////////////////////////////////

func (m monModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			if line == "q" || line == "quit" {
				m.quitting = true
				return m, tea.Quit
			}
			cmd, err := m.dispatchCommand(line)
			if err != nil {
				m.addLogEntry(err.Error(), true)
				return m, nil
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monTickMsg:
		m.stats = m.client.Stats()
		m.pollCooldown++
		if m.pollCooldown >= 2 {
			m.pollCooldown = 0
			return m, tea.Batch(monTickCmd(), monPollCmd(m.client))
		}
		return m, monTickCmd()

	case monStatusMsg:
		st := robot.Status(msg)
		if m.lastStatus == nil || m.lastStatus.State != st.State {
			m.addLogEntry(fmt.Sprintf("state: %s", st.State), false)
		}
		m.lastStatus = &st
		m.statusAt = time.Now()

	case monSensorMsg:
		r := robot.SensorReading(msg)
		m.lastSensor = &r
		m.sensorAt = time.Now()

	case monErrorMsg:
		e := robot.ErrorReport(msg)
		m.addLogEntry(fmt.Sprintf("robot error: %s in %s (detail 0x%02X)", e.Code, e.Component, e.Detail), true)

	case monAudioMsg:
		m.audioChunks++
		m.audioBytes += int(msg)

	case monImageMsg:
		m.imagesSaved++
		img := msg
		m.lastImage = &img
		m.addLogEntry(fmt.Sprintf("image frame %d (%d bytes)", msg.frame, msg.size), false)

	case monFaultMsg:
		m.addLogEntry(fmt.Sprintf("protocol fault on %s: %v", protocol.CmdName(msg.cmd), msg.err), true)

	case monLogMsg:
		m.addLogEntry(msg.text, msg.isError)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *monModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, monLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// Input commands
//////////////////////////////////////////////////////////////

// dispatchCommand turns an input line into a tea.Cmd that performs
// the client call off the UI goroutine.
func (m *monModel) dispatchCommand(line string) (tea.Cmd, error) {
	fields := strings.Fields(line)
	c := m.client

	switch fields[0] {
	case "state":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: state <name>")
		}
		target, ok := core.StateByName(fields[1])
		if !ok {
			return nil, fmt.Errorf("unknown state %q", fields[1])
		}
		return func() tea.Msg {
			if _, err := c.SetState(target); err != nil {
				return monLogMsg{text: fmt.Sprintf("state %s: %v", target, err), isError: true}
			}
			return nil
		}, nil

	case "expr", "expression":
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("usage: expr <name> [ms]")
		}
		id, err := parseExpression(fields[1])
		if err != nil {
			return nil, err
		}
		var durationMS uint16
		if len(fields) == 3 {
			n, err := strconv.ParseUint(fields[2], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("bad duration %q", fields[2])
			}
			durationMS = uint16(n)
		}
		name := core.ExpressionName(id)
		return func() tea.Msg {
			if err := c.SetExpression(id, 0, durationMS); err != nil {
				return monLogMsg{text: fmt.Sprintf("expr %s: %v", name, err), isError: true}
			}
			return monLogMsg{text: fmt.Sprintf("expression: %s", name)}
		}, nil

	case "servo":
		if len(fields) != 3 {
			return nil, fmt.Errorf("usage: servo <h|v> <angle>")
		}
		id, err := parseServoID(fields[1])
		if err != nil {
			return nil, err
		}
		angle, err := strconv.ParseUint(fields[2], 10, 16)
		if err != nil || angle > 180 {
			return nil, fmt.Errorf("angle must be 0-180")
		}
		return func() tea.Msg {
			if err := c.SetServo(id, uint16(angle), 0); err != nil {
				return monLogMsg{text: fmt.Sprintf("servo: %v", err), isError: true}
			}
			return monLogMsg{text: fmt.Sprintf("servo %s -> %d°", fields[1], angle)}
		}, nil

	case "gaze":
		if len(fields) != 3 {
			return nil, fmt.Errorf("usage: gaze <x> <y>")
		}
		x, err := parseGazeAxis(fields[1])
		if err != nil {
			return nil, err
		}
		y, err := parseGazeAxis(fields[2])
		if err != nil {
			return nil, err
		}
		return func() tea.Msg {
			if err := c.SetGaze(x, y); err != nil {
				return monLogMsg{text: fmt.Sprintf("gaze: %v", err), isError: true}
			}
			return monLogMsg{text: fmt.Sprintf("gaze -> (%d, %d)", x, y)}
		}, nil

	case "center":
		return func() tea.Msg {
			if err := c.SetGaze(0, 0); err != nil {
				return monLogMsg{text: fmt.Sprintf("center: %v", err), isError: true}
			}
			return monLogMsg{text: "gaze centered"}
		}, nil

	case "record":
		maxS := uint8(10)
		if len(fields) == 2 {
			n, err := strconv.ParseUint(fields[1], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("bad duration %q", fields[1])
			}
			maxS = uint8(n)
		}
		return func() tea.Msg {
			if err := c.StartRecording(maxS); err != nil {
				return monLogMsg{text: fmt.Sprintf("record: %v", err), isError: true}
			}
			return monLogMsg{text: fmt.Sprintf("recording up to %ds", maxS)}
		}, nil

	case "camera":
		if len(fields) == 2 && fields[1] == "stop" {
			return func() tea.Msg {
				if err := c.StopCamera(); err != nil {
					return monLogMsg{text: fmt.Sprintf("camera stop: %v", err), isError: true}
				}
				return monLogMsg{text: "camera stopped"}
			}, nil
		}
		intervalS := uint8(2)
		if len(fields) == 2 {
			n, err := strconv.ParseUint(fields[1], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("bad interval %q", fields[1])
			}
			intervalS = uint8(n)
		}
		return func() tea.Msg {
			if err := c.StartCamera(intervalS); err != nil {
				return monLogMsg{text: fmt.Sprintf("camera: %v", err), isError: true}
			}
			return monLogMsg{text: fmt.Sprintf("camera every %ds", intervalS)}
		}, nil

	case "stop":
		return func() tea.Msg {
			if err := c.StopRecording(); err != nil {
				return monLogMsg{text: fmt.Sprintf("stop: %v", err), isError: true}
			}
			if err := c.StopCamera(); err != nil {
				return monLogMsg{text: fmt.Sprintf("camera stop: %v", err), isError: true}
			}
			return monLogMsg{text: "recording and camera stopped"}
		}, nil
	}

	return nil, fmt.Errorf("unknown command %q (state, expr, servo, gaze, center, record, camera, stop)", fields[0])
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m monModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("DASHAN MONITOR"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | esc=quit", m.connInfo)))
	s.WriteString("\n\n")

	// Status and sensor panels side by side
	statusPanel := boxStyle.Render(m.renderStatus(labelStyle, valueStyle, headerStyle))
	sensorPanel := boxStyle.Render(m.renderSensors(labelStyle, valueStyle, warningStyle, headerStyle))
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, statusPanel, " ", sensorPanel))
	s.WriteString("\n\n")

	// Stats bar
	s.WriteString(boxStyle.Width(m.width - 4).Render(m.renderStats(labelStyle, valueStyle, errorStyle)))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Width(m.width - 4).Render(m.renderEventLog(headerStyle, warningStyle, errorStyle)))
	s.WriteString("\n\n")

	// Command input
	s.WriteString(m.input.View())
	s.WriteString("\n")

	return s.String()
}

func (m monModel) renderStatus(labelStyle, valueStyle, headerStyle lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("ROBOT"))
	b.WriteString("\n")
	if m.lastStatus == nil {
		b.WriteString(headerStyle.Render("waiting for status..."))
		return b.String()
	}
	st := m.lastStatus
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("State:"), valueStyle.Render(st.State.String())))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Battery:"), valueStyle.Render(fmt.Sprintf("%d%%", st.Battery))))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Face:"), valueStyle.Render(core.ExpressionName(st.Expression))))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Servos:"), valueStyle.Render(fmt.Sprintf("h=%d° v=%d°", st.ServoH, st.ServoV))))
	b.WriteString(headerStyle.Render(fmt.Sprintf("as of %s", m.statusAt.Format("15:04:05"))))
	return b.String()
}

func (m monModel) renderSensors(labelStyle, valueStyle, warningStyle, headerStyle lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("SENSORS"))
	b.WriteString("\n")
	if m.lastSensor == nil {
		b.WriteString(headerStyle.Render("waiting for sensor data..."))
		return b.String()
	}
	r := m.lastSensor
	if r.Distance == core.InvalidDistance {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Distance:"), warningStyle.Render("out of range")))
	} else {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Distance:"), valueStyle.Render(fmt.Sprintf("%d cm", r.Distance))))
	}
	prox := "clear"
	style := valueStyle
	if r.Proximity {
		prox = "NEAR"
		style = warningStyle
	}
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Proximity:"), style.Render(prox)))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Light:"), valueStyle.Render(fmt.Sprintf("%d/255", r.Light))))
	if m.audioChunks > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Audio:"), valueStyle.Render(fmt.Sprintf("%d chunks, %d KB", m.audioChunks, m.audioBytes/1024))))
	}
	if m.lastImage != nil {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Camera:"), valueStyle.Render(fmt.Sprintf("%d frames, last %d B", m.imagesSaved, m.lastImage.size))))
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("as of %s", m.sensorAt.Format("15:04:05"))))
	return b.String()
}

func (m monModel) renderStats(labelStyle, valueStyle, errorStyle lipgloss.Style) string {
	errCount := m.stats.ChecksumErrors + m.stats.LengthErrors + m.stats.UnknownCommands + m.stats.HandlerErrors
	errText := valueStyle.Render("0")
	if errCount > 0 {
		errText = errorStyle.Render(strconv.FormatUint(uint64(errCount), 10))
	}
	return fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		labelStyle.Render("Frames in:"), valueStyle.Render(strconv.FormatUint(uint64(m.stats.FramesIn), 10)),
		labelStyle.Render("out:"), valueStyle.Render(strconv.FormatUint(uint64(m.stats.FramesOut), 10)),
		labelStyle.Render("Errors:"), errText,
		labelStyle.Render("Dropped:"), valueStyle.Render(strconv.FormatUint(uint64(m.stats.DroppedOutbound), 10)),
	)
}

func (m monModel) renderEventLog(headerStyle, warningStyle, errorStyle lipgloss.Style) string {
	logHeight := m.height - 18
	if logHeight < 4 {
		logHeight = 4
	}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		return headerStyle.Render("  (no events yet)")
	}

	var b strings.Builder
	for i := startIdx; i < len(m.eventLog); i++ {
		entry := m.eventLog[i]
		icon := "i"
		style := warningStyle
		if entry.isError {
			icon = "x"
			style = errorStyle
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
			style.Render(icon),
			entry.message))
	}
	return b.String()
}

//////////////////////////////////////////////////////////////
// Entry point
//////////////////////////////////////////////////////////////

func runMonitor(cmd *cobra.Command, args []string) error {
	c, info, err := dialRobot()
	if err != nil {
		return err
	}
	defer c.Close()

	m := initialMonModel(c, info)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Push callbacks feed the TUI; an assembler folds image chunks
	// into whole frames before they reach the model.
	var asm robot.FrameAssembler
	c.OnStatus(func(st robot.Status) { p.Send(monStatusMsg(st)) })
	c.OnSensor(func(r robot.SensorReading) { p.Send(monSensorMsg(r)) })
	c.OnErrorReport(func(e robot.ErrorReport) { p.Send(monErrorMsg(e)) })
	c.OnAudio(func(a robot.AudioChunk) { p.Send(monAudioMsg(len(a.PCM))) })
	c.OnImage(func(ch robot.ImageChunk) {
		if id, data, done := asm.Add(ch); done {
			p.Send(monImageMsg{frame: id, size: len(data)})
		}
	})
	c.OnProtocolFault(func(cmd uint8, err error) { p.Send(monFaultMsg{cmd: cmd, err: err}) })
	c.Start()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
