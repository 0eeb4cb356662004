package core

import "dashan/protocol"

const (
	// InvalidDistance is the reported distance when ranging times out.
	InvalidDistance = 0xFFFF

	// ProximityThreshold is the distance in cm below which the
	// proximity flag raises.
	ProximityThreshold = 30

	// DefaultSensorInterval is the polling cadence in ms.
	DefaultSensorInterval = 100

	// DefaultBatteryThreshold is the percentage below which a
	// low-battery report is pushed.
	DefaultBatteryThreshold = 20

	lightSamples = 10
)

// SensorReading is one complete environment sample. The three fields
// always come from the same poll.
type SensorReading struct {
	Distance  uint16 // cm, InvalidDistance on timeout
	Proximity bool
	Light     uint8
}

// SensorPoller samples the ultrasonic ranger, ambient light and
// battery inputs at a fixed interval and pushes each fresh reading to
// the host as a CmdSensorData frame. Calls between intervals are
// no-ops, so running it every control-loop tick is fine.
type SensorPoller struct {
	ranger  Ranger
	adc     AnalogReader
	clock   *Clock
	eng     *protocol.Engine
	machine *Machine
	debug   *DebugLog
	report  ErrorReporter

	interval uint32
	last     uint32
	enabled  bool
	reading  SensorReading

	batteryThreshold uint8
	batteryLow       bool
}

func NewSensorPoller(ranger Ranger, adc AnalogReader, clock *Clock, eng *protocol.Engine, machine *Machine, debug *DebugLog) *SensorPoller {
	return &SensorPoller{
		ranger:           ranger,
		adc:              adc,
		clock:            clock,
		eng:              eng,
		machine:          machine,
		debug:            debug,
		enabled:          true,
		interval:         DefaultSensorInterval,
		reading:          SensorReading{Distance: InvalidDistance},
		batteryThreshold: DefaultBatteryThreshold,
	}
}

// SetReporter wires the sink for operationally significant faults.
func (p *SensorPoller) SetReporter(r ErrorReporter) {
	p.report = r
}

func (p *SensorPoller) SetEnabled(enabled bool) {
	p.enabled = enabled
}

// SetInterval changes the polling cadence. Zero polls every tick.
func (p *SensorPoller) SetInterval(ms uint32) {
	p.interval = ms
}

// SetBatteryThreshold changes the low-battery report trigger.
func (p *SensorPoller) SetBatteryThreshold(percent uint8) {
	p.batteryThreshold = percent
}

// Reading returns the most recent complete sample.
func (p *SensorPoller) Reading() SensorReading {
	return p.reading
}

// Poll takes a fresh sample if the interval has elapsed. One ranging
// measurement per poll: the proximity flag derives from the same
// distance that is stored and pushed.
func (p *SensorPoller) Poll() {
	if !p.enabled {
		return
	}
	now := p.clock.Now()
	if now-p.last < p.interval {
		return
	}
	p.last = now

	var r SensorReading
	echo, err := p.ranger.EchoMicros()
	if err != nil {
		r.Distance = InvalidDistance
	} else {
		r.Distance = uint16(echo * 34 / 2 / 1000)
	}
	r.Proximity = r.Distance != InvalidDistance && r.Distance < ProximityThreshold
	r.Light = p.readLight()
	p.reading = r

	p.pollBattery()

	prox := uint8(0)
	if r.Proximity {
		prox = 1
	}
	payload := make([]byte, 0, 4)
	payload = protocol.AppendU16(payload, r.Distance)
	payload = append(payload, prox, r.Light)
	_ = p.eng.Enqueue(protocol.Frame{Cmd: protocol.CmdSensorData, Data: payload})
}

// readLight averages several samples of the light input and scales the
// 16-bit mean down to 0-255. Failed samples count as dark.
func (p *SensorPoller) readLight() uint8 {
	var sum uint32
	for i := 0; i < lightSamples; i++ {
		raw, err := p.adc.ReadRaw(AnalogLight)
		if err != nil {
			continue
		}
		sum += uint32(raw)
	}
	return uint8((sum / lightSamples) >> 8)
}

// pollBattery refreshes the battery percentage and pushes a
// low-battery report once per downward threshold crossing.
func (p *SensorPoller) pollBattery() {
	raw, err := p.adc.ReadRaw(AnalogBattery)
	if err != nil {
		return
	}
	percent := uint8(uint32(raw) * 100 / 65535)
	if p.machine != nil {
		p.machine.SetBattery(percent)
	}
	if percent < p.batteryThreshold {
		if !p.batteryLow {
			p.batteryLow = true
			if p.debug != nil {
				p.debug.Record(EvtBatteryLow, percent, 0, p.clock.Now())
			}
			if p.report != nil {
				p.report(protocol.ErrorBatteryLow, protocol.ComponentSensor, percent)
			}
		}
	} else {
		p.batteryLow = false
	}
}
