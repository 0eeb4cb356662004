//go:build rp2040

package main

import (
	_ "embed"
	"machine"
	"runtime"
	"time"

	"dashan/core"
	"dashan/protocol"
	"dashan/standalone"
	"dashan/standalone/config"

	"tinygo.org/x/drivers/ws2812"
)

// Pin assignment for the Feather RP2040 carry board.
const (
	pinServoH  = machine.GPIO6  // D4, PWM slice 3 channel A
	pinServoV  = machine.GPIO7  // D5, PWM slice 3 channel B
	pinMatrix  = machine.GPIO8  // D6, matrix data in
	pinTrigger = machine.GPIO9  // D9, HC-SR04 trigger
	pinEcho    = machine.GPIO10 // D10, HC-SR04 echo
	pinStrap   = machine.GPIO11 // D11, low at boot selects the demo routine
)

// tickInterval is the control-loop cadence.
const tickInterval = 10 * time.Millisecond

// Factory tuning baked into the image. Units get re-flashed with their
// own blob after calibration.
//
//go:embed tuning.json
var tuningJSON []byte

var (
	rxFifo *protocol.FifoBuffer

	// Debug counters
	loopFaults   uint32
	readerFaults uint32
)

func main() {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	tuning, err := config.Load(tuningJSON)
	if err != nil {
		tuning = config.DefaultTuning()
	}

	pinMatrix.Configure(machine.PinConfig{Mode: machine.PinOutput})
	strip := ws2812.NewWS2812(pinMatrix)

	servo, err := newServoDriver()
	if err != nil {
		fatalBlink()
	}
	analog, err := newAnalogDriver()
	if err != nil {
		fatalBlink()
	}

	robot := core.NewRobot(core.Hardware{
		Servo:  standalone.WrapServo(servo, tuning),
		Strip:  strip,
		Audio:  silentAudio{},
		Ranger: newRangerDriver(pinTrigger, pinEcho),
		Analog: analog,
	})
	robot.FreeMem = freeMemory
	robot.Debug().SetWriter(func(msg string) {
		machine.Serial.Write([]byte(msg))
		machine.Serial.Write([]byte("\r\n"))
	})

	syncClock(robot.Clock())
	robot.Start()

	// The strap selects the host-less routine. Debug output goes to
	// USB serial there since no host is watching the link.
	var demo *standalone.Demo
	if demoStrapped() {
		robot.Debug().SetEnabled(true)
		demo = startDemo(robot, tuning)
	}

	rxFifo = protocol.NewFifoBuffer(512)
	go uartReaderLoop(uart)

	scratch := make([]byte, 256)
	for {
		// Recover from panics so a bad frame or driver fault cannot
		// brick the robot mid-conversation.
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopFaults++
					rxFifo.Reset()
				}
			}()

			syncClock(robot.Clock())
			n := rxFifo.Read(scratch)
			robot.Tick(scratch[:n], uart)
			if demo != nil {
				demo.Tick()
			}
		}()

		time.Sleep(tickInterval)
	}
}

// uartReaderLoop continuously moves link bytes into the FIFO so the
// UART hardware buffer never overruns between control ticks.
func uartReaderLoop(uart *machine.UART) {
	defer func() {
		if r := recover(); r != nil {
			readerFaults++
			// Restart the reader loop
			time.Sleep(100 * time.Millisecond)
			go uartReaderLoop(uart)
		}
	}()

	var b [1]byte
	for {
		if uart.Buffered() > 0 {
			c, err := uart.ReadByte()
			if err != nil {
				time.Sleep(time.Millisecond)
				continue
			}
			b[0] = c
			if rxFifo.Write(b[:]) == 0 {
				// FIFO full. Drop and let the checksum resync the
				// stream once the loop catches up.
				time.Sleep(10 * time.Millisecond)
			}
		} else {
			// Yield to avoid a busy loop
			time.Sleep(100 * time.Microsecond)
		}
	}
}

// startDemo brings up the scripted routine. Any failure falls back to
// normal host mode.
func startDemo(robot *core.Robot, tuning *standalone.Tuning) *standalone.Demo {
	demo, err := standalone.NewDemo(robot, tuning)
	if err != nil {
		robot.Debug().Println("demo: " + err.Error())
		return nil
	}
	if err := demo.Initialize(); err != nil {
		robot.Debug().Println("demo: " + err.Error())
		return nil
	}
	if err := demo.Start(); err != nil {
		robot.Debug().Println("demo: " + err.Error())
		return nil
	}
	return demo
}

// freeMemory reports the idle heap for heartbeat replies.
func freeMemory() uint32 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return uint32(ms.HeapIdle)
}

// fatalBlink traps unrecoverable boot failures on the status LED.
func fatalBlink() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
