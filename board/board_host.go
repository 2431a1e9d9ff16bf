//go:build !(rp2040 || rp2350)

package board

import (
	"os"
	"sync/atomic"

	"thermofuse-go/board/simbus"
	"thermofuse-go/drivers/dht22"
	"thermofuse-go/drivers/lm75"
)

// ID of the simulated board. It shares the reference board's configuration.
const ID = "pico"

// Sim gives access to the simulated parts behind a host board.
type Sim struct {
	Bus    *simbus.Bus
	LM75   *simbus.LM75
	DS3231 *simbus.DS3231
	BME280 *simbus.BME280
	DHT    *dht22.Sim
	LED    *LED
}

// Per-part offsets from ambient so the sources disagree a little.
const (
	offLM75   = 0.0
	offDS3231 = 0.75
	offBME280 = -0.5
	offDHT22  = 0.3
)

// NewSim builds the simulated parts at ambient °C.
func NewSim(ambient float32) *Sim {
	s := &Sim{
		Bus:    simbus.New(),
		LM75:   simbus.NewLM75(lm75.Res11Bit),
		DS3231: simbus.NewDS3231(),
		BME280: simbus.NewBME280(),
		DHT:    dht22.NewSim(dht22.Measurement{Temperature: ambient, Humidity: 45}),
		LED:    new(LED),
	}
	s.Bus.Attach(lm75.Address, s.LM75)
	s.Bus.Attach(0x68, s.DS3231)
	s.Bus.Attach(0x77, s.BME280)
	s.SetAmbient(ambient)
	return s
}

// SetAmbient moves every simulated sensor to ambient plus its offset.
func (s *Sim) SetAmbient(c float32) {
	s.LM75.SetTemperature(c + offLM75)
	s.DS3231.SetTemperature(c + offDS3231)
	s.BME280.SetTemperature(c + offBME280)
	s.DHT.Set(dht22.Measurement{Temperature: c + offDHT22, Humidity: 45})
}

// Board wires the simulation into a Board. The DHT22 model doubles as the
// delay source so single-wire timing runs on its virtual clock.
func (s *Sim) Board() *Board {
	return &Board{
		ID:    ID,
		I2C:   s.Bus,
		DHT:   s.DHT,
		Delay: s.DHT,
		LED:   s.LED,
		Log:   os.Stderr,
	}
}

// Open returns a simulated board at 21 °C.
func Open() (*Board, error) {
	return NewSim(21).Board(), nil
}

// LED records the activity output.
type LED struct {
	on      atomic.Bool
	toggles atomic.Uint32
}

func (l *LED) Set(v bool) {
	if l.on.Swap(v) != v {
		l.toggles.Add(1)
	}
}

func (l *LED) On() bool        { return l.on.Load() }
func (l *LED) Toggles() uint32 { return l.toggles.Load() }
