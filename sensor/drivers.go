package sensor

import (
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bme280"
	"tinygo.org/x/drivers/ds3231"

	"thermofuse-go/drivers/lm75"
	"thermofuse-go/errcode"
)

// RegisterDriver is a register-bus thermometer.
type RegisterDriver interface {
	// Enable prepares the device once at start-up.
	Enable() error
	// ReadCelsius performs one bus read.
	ReadCelsius() (float32, error)
}

// Default intervals per part.
const (
	LM75Interval   = 100 * time.Millisecond
	DS3231Interval = 2 * time.Second
	BME280Interval = time.Second
)

// NewLM75 returns an 11-bit LM75B/PCT2075 on bus.
func NewLM75(bus drivers.I2C, addr uint16) RegisterDriver {
	d := lm75.NewPCT2075(bus)
	if addr != 0 {
		d.Address = addr
	}
	return &d
}

// DS3231 uses the RTC's on-die temperature sensor.
type DS3231 struct {
	dev ds3231.Device
}

func NewDS3231(bus drivers.I2C, addr uint16) *DS3231 {
	s := &DS3231{dev: ds3231.New(bus)}
	if addr != 0 {
		s.dev.Address = addr
	}
	return s
}

// Enable starts the oscillator; the temperature converter runs off it.
func (s *DS3231) Enable() error {
	if !s.dev.Configure() {
		return &errcode.E{C: errcode.SensorInitFailure, Op: "ds3231", Msg: "configure"}
	}
	if err := s.dev.SetRunning(true); err != nil {
		return errcode.Wrap(errcode.SensorInitFailure, "ds3231", err)
	}
	return nil
}

func (s *DS3231) ReadCelsius() (float32, error) {
	mc, err := s.dev.ReadTemperature()
	if err != nil {
		return 0, err
	}
	return float32(mc) / 1000, nil
}

// BME280 reads only the temperature channel of the combo sensor.
type BME280 struct {
	dev bme280.Device
}

func NewBME280(bus drivers.I2C, addr uint16) *BME280 {
	s := &BME280{dev: bme280.New(bus)}
	if addr != 0 {
		s.dev.Address = addr
	}
	return s
}

// Enable checks the chip ID then loads calibration and sets normal mode.
func (s *BME280) Enable() error {
	if !s.dev.Connected() {
		return &errcode.E{C: errcode.SensorInitFailure, Op: "bme280", Msg: "not connected"}
	}
	s.dev.Configure()
	return nil
}

func (s *BME280) ReadCelsius() (float32, error) {
	mc, err := s.dev.ReadTemperature()
	if err != nil {
		return 0, err
	}
	return float32(mc) / 1000, nil
}
