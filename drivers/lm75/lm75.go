// Package lm75 drives the LM75 family of I2C digital thermometers (LM75A,
// LM75B, PCT2075).
//
// The temperature register is a left-aligned two's-complement word. Classic
// parts resolve 9 bits (0.5 °C); LM75B/PCT2075 resolve 11 bits (0.125 °C).
package lm75

import (
	"tinygo.org/x/drivers"
)

// Default I2C address (A2..A0 low).
const Address = 0x48

// Registers.
const (
	regTemp   = 0x00
	regConfig = 0x01
)

const cfgShutdown = 0x01

// Resolution of the temperature register.
type Resolution uint8

const (
	Res9Bit  Resolution = 9
	Res11Bit Resolution = 11
)

// Device wraps an I2C connection to an LM75.
type Device struct {
	bus     drivers.I2C
	Address uint16
	res     Resolution
	buf     [2]byte
}

// New creates a 9-bit LM75 at the default address. It does not touch the bus.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address, res: Res9Bit}
}

// NewPCT2075 creates an 11-bit device (PCT2075, LM75B).
func NewPCT2075(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address, res: Res11Bit}
}

func (d *Device) Resolution() Resolution { return d.res }

// Enable clears the shutdown bit, leaving the other configuration bits alone.
func (d *Device) Enable() error { return d.setShutdown(false) }

// Disable puts the device into shutdown; conversions stop.
func (d *Device) Disable() error { return d.setShutdown(true) }

func (d *Device) setShutdown(off bool) error {
	if err := d.bus.Tx(d.Address, []byte{regConfig}, d.buf[:1]); err != nil {
		return err
	}
	cfg := d.buf[0] &^ cfgShutdown
	if off {
		cfg |= cfgShutdown
	}
	return d.bus.Tx(d.Address, []byte{regConfig, cfg}, nil)
}

// ReadTemperature returns the temperature in milli-degrees Celsius, as the
// tinygo drivers do.
func (d *Device) ReadTemperature() (int32, error) {
	if err := d.bus.Tx(d.Address, []byte{regTemp}, d.buf[:2]); err != nil {
		return 0, err
	}
	return d.toMilliC(int16(uint16(d.buf[0])<<8 | uint16(d.buf[1]))), nil
}

func (d *Device) toMilliC(raw int16) int32 {
	if d.res == Res11Bit {
		return int32(raw>>5) * 125
	}
	return int32(raw>>7) * 500
}

// ReadCelsius is ReadTemperature in degrees.
func (d *Device) ReadCelsius() (float32, error) {
	mc, err := d.ReadTemperature()
	if err != nil {
		return 0, err
	}
	return float32(mc) / 1000, nil
}

// Encode is the register word a device of this resolution reports for t in
// milli-degrees. Useful for bus simulations.
func Encode(res Resolution, milliC int32) [2]byte {
	var raw int16
	if res == Res11Bit {
		raw = int16(milliC/125) << 5
	} else {
		raw = int16(milliC/500) << 7
	}
	return [2]byte{byte(uint16(raw) >> 8), byte(raw)}
}
