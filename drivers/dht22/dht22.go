// Package dht22 reads the DHT22 (AM2302) humidity/temperature sensor over its
// single-wire protocol.
//
// A read is a fixed sequence:
//
//	host:   hold the line low 18 ms, release, settle 40 µs
//	sensor: presence pulse (low ~80 µs, high ~80 µs)
//	sensor: 40 bits, MSB first; each bit is ~50 µs low then a high pulse
//	        whose length (~26 µs or ~70 µs) encodes 0 or 1
//
// The 18 ms reset is a scheduler suspension; everything after the release is
// busy-waited with microsecond polls and never yields.
package dht22

import (
	"errors"
	"math"

	"thermofuse-go/errcode"
)

// Line is the open-drain data pin. High releases the line to the pull-up.
type Line interface {
	Low()
	High()
	Get() bool
}

// Delayer provides busy microsecond delays.
type Delayer interface {
	DelayMicro(us uint32)
}

// Protocol budgets in microseconds unless noted.
const (
	resetLowMs   = 18
	settleUs     = 40
	edgePolls    = 100 // 1 µs polls per edge before giving up
	sampleUs     = 35
	trailGuardUs = 30
)

// Causes carried by errors from Read; test for them with errors.Is or
// errcode.Of.
var (
	ErrTimeout  = errors.New("no edge within budget")
	ErrChecksum = errors.New("checksum mismatch")
)

func timeoutIn(phase string) error {
	return &errcode.E{C: errcode.Timeout, Op: "dht22", Msg: phase, Err: ErrTimeout}
}

// Measurement is one decoded frame.
type Measurement struct {
	Temperature float32 // °C
	Humidity    float32 // %RH
}

// Frame is the raw transmission: humidity high/low, temperature high/low,
// checksum.
type Frame [5]byte

// Sum is the checksum the first four bytes call for.
func (f Frame) Sum() byte { return f[0] + f[1] + f[2] + f[3] }

// Valid reports whether the checksum byte matches.
func (f Frame) Valid() bool { return f.Sum() == f[4] }

// Decode converts f. On checksum mismatch it still returns the values the
// bytes would carry along with an error wrapping ErrChecksum.
func Decode(f Frame) (Measurement, error) {
	m := Measurement{
		Humidity:    float32(uint16(f[0])<<8|uint16(f[1])) / 10,
		Temperature: float32(uint16(f[2]&0x7F)<<8|uint16(f[3])) / 10,
	}
	if f[2]&0x80 != 0 {
		m.Temperature = -m.Temperature
	}
	if !f.Valid() {
		return m, &errcode.E{C: errcode.ChecksumMismatch, Op: "dht22", Err: ErrChecksum}
	}
	return m, nil
}

// Encode builds the frame a sensor would send for m, rounding to tenths.
func Encode(m Measurement) Frame {
	h := uint16(math.Round(float64(m.Humidity) * 10))
	t := float64(m.Temperature)
	neg := math.Signbit(t)
	raw := uint16(math.Round(math.Abs(t)*10)) & 0x7FFF

	var f Frame
	f[0], f[1] = byte(h>>8), byte(h)
	f[2], f[3] = byte(raw>>8), byte(raw)
	if neg {
		f[2] |= 0x80
	}
	f[4] = f.Sum()
	return f
}
