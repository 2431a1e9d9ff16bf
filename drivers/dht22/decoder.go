package dht22

import (
	"time"
)

// Decoder drives one read of the protocol.
type Decoder struct {
	line  Line
	delay Delayer
}

func NewDecoder(line Line, delay Delayer) *Decoder {
	return &Decoder{line: line, delay: delay}
}

// Read performs one full transaction. wait must suspend the caller for the
// given duration (the reset pulse); it is the only point where Read gives up
// the processor. An error from wait aborts the read with the line released.
func (d *Decoder) Read(wait func(time.Duration) error) (Measurement, error) {
	d.line.Low()
	if err := wait(resetLowMs * time.Millisecond); err != nil {
		d.line.High()
		return Measurement{}, err
	}
	d.line.High()
	d.delay.DelayMicro(settleUs)

	if !d.waitFor(true) {
		return Measurement{}, timeoutIn("presence high")
	}
	if !d.waitFor(false) {
		return Measurement{}, timeoutIn("presence low")
	}

	var f Frame
	for i := range f {
		b, err := d.readByte()
		if err != nil {
			return Measurement{}, err
		}
		f[i] = b
	}
	m, err := Decode(f)
	if err != nil {
		return Measurement{}, err
	}
	d.delay.DelayMicro(trailGuardUs)
	return m, nil
}

func (d *Decoder) readByte() (byte, error) {
	var b byte
	for n := 0; n < 8; n++ {
		if !d.waitFor(true) {
			return 0, timeoutIn("bit start")
		}
		d.delay.DelayMicro(sampleUs)
		if d.line.Get() {
			b |= 1 << (7 - n)
			if !d.waitFor(false) {
				return 0, timeoutIn("bit end")
			}
		}
	}
	return b, nil
}

// waitFor polls the line up to edgePolls times, 1 µs apart.
func (d *Decoder) waitFor(level bool) bool {
	for i := 0; i < edgePolls; i++ {
		if d.line.Get() == level {
			return true
		}
		d.delay.DelayMicro(1)
	}
	return false
}
