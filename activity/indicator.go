// Package activity drives the "scheduler busy" LED.
//
// Every interrupt-bound tier sets the indicator on its wake path and the idle
// loop clears it right before waiting for an event. Writes from different
// tiers are not ordered against each other.
package activity

import "sync/atomic"

// Output is a single digital output, e.g. a GPIO pin driving an LED.
type Output interface {
	Set(level bool)
}

// Indicator mirrors the last written level and forwards it to an Output.
type Indicator struct {
	out   Output
	level atomic.Bool
	sets  atomic.Uint32
}

// New binds the indicator to out. A nil out keeps only the mirrored level.
func New(out Output) *Indicator {
	return &Indicator{out: out}
}

// Set writes the level straight through to the pin. No lock is taken.
func (i *Indicator) Set(working bool) {
	if i == nil {
		return
	}
	i.level.Store(working)
	if working {
		i.sets.Add(1)
	}
	if i.out != nil {
		i.out.Set(working)
	}
}

// Level reports the last level written by any tier.
func (i *Indicator) Level() bool { return i != nil && i.level.Load() }

// Wakes counts Set(true) calls since boot.
func (i *Indicator) Wakes() uint32 {
	if i == nil {
		return 0
	}
	return i.sets.Load()
}
