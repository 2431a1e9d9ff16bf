// Package sensor defines the temperature capability the fusion pipeline
// consumes and the register-bus pollers that implement it.
//
// A source is split in two halves: a runner task that owns the device and
// refreshes a Cell, and any number of cheap handles that read the Cell.
package sensor

import (
	"time"

	"thermofuse-go/sched"
)

// TemperatureSensor is one temperature source.
type TemperatureSensor interface {
	// Interval is how often a fresh value can be expected.
	Interval() time.Duration
	// Temperature returns the latest value in °C. It may suspend t briefly
	// on the source's lock but never touches the bus.
	Temperature(t *sched.Task) float32
}

// Hygrometer is implemented by sources that also report relative humidity.
type Hygrometer interface {
	Humidity(t *sched.Task) float32
}

// Cell holds the last good value of one source.
type Cell struct {
	mu    sched.Mutex
	v     float32
	at    time.Time
	count uint32
}

// Store replaces the value. t may be nil outside a task.
func (c *Cell) Store(t *sched.Task, v float32) {
	c.mu.Lock(t)
	c.v = v
	c.at = time.Now()
	c.count++
	c.mu.Unlock()
}

// Load returns the value, 0 until the first Store.
func (c *Cell) Load(t *sched.Task) float32 {
	c.mu.Lock(t)
	defer c.mu.Unlock()
	return c.v
}

// Updated reports when the value was last stored and how many stores there
// have been.
func (c *Cell) Updated(t *sched.Task) (time.Time, uint32) {
	c.mu.Lock(t)
	defer c.mu.Unlock()
	return c.at, c.count
}

// Handle reads a Cell.
type Handle struct {
	cell     *Cell
	interval time.Duration
}

func NewHandle(c *Cell, interval time.Duration) Handle {
	return Handle{cell: c, interval: interval}
}

func (h Handle) Interval() time.Duration { return h.interval }

func (h Handle) Temperature(t *sched.Task) float32 { return h.cell.Load(t) }
