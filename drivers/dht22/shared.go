package dht22

import (
	"time"

	"thermofuse-go/sched"
)

// DefaultInterval between reads; the sensor needs ~1 s between conversions.
const DefaultInterval = time.Second

// Shared holds the last good reading. The runner writes it, any number of
// Sensor handles read it.
type Shared struct {
	mu          sched.Mutex
	temperature float32
	humidity    float32
}

// NewShared starts at 0 °C and 100 %RH until the first good frame.
func NewShared() *Shared {
	return &Shared{humidity: 100}
}

// Store replaces both values. t may be nil outside a task.
func (s *Shared) Store(t *sched.Task, m Measurement) {
	s.mu.Lock(t)
	s.temperature = m.Temperature
	s.humidity = m.Humidity
	s.mu.Unlock()
}

func (s *Shared) Load(t *sched.Task) Measurement {
	s.mu.Lock(t)
	defer s.mu.Unlock()
	return Measurement{Temperature: s.temperature, Humidity: s.humidity}
}

// Sensor is a cheap read handle over Shared.
type Sensor struct {
	shared   *Shared
	interval time.Duration
}

func (s Sensor) Interval() time.Duration { return s.interval }

func (s Sensor) Temperature(t *sched.Task) float32 { return s.shared.Load(t).Temperature }

func (s Sensor) Humidity(t *sched.Task) float32 { return s.shared.Load(t).Humidity }
