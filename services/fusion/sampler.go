package fusion

import (
	"thermofuse-go/sched"
	"thermofuse-go/sensor"
)

// Sampler forwards one source into its channel at the source's own pace.
type Sampler[S sensor.TemperatureSensor] struct {
	src S
	ch  *Channel
}

func NewSampler[S sensor.TemperatureSensor](src S, ch *Channel) *Sampler[S] {
	return &Sampler[S]{src: src, ch: ch}
}

// Run is the task body.
func (s *Sampler[S]) Run(t *sched.Task) {
	for {
		if err := s.ch.Send(t, s.src.Temperature(t)); err != nil {
			return
		}
		if err := t.Sleep(s.src.Interval()); err != nil {
			return
		}
	}
}
