// Package fusion merges per-source temperature readings into one value.
//
// Every source feeds a single-slot Channel through a Sampler. The fusion
// task takes whichever channel is full (lowest index first), records the
// value as that source's latest and publishes the mean of all latest values.
// Sources that have not reported yet count as 0.
package fusion

import (
	"thermofuse-go/bus"
	"thermofuse-go/sched"
	"thermofuse-go/x/logx"
)

// Topics published by the service.
var (
	TopicFused  = bus.T("temperature", "fused")
	topicSource = "source"
)

// SourceTopic is the raw-reading topic of source i.
func SourceTopic(i int) bus.Topic { return bus.T("temperature", topicSource, i) }

// Mean of v in index order. It is 0 for an empty slice.
func Mean(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	var sum float32
	for _, x := range v {
		sum += x
	}
	return sum / float32(len(v))
}

// Service owns the latest value per source.
type Service struct {
	chans *Channels
	last  []float32
	conn  *bus.Connection
	log   logx.Logger

	publishRaw bool
	fused      uint32
}

type Option func(*Service)

// WithRawTopics also publishes each reading on SourceTopic(i).
func WithRawTopics(on bool) Option { return func(s *Service) { s.publishRaw = on } }

func WithLogger(l logx.Logger) Option { return func(s *Service) { s.log = logx.OrNop(l) } }

func New(chans *Channels, conn *bus.Connection, opts ...Option) *Service {
	s := &Service{
		chans: chans,
		last:  make([]float32, chans.Len()),
		conn:  conn,
		log:   logx.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("svc", "fusion")
	return s
}

// Apply folds r into the latest values and returns the new mean.
func (s *Service) Apply(r Reading) float32 {
	if r.Source < 0 || r.Source >= len(s.last) {
		s.log.Warn("reading from unknown source", "source", r.Source)
		return Mean(s.last)
	}
	s.last[r.Source] = r.Value
	return Mean(s.last)
}

// Last returns a copy of the latest values.
func (s *Service) Last() []float32 { return append([]float32(nil), s.last...) }

func (s *Service) publish(r Reading, mean float32) {
	if s.conn == nil {
		return
	}
	if s.publishRaw {
		s.conn.Publish(s.conn.NewMessage(SourceTopic(r.Source), r.Value, false))
	}
	s.conn.Publish(s.conn.NewMessage(TopicFused, mean, false))
	s.fused++
}

// Run is the task body.
func (s *Service) Run(t *sched.Task) {
	s.log.Info("started", "sources", len(s.last))
	for {
		r, err := s.chans.Select(t)
		if err != nil {
			return
		}
		mean := s.Apply(r)
		s.log.Trace("reading", "source", r.Source, "temp", r.Value, "mean", mean)
		s.publish(r, mean)
	}
}

// Start spawns the fusion task on sp.
func (s *Service) Start(sp sched.Spawner) error {
	return sp.Spawn("fusion", s.Run)
}
