// Package report logs fused temperatures and a rolling summary.
package report

import (
	"thermofuse-go/bus"
	"thermofuse-go/sched"
	"thermofuse-go/x/logx"
)

// DefaultWindow is the number of fused values per summary.
const DefaultWindow = 10

type Service struct {
	topic bus.Topic
	win   *Window
	log   logx.Logger

	summaries uint32
	onSummary func(mean, lo, hi float32)
}

// New reports on topic with a window of size values.
func New(topic bus.Topic, size int, log logx.Logger) *Service {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Service{
		topic: topic,
		win:   NewWindow(size),
		log:   logx.OrNop(log).With("svc", "report"),
	}
}

// OnSummary registers a hook called with each window summary.
func (s *Service) OnSummary(f func(mean, lo, hi float32)) { s.onSummary = f }

// Start subscribes and spawns the report task on sp.
func (s *Service) Start(sp sched.Spawner, conn *bus.Connection) error {
	sub := conn.Subscribe(s.topic)
	if err := sp.Spawn("report", func(t *sched.Task) { s.loop(t, sub) }); err != nil {
		conn.Unsubscribe(sub)
		return err
	}
	return nil
}

func (s *Service) loop(t *sched.Task, sub *bus.Subscription) {
	defer sub.Unsubscribe()
	for {
		m, ok, err := sched.Recv(t, sub.Channel())
		if err != nil || !ok {
			return
		}
		v, ok := m.Payload.(float32)
		if !ok {
			continue
		}
		s.observe(v)
	}
}

func (s *Service) observe(v float32) {
	s.log.Debug("fused average", "temp", v)
	if !s.win.Push(v) {
		return
	}
	mean := s.win.Mean()
	lo, hi := s.win.Range()
	s.summaries++
	s.log.Info("window average", "temp", mean, "min", lo, "max", hi, "n", s.win.Len())
	if s.onSummary != nil {
		s.onSummary(mean, lo, hi)
	}
}
