package dht22

import (
	"time"

	"thermofuse-go/errcode"
	"thermofuse-go/sched"
	"thermofuse-go/x/logx"
)

// Runner owns the line and refreshes Shared.
type Runner struct {
	dec      *Decoder
	shared   *Shared
	interval time.Duration
	log      logx.Logger

	ok, failed uint32
}

// New returns the read handle and the runner that feeds it. interval <= 0
// selects DefaultInterval.
func New(line Line, delay Delayer, interval time.Duration, log logx.Logger) (Sensor, *Runner) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	shared := NewShared()
	r := &Runner{
		dec:      NewDecoder(line, delay),
		shared:   shared,
		interval: interval,
		log:      logx.OrNop(log).With("sensor", "dht22"),
	}
	return Sensor{shared: shared, interval: interval}, r
}

// Run is the task body: read, then sleep one interval, until shutdown.
func (r *Runner) Run(t *sched.Task) {
	for {
		_ = r.read(t, t.Sleep)
		if err := t.Sleep(r.interval); err != nil {
			return
		}
	}
}

// read performs one attempt. Failures keep the previous reading.
func (r *Runner) read(t *sched.Task, wait func(time.Duration) error) error {
	m, err := r.dec.Read(wait)
	if err != nil {
		r.failed++
		if t == nil || t.Context().Err() == nil {
			r.log.Warn("read failed", "code", string(errcode.Of(err)), "err", err)
		}
		return err
	}
	r.ok++
	r.shared.Store(t, m)
	r.log.Trace("read", "temp", m.Temperature, "rh", m.Humidity)
	return nil
}

// Counts reports good and failed reads.
func (r *Runner) Counts() (ok, failed uint32) { return r.ok, r.failed }
