package sensor

import (
	"time"

	"thermofuse-go/errcode"
	"thermofuse-go/sched"
	"thermofuse-go/x/logx"
)

// PollerConfig describes one register-bus source.
type PollerConfig struct {
	Name     string
	Interval time.Duration
	// Required sources halt the system when Enable fails; others log and
	// keep reporting the initial value.
	Required bool
}

// Poller is the runner half of a register-bus source.
type Poller struct {
	cfg  PollerConfig
	drv  RegisterDriver
	cell *Cell
	halt func(error)
	log  logx.Logger

	reads, fails uint32
}

// NewPoller builds the runner and its read handle. halt is called when a
// required source cannot be enabled.
func NewPoller(cfg PollerConfig, drv RegisterDriver, halt func(error), log logx.Logger) (*Poller, Handle) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	p := &Poller{
		cfg:  cfg,
		drv:  drv,
		cell: new(Cell),
		halt: halt,
		log:  logx.OrNop(log).With("sensor", cfg.Name),
	}
	return p, NewHandle(p.cell, cfg.Interval)
}

func (p *Poller) Name() string { return p.cfg.Name }

// Run is the task body.
func (p *Poller) Run(t *sched.Task) {
	if !p.start() {
		return
	}
	// Let the other sources enable before the first read.
	if err := t.Yield(); err != nil {
		return
	}
	for {
		p.poll(t)
		if err := t.Sleep(p.cfg.Interval); err != nil {
			return
		}
	}
}

// start applies the init policy. It reports whether polling should go on.
func (p *Poller) start() bool {
	err := p.drv.Enable()
	if err == nil {
		p.log.Info("enabled", "interval_ms", p.cfg.Interval.Milliseconds())
		return true
	}
	if errcode.Of(err) != errcode.SensorInitFailure {
		err = errcode.Wrap(errcode.SensorInitFailure, p.cfg.Name, err)
	}
	if p.cfg.Required {
		p.log.Error("enable failed", "err", err)
		if p.halt != nil {
			p.halt(err)
		}
		return false
	}
	p.log.Warn("enable failed, continuing", "err", err)
	return true
}

// poll makes one attempt; a failure keeps the previous value.
func (p *Poller) poll(t *sched.Task) {
	v, err := p.drv.ReadCelsius()
	if err != nil {
		p.fails++
		p.log.Warn("read failed", "code", string(errcode.MapDriverErr(err)), "err", err)
		return
	}
	p.reads++
	p.cell.Store(t, v)
	p.log.Trace("read", "temp", v)
}

// Counts reports successful and failed reads.
func (p *Poller) Counts() (reads, fails uint32) { return p.reads, p.fails }
