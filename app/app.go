// Package app assembles the firmware from a board and a configuration.
package app

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"thermofuse-go/activity"
	"thermofuse-go/board"
	"thermofuse-go/bus"
	"thermofuse-go/config"
	"thermofuse-go/drivers/dht22"
	"thermofuse-go/irq"
	"thermofuse-go/sched"
	"thermofuse-go/sensor"
	"thermofuse-go/services/fusion"
	"thermofuse-go/services/loaddemo"
	"thermofuse-go/services/report"
	"thermofuse-go/sharedbus"
	"thermofuse-go/x/logx"
)

// Source describes one wired temperature source.
type Source struct {
	Name   string
	Kind   string
	Sensor sensor.TemperatureSensor
}

// App holds the singletons built at boot.
type App struct {
	Config    config.Config
	IRQ       *irq.Controller
	Runtime   *sched.Runtime
	Indicator *activity.Indicator
	Arbiter   *sharedbus.Arbiter
	Bus       *bus.Bus
	Fusion    *fusion.Service
	Report    *report.Service
	Sources   []Source

	log      logx.Logger
	spawners []sched.Spawner
}

type Option func(*options)

type options struct {
	fatal func(error)
}

// WithFatal replaces the runtime's halt action.
func WithFatal(f func(error)) Option { return func(o *options) { o.fatal = f } }

// Boot builds every component, starts the interrupt tiers and spawns all
// tasks. Tiers begin running as soon as they are started; thread-mode tasks
// wait for Run.
func Boot(ctx context.Context, b *board.Board, cfg config.Config, log logx.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "boot")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log = logx.OrNop(log)

	a := &App{
		Config:    cfg,
		IRQ:       irq.NewController(),
		Indicator: activity.New(b.LED),
		Bus:       bus.NewBus(cfg.Fusion.QueueLen),
		log:       log,
	}
	a.Arbiter = sharedbus.New("i2c0", b.I2C, a.IRQ)

	tiers := make([]sched.TierConfig, len(cfg.Tiers))
	for i, t := range cfg.Tiers {
		tiers[i] = sched.TierConfig{Name: t.Name, PoolSize: t.PoolSize}
	}
	rtOpts := []sched.Option{sched.WithIndicator(a.Indicator), sched.WithLogger(log.With("pkg", "sched"))}
	if o.fatal != nil {
		rtOpts = append(rtOpts, sched.WithFatal(o.fatal))
	}
	rt, err := sched.New(a.IRQ, tiers, rtOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "boot: scheduler")
	}
	a.Runtime = rt

	if err := a.startTiers(ctx); err != nil {
		return nil, err
	}
	if err := a.wireSources(b); err != nil {
		return nil, err
	}
	if err := a.startServices(); err != nil {
		return nil, err
	}
	log.Info("boot complete", "board", b.ID, "tiers", len(cfg.Tiers), "sources", len(a.Sources))
	return a, nil
}

func (a *App) startTiers(ctx context.Context) error {
	thread := a.Config.ThreadTier()
	a.spawners = make([]sched.Spawner, len(a.Config.Tiers))
	for i, t := range a.Config.Tiers {
		if i == thread {
			sp, err := a.Runtime.Spawner(sched.Tier(i))
			if err != nil {
				return errors.Wrap(err, "boot: thread tier")
			}
			a.spawners[i] = sp
			continue
		}
		line := a.IRQ.Line(t.IRQ, "irq"+strconv.Itoa(t.IRQ))
		sp, err := a.Runtime.Start(ctx, sched.Tier(i), line, irq.Priority(t.Priority))
		if err != nil {
			return errors.Wrapf(err, "boot: start tier %s", t.Name)
		}
		a.spawners[i] = sp
	}
	return nil
}

// wireSources spawns a runner and a sampler per source on the sensor tier.
func (a *App) wireSources(b *board.Board) error {
	active := a.Config.Active()
	chans := fusion.NewChannels(len(active))
	sp := a.spawners[a.Config.Fusion.SensorTier]
	dev := a.Arbiter.Device()

	for i, s := range active {
		interval := time.Duration(s.IntervalMs) * time.Millisecond
		pc := sensor.PollerConfig{Name: s.Name, Interval: interval, Required: s.Required}
		var drv sensor.RegisterDriver
		switch s.Kind {
		case config.KindLM75:
			drv = sensor.NewLM75(dev, s.Address)
		case config.KindDS3231:
			drv = sensor.NewDS3231(dev, s.Address)
		case config.KindBME280:
			drv = sensor.NewBME280(dev, s.Address)
		case config.KindDHT22:
			if b.DHT == nil || b.Delay == nil {
				return errors.Errorf("boot: source %s: board has no single-wire line", s.Name)
			}
			h, runner := dht22.New(b.DHT, b.Delay, interval, a.log)
			if err := sp.Spawn(s.Name, runner.Run); err != nil {
				return a.spawnFailed(s.Name, err)
			}
			if err := sp.Spawn(s.Name+"-sampler", fusion.NewSampler(h, chans.At(i)).Run); err != nil {
				return a.spawnFailed(s.Name, err)
			}
			a.Sources = append(a.Sources, Source{Name: s.Name, Kind: s.Kind, Sensor: h})
			continue
		}
		p, h := sensor.NewPoller(pc, drv, a.Runtime.Halt, a.log)
		if err := sp.Spawn(s.Name, p.Run); err != nil {
			return a.spawnFailed(s.Name, err)
		}
		if err := sp.Spawn(s.Name+"-sampler", fusion.NewSampler(h, chans.At(i)).Run); err != nil {
			return a.spawnFailed(s.Name, err)
		}
		a.Sources = append(a.Sources, Source{Name: s.Name, Kind: s.Kind, Sensor: h})
	}

	a.Fusion = fusion.New(chans, a.Bus.NewConnection("fusion"),
		fusion.WithRawTopics(a.Config.Fusion.RawTopics),
		fusion.WithLogger(a.log))
	return nil
}

// Task topology is static; running out of slots is fatal.
func (a *App) spawnFailed(name string, err error) error {
	a.Runtime.Halt(err)
	return errors.Wrapf(err, "boot: spawn %s", name)
}

func (a *App) startServices() error {
	if err := a.Fusion.Start(a.spawners[a.Config.Fusion.Tier]); err != nil {
		return a.spawnFailed("fusion", err)
	}
	if a.Config.Report.Enabled {
		a.Report = report.New(fusion.TopicFused, a.Config.Report.Window, a.log)
		if err := a.Report.Start(a.spawners[a.Config.Report.Tier], a.Bus.NewConnection("report")); err != nil {
			return a.spawnFailed("report", err)
		}
	}
	if a.Config.LoadDemo.Enabled {
		var loads []loaddemo.Load
		for i, ms := range a.Config.LoadDemo.BusyMs {
			if i >= len(a.spawners) {
				break
			}
			loads = append(loads, loaddemo.Load{
				Spawner: a.spawners[i],
				Name:    a.Config.Tiers[i].Name,
				Busy:    time.Duration(ms) * time.Millisecond,
			})
		}
		if err := loaddemo.Start(loads, a.log); err != nil {
			return a.spawnFailed("loaddemo", err)
		}
	}
	return nil
}

// Spawner returns the handle of tier i.
func (a *App) Spawner(i int) sched.Spawner { return a.spawners[i] }

// Run hosts the thread-mode tier until ctx is done.
func (a *App) Run(ctx context.Context) error {
	return a.Runtime.Run(ctx, nil)
}
