// Package sched runs cooperative tasks on priority tiers.
//
// Tier 0 is the most urgent. Every tier except the last is bound to an
// irq.Line: waking one of its tasks pends the line, and the line's handler
// polls the tier's ready queue. The last tier runs in thread mode inside
// Runtime.Run and is the only place the processor idles.
//
// Within a tier exactly one task runs at a time and tasks interleave only at
// suspension points (Sleep, Await, Recv, Mutex.Lock and whatever is built on
// them). Across tiers, ordering follows the interrupt controller.
package sched

import (
	"context"
	"sync"

	"thermofuse-go/activity"
	"thermofuse-go/errcode"
	"thermofuse-go/irq"
	"thermofuse-go/x/logx"
)

// Tier is a priority level; lower is more urgent.
type Tier uint8

// TierConfig sizes one tier.
type TierConfig struct {
	Name     string
	PoolSize int // fixed task capacity
}

// TierStats is a snapshot of one tier.
type TierStats struct {
	Tier    Tier
	Name    string
	Started bool
	Live    int
	Ready   int
	Polls   uint32
}

type Option func(*Runtime)

// WithIndicator attaches the activity LED.
func WithIndicator(ind *activity.Indicator) Option { return func(r *Runtime) { r.ind = ind } }

// WithLogger sets the runtime logger.
func WithLogger(l logx.Logger) Option { return func(r *Runtime) { r.log = logx.OrNop(l) } }

// WithFatal replaces the halt action (default: panic).
func WithFatal(f func(error)) Option { return func(r *Runtime) { r.fatal = f } }

// Runtime owns every tier.
type Runtime struct {
	ctl   *irq.Controller
	ind   *activity.Indicator
	log   logx.Logger
	fatal func(error)

	mu    sync.Mutex
	tiers []*executor
	ctx   context.Context
}

// New builds a runtime with one executor per entry in tiers. The last entry
// is the thread-mode tier; all others are interrupt tiers.
func New(ctl *irq.Controller, tiers []TierConfig, opts ...Option) (*Runtime, error) {
	if ctl == nil || len(tiers) < 1 {
		return nil, errcode.InvalidParams
	}
	r := &Runtime{
		ctl:   ctl,
		log:   logx.Nop(),
		fatal: func(err error) { panic(err) },
		ctx:   context.Background(),
	}
	for _, o := range opts {
		o(r)
	}
	for i, tc := range tiers {
		if tc.PoolSize <= 0 {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "sched", Msg: "pool size must be positive"}
		}
		r.tiers = append(r.tiers, &executor{
			rt:   r,
			tier: Tier(i),
			name: tc.Name,
			pool: tc.PoolSize,
		})
	}
	return r, nil
}

// Tiers returns the number of tiers including thread mode.
func (r *Runtime) Tiers() int { return len(r.tiers) }

// ThreadTier is the least urgent tier, hosted by Run.
func (r *Runtime) ThreadTier() Tier { return Tier(len(r.tiers) - 1) }

// Controller exposes the interrupt controller the runtime is bound to.
func (r *Runtime) Controller() *irq.Controller { return r.ctl }

// Start binds tier to line at prio and begins dispatching until ctx is
// done. It must be called at most once per interrupt tier; the thread-mode
// tier is started by Run.
func (r *Runtime) Start(ctx context.Context, tier Tier, line *irq.Line, prio irq.Priority) (Spawner, error) {
	if int(tier) >= len(r.tiers)-1 {
		return Spawner{}, &errcode.E{C: errcode.UnknownTier, Op: "sched.Start", Msg: "not an interrupt tier"}
	}
	if line == nil {
		return Spawner{}, errcode.InvalidParams
	}
	ex := r.tiers[tier]
	ex.mu.Lock()
	if ex.started {
		ex.mu.Unlock()
		return Spawner{}, &errcode.E{C: errcode.TierStarted, Op: "sched.Start", Msg: ex.name}
	}
	ex.started = true
	ex.line = line
	ex.ctx = ctx
	ex.mu.Unlock()

	line.SetPriority(prio)
	if err := line.Enable(ctx, ex.onInterrupt); err != nil {
		ex.mu.Lock()
		ex.started = false
		ex.line = nil
		ex.ctx = nil
		ex.mu.Unlock()
		return Spawner{}, errcode.Wrap(errcode.Busy, "sched.Start", err)
	}
	r.log.Info("tier started", "tier", int(tier), "name", ex.name, "irq", line.Name(), "prio", int(prio))
	// Tasks spawned before Start are already queued.
	if ex.readyLen() > 0 {
		line.Pend()
	}
	return Spawner{ex: ex}, nil
}

// Spawner returns the handle for tier. It is valid before the tier starts;
// tasks spawned early wait in the ready queue.
func (r *Runtime) Spawner(tier Tier) (Spawner, error) {
	if int(tier) >= len(r.tiers) {
		return Spawner{}, errcode.UnknownTier
	}
	return Spawner{ex: r.tiers[tier]}, nil
}

// Run spawns main on the thread-mode tier and polls that tier until ctx is
// done. With nothing ready it clears the activity indicator and waits for an
// event.
func (r *Runtime) Run(ctx context.Context, main TaskFunc) error {
	ex := r.tiers[len(r.tiers)-1]
	ex.mu.Lock()
	if ex.started {
		ex.mu.Unlock()
		return &errcode.E{C: errcode.TierStarted, Op: "sched.Run", Msg: ex.name}
	}
	ex.started = true
	ex.ctx = ctx
	ex.mu.Unlock()

	r.log.Info("tier started", "tier", int(ex.tier), "name", ex.name, "irq", "thread")
	if main != nil {
		if err := (Spawner{ex: ex}).Spawn("main", main); err != nil {
			return err
		}
	}
	for {
		if err := r.ctl.WaitThread(ctx); err != nil {
			return nil
		}
		if ex.poll() {
			continue
		}
		r.ind.Set(false)
		if err := r.ctl.WaitForEvent(ctx); err != nil {
			return nil
		}
	}
}

// Halt stops the system on an unrecoverable error.
func (r *Runtime) Halt(err error) {
	r.log.Error("halt", "err", err, "code", string(errcode.Of(err)))
	r.fatal(err)
}

// Stats snapshots every tier.
func (r *Runtime) Stats() []TierStats {
	out := make([]TierStats, 0, len(r.tiers))
	for _, ex := range r.tiers {
		ex.mu.Lock()
		out = append(out, TierStats{
			Tier: ex.tier, Name: ex.name, Started: ex.started,
			Live: ex.live, Ready: len(ex.ready), Polls: ex.polls,
		})
		ex.mu.Unlock()
	}
	return out
}

// -----------------------------------------------------------------------------
// Executor (one per tier)
// -----------------------------------------------------------------------------

type executor struct {
	rt   *Runtime
	tier Tier
	name string
	pool int

	mu      sync.Mutex
	line    *irq.Line // nil in thread mode
	ctx     context.Context
	started bool
	ready   []*Task
	live    int
	polls   uint32
}

func (ex *executor) context() context.Context {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if ex.ctx == nil {
		return ex.rt.ctx
	}
	return ex.ctx
}

func (ex *executor) readyLen() int {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return len(ex.ready)
}

// wake queues t and pends the tier's line (or sends the thread-mode event).
func (ex *executor) wake(t *Task) {
	ex.mu.Lock()
	ex.ready = append(ex.ready, t)
	line, started := ex.line, ex.started
	ex.mu.Unlock()

	switch {
	case line != nil:
		line.Pend()
	case started:
		ex.rt.ctl.SendEvent()
	}
}

func (ex *executor) onInterrupt() {
	ex.rt.ind.Set(true)
	ex.poll()
}

// poll runs every task that was ready on entry up to its next suspension
// point. Tasks woken meanwhile are picked up on the next entry. It reports
// whether anything ran.
func (ex *executor) poll() bool {
	ex.mu.Lock()
	batch := ex.ready
	ex.ready = nil
	if len(batch) > 0 {
		ex.polls++
	}
	thread := ex.line == nil
	ex.mu.Unlock()
	if len(batch) == 0 {
		return false
	}
	if thread {
		ex.rt.ind.Set(true)
	}
	for _, t := range batch {
		t.step()
	}
	return true
}

func (ex *executor) release() {
	ex.mu.Lock()
	ex.live--
	ex.mu.Unlock()
}
