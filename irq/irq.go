// Package irq models a nested vectored interrupt controller in software.
//
// Each enabled Line owns a dispatcher goroutine that runs the line's handler
// whenever the line is pending and the controller's rules allow it to enter:
//
//   - the global mask (a critical section) is clear;
//   - no other line with the same or a more urgent priority is active;
//   - no other enabled line with a more urgent priority, or the same priority
//     and a lower number, is pending.
//
// A more urgent line may enter while a less urgent handler is mid-flight,
// which is how preemption is expressed. Numerically lower priorities are more
// urgent, as on Cortex-M.
package irq

import (
	"context"
	"sync"

	"thermofuse-go/errcode"
)

// Priority of a line; 0 is the most urgent.
type Priority uint8

// Line is one interrupt source.
type Line struct {
	c    *Controller
	n    int
	name string

	// guarded by c.mu
	prio    Priority
	handler func()
	enabled bool
	pending bool
	active  bool
	stopped bool
	runs    uint32
}

// Controller arbitrates handler entry across all lines.
type Controller struct {
	mu     sync.Mutex
	cond   *sync.Cond
	lines  map[int]*Line
	masked bool
	active int

	csMu  sync.Mutex    // serialises critical sections
	event chan struct{} // latched wake-up event register
}

func NewController() *Controller {
	c := &Controller{
		lines: make(map[int]*Line),
		event: make(chan struct{}, 1),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Line returns line n, creating it on first use.
func (c *Controller) Line(n int, name string) *Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.lines[n]; ok {
		return l
	}
	l := &Line{c: c, n: n, name: name}
	c.lines[n] = l
	return l
}

func (l *Line) Number() int  { return l.n }
func (l *Line) Name() string { return l.name }

// SetPriority changes the line's urgency.
func (l *Line) SetPriority(p Priority) {
	l.c.mu.Lock()
	l.prio = p
	l.c.cond.Broadcast()
	l.c.mu.Unlock()
}

func (l *Line) Priority() Priority {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	return l.prio
}

// Runs reports how many times the handler has completed.
func (l *Line) Runs() uint32 {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	return l.runs
}

// Enable binds handler and starts dispatching until ctx is done.
// A line can be enabled once.
func (l *Line) Enable(ctx context.Context, handler func()) error {
	if handler == nil {
		return errcode.InvalidParams
	}
	c := l.c
	c.mu.Lock()
	if l.enabled {
		c.mu.Unlock()
		return errcode.Busy
	}
	l.enabled = true
	l.handler = handler
	c.cond.Broadcast()
	c.mu.Unlock()

	context.AfterFunc(ctx, func() {
		c.mu.Lock()
		l.stopped = true
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	go l.dispatch()
	return nil
}

// Pend marks the line pending. Safe from any goroutine, including handlers
// and critical sections. Pending an already pending line is a no-op.
func (l *Line) Pend() {
	c := l.c
	c.mu.Lock()
	l.pending = true
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (l *Line) dispatch() {
	c := l.c
	for {
		c.mu.Lock()
		for !l.stopped && !c.mayEnter(l) {
			c.cond.Wait()
		}
		if l.stopped {
			c.mu.Unlock()
			return
		}
		l.pending = false
		l.active = true
		c.active++
		h := l.handler
		c.mu.Unlock()

		h()

		c.mu.Lock()
		l.active = false
		l.runs++
		c.active--
		c.cond.Broadcast()
		c.mu.Unlock()
	}
}

// caller holds c.mu
func (c *Controller) mayEnter(l *Line) bool {
	if !l.pending || c.masked {
		return false
	}
	for _, o := range c.lines {
		if o == l {
			continue
		}
		if o.active && o.prio <= l.prio {
			return false
		}
		if o.enabled && o.pending && (o.prio < l.prio || (o.prio == l.prio && o.n < l.n)) {
			return false
		}
	}
	return true
}

// caller holds c.mu
func (c *Controller) busy() bool {
	if c.masked || c.active > 0 {
		return true
	}
	for _, o := range c.lines {
		if o.enabled && o.pending {
			return true
		}
	}
	return false
}

// CriticalSection runs f with every line masked. Handlers that become
// pending meanwhile enter after f returns. f must not block or suspend, and
// critical sections do not nest.
func (c *Controller) CriticalSection(f func()) {
	c.csMu.Lock()
	c.mu.Lock()
	c.masked = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.masked = false
		c.cond.Broadcast()
		c.mu.Unlock()
		c.csMu.Unlock()
	}()
	f()
}

// WaitThread blocks thread-mode code until no handler is active or pending
// and no critical section is held.
func (c *Controller) WaitThread(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	for c.busy() {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.cond.Wait()
	}
	return ctx.Err()
}

// SendEvent sets the event register; the next WaitForEvent returns at once.
func (c *Controller) SendEvent() {
	select {
	case c.event <- struct{}{}:
	default:
	}
}

// WaitForEvent is the low-power wait: it returns once an event was sent
// since the previous call, or when ctx is done.
func (c *Controller) WaitForEvent(ctx context.Context) error {
	select {
	case <-c.event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
