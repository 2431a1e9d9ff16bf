package sched

import (
	"context"
	"time"

	"thermofuse-go/errcode"
)

// TaskFunc is the body of a task. Tasks usually loop forever; they return
// only when a suspension point reports that the runtime is shutting down.
type TaskFunc func(t *Task)

// Task is one cooperative computation owned by a single tier.
type Task struct {
	name string
	ex   *executor

	resume chan struct{} // executor -> task: run until the next suspension
	yield  chan struct{} // task -> executor: suspended or finished

	detached bool // runtime stopped; the task no longer holds its tier
}

// Spawner enqueues tasks on one tier. It is a small value and may be copied
// and used from any tier.
type Spawner struct {
	ex *executor
}

// Tier reports the tier this spawner feeds.
func (s Spawner) Tier() Tier { return s.ex.tier }

// Valid reports whether the spawner is bound to a tier.
func (s Spawner) Valid() bool { return s.ex != nil }

// Spawn creates a task and makes it ready. It fails with
// errcode.SpawnCapacityExceeded when the tier's pool is full.
func (s Spawner) Spawn(name string, fn TaskFunc) error {
	if s.ex == nil || fn == nil {
		return errcode.InvalidParams
	}
	ex := s.ex
	ex.mu.Lock()
	if ex.live >= ex.pool {
		ex.mu.Unlock()
		return &errcode.E{C: errcode.SpawnCapacityExceeded, Op: "sched.Spawn", Msg: ex.name + "/" + name}
	}
	ex.live++
	ex.mu.Unlock()

	t := &Task{
		name:   name,
		ex:     ex,
		resume: make(chan struct{}, 1),
		yield:  make(chan struct{}, 1),
	}
	go t.main(fn)
	ex.wake(t)
	return nil
}

// MustSpawn halts the runtime when the task cannot be spawned.
func (s Spawner) MustSpawn(name string, fn TaskFunc) {
	if err := s.Spawn(name, fn); err != nil {
		if s.ex == nil {
			panic(err)
		}
		s.ex.rt.Halt(err)
	}
}

func (t *Task) main(fn TaskFunc) {
	defer t.ex.release()
	select {
	case <-t.resume:
	case <-t.ex.context().Done():
		return
	}
	fn(t)
	if !t.detached {
		t.yield <- struct{}{}
	}
}

// step is called by the executor: hand the tier to t and wait until t
// suspends or finishes.
func (t *Task) step() {
	t.resume <- struct{}{}
	select {
	case <-t.yield:
	case <-t.Context().Done():
	}
}

// Name of the task as given to Spawn.
func (t *Task) Name() string { return t.name }

// Tier the task belongs to.
func (t *Task) Tier() Tier { return t.ex.tier }

// Context is done when the tier is stopped.
func (t *Task) Context() context.Context { return t.ex.context() }

// Await suspends the task: the tier is released, wait runs on the task's
// own goroutine, and the task is queued to resume once wait returns. wait
// should also return when t.Context() is done.
func (t *Task) Await(wait func()) error {
	if t.detached {
		return context.Canceled
	}
	t.yield <- struct{}{}
	wait()
	return t.park()
}

func (t *Task) park() error {
	ctx := t.Context()
	if ctx.Err() != nil {
		t.detached = true
		return ctx.Err()
	}
	t.ex.wake(t)
	select {
	case <-t.resume:
		return nil
	case <-ctx.Done():
		t.detached = true
		return ctx.Err()
	}
}

// Yield lets every other ready task on the tier run once.
func (t *Task) Yield() error {
	return t.Await(func() {})
}

// Sleep suspends for d.
func (t *Task) Sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	done := t.Context().Done()
	return t.Await(func() {
		select {
		case <-timer.C:
		case <-done:
		}
	})
}

// Recv receives from ch, suspending only when nothing is buffered.
func Recv[T any](t *Task, ch <-chan T) (v T, ok bool, err error) {
	select {
	case v, ok = <-ch:
		return v, ok, nil
	default:
	}
	done := t.Context().Done()
	err = t.Await(func() {
		select {
		case v, ok = <-ch:
		case <-done:
		}
	})
	return v, ok, err
}
