package sched

import "sync"

// Mutex is a task-aware lock. Contended Lock suspends the calling task
// instead of spinning on its tier, so it must not be used inside a critical
// section. Use it for state that is not timing critical.
type Mutex struct {
	mu sync.Mutex
}

// Lock acquires m. t may be nil for callers outside the scheduler, which
// then block their goroutine.
func (m *Mutex) Lock(t *Task) {
	if m.mu.TryLock() {
		return
	}
	if t == nil || t.detached {
		m.mu.Lock()
		return
	}
	// The lock is held on return even if the runtime stopped meanwhile.
	_ = t.Await(func() { m.mu.Lock() })
}

func (m *Mutex) Unlock() { m.mu.Unlock() }
