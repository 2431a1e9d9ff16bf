package irq

import (
	"context"
	"sync"
	"testing"
	"time"
)

type trace struct {
	mu sync.Mutex
	ev []string
}

func (t *trace) add(s string) {
	t.mu.Lock()
	t.ev = append(t.ev, s)
	t.mu.Unlock()
}

func (t *trace) get() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.ev...)
}

func waitRuns(t *testing.T, l *Line, n uint32) {
	t.Helper()
	deadline := time.After(time.Second)
	for l.Runs() < n {
		select {
		case <-deadline:
			t.Fatalf("line %s ran %d times, want %d", l.Name(), l.Runs(), n)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestMoreUrgentPendingLineRunsFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewController()
	hi := c.Line(71, "hi")
	lo := c.Line(38, "lo")
	hi.SetPriority(6)
	lo.SetPriority(7)

	var tr trace
	if err := hi.Enable(ctx, func() {
		tr.add("hi:start")
		time.Sleep(5 * time.Millisecond)
		tr.add("hi:end")
	}); err != nil {
		t.Fatal(err)
	}
	if err := lo.Enable(ctx, func() { tr.add("lo") }); err != nil {
		t.Fatal(err)
	}

	// Pend both while masked so they become ready together.
	c.CriticalSection(func() {
		lo.Pend()
		hi.Pend()
	})
	waitRuns(t, lo, 1)
	waitRuns(t, hi, 1)

	got := tr.get()
	want := []string{"hi:start", "hi:end", "lo"}
	if len(got) != len(want) {
		t.Fatalf("trace = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trace = %v, want %v", got, want)
		}
	}
}

func TestMoreUrgentLinePreemptsActiveHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewController()
	hi := c.Line(1, "hi")
	lo := c.Line(2, "lo")
	hi.SetPriority(1)
	lo.SetPriority(3)

	loIn := make(chan struct{})
	release := make(chan struct{})
	hiDone := make(chan struct{}, 1)
	_ = lo.Enable(ctx, func() {
		close(loIn)
		<-release
	})
	_ = hi.Enable(ctx, func() { hiDone <- struct{}{} })

	lo.Pend()
	<-loIn
	hi.Pend()
	select {
	case <-hiDone:
	case <-time.After(time.Second):
		t.Fatal("urgent handler did not preempt the active one")
	}
	close(release)
	waitRuns(t, lo, 1)
}

func TestEqualPriorityDoesNotNest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewController()
	a := c.Line(1, "a")
	b := c.Line(2, "b")
	a.SetPriority(4)
	b.SetPriority(4)

	var tr trace
	aIn := make(chan struct{})
	release := make(chan struct{})
	_ = a.Enable(ctx, func() {
		close(aIn)
		<-release
		tr.add("a")
	})
	_ = b.Enable(ctx, func() { tr.add("b") })

	a.Pend()
	<-aIn
	b.Pend()
	time.Sleep(10 * time.Millisecond)
	if b.Runs() != 0 {
		t.Fatal("equal priority line nested into an active handler")
	}
	close(release)
	waitRuns(t, b, 1)
	if got := tr.get(); got[0] != "a" || got[1] != "b" {
		t.Fatalf("trace = %v", got)
	}
}

func TestCriticalSectionDefersEntry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewController()
	l := c.Line(5, "l")
	_ = l.Enable(ctx, func() {})

	c.CriticalSection(func() {
		l.Pend()
		time.Sleep(10 * time.Millisecond)
		if l.Runs() != 0 {
			t.Error("handler entered inside a critical section")
		}
	})
	waitRuns(t, l, 1)
}

func TestEnableTwiceFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewController().Line(0, "x")
	if err := l.Enable(ctx, func() {}); err != nil {
		t.Fatal(err)
	}
	if err := l.Enable(ctx, func() {}); err == nil {
		t.Fatal("second Enable succeeded")
	}
	if err := NewController().Line(0, "y").Enable(ctx, nil); err == nil {
		t.Fatal("nil handler accepted")
	}
}

func TestWaitThreadBlocksWhileHandlerActive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewController()
	l := c.Line(3, "l")
	in := make(chan struct{})
	release := make(chan struct{})
	_ = l.Enable(ctx, func() {
		close(in)
		<-release
	})
	l.Pend()
	<-in

	done := make(chan error, 1)
	go func() { done <- c.WaitThread(ctx) }()
	select {
	case <-done:
		t.Fatal("WaitThread returned while a handler was active")
	case <-time.After(10 * time.Millisecond):
	}
	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitThread never returned")
	}
}

func TestEventIsLatched(t *testing.T) {
	c := NewController()
	c.SendEvent()
	c.SendEvent()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.WaitForEvent(ctx); err != nil {
		t.Fatalf("latched event lost: %v", err)
	}
	if err := c.WaitForEvent(ctx); err == nil {
		t.Fatal("events accumulated beyond one")
	}
}
