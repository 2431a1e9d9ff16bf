package bus

import (
	"sort"
	"testing"
	"time"
)

func fused() Topic { return T("temperature", "fused") }

func source(i int) Topic { return T("temperature", "source", i) }

func recv(t *testing.T, s *Subscription) *Message {
	t.Helper()
	select {
	case m := <-s.Channel():
		return m
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestFusedValueReachesSubscriber(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("display")
	sub := conn.Subscribe(fused())

	conn.Publish(conn.NewMessage(fused(), float32(21.25), false))

	if v := recv(t, sub).Payload.(float32); v != 21.25 {
		t.Fatalf("payload = %v, want 21.25", v)
	}
}

func TestLateSubscriberGetsRetainedValue(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("fusion")
	conn.Publish(conn.NewMessage(fused(), float32(19.5), true))
	conn.Publish(conn.NewMessage(fused(), float32(20.0), true))

	sub := b.NewConnection("late").Subscribe(fused())
	if v := recv(t, sub).Payload.(float32); v != 20.0 {
		t.Fatalf("retained = %v, want the latest 20", v)
	}
	expectNoMessage(t, sub)
}

// -----------------------------------------------------------------------------
// Wildcards
// -----------------------------------------------------------------------------

func TestWildcardMatching(t *testing.T) {
	cases := []struct {
		pattern Topic
		topic   Topic
		match   bool
	}{
		{T("temperature", "source", "+"), source(0), true},
		{T("temperature", "source", "+"), fused(), false},
		{T("temperature", "+"), fused(), true},
		{T("temperature", "+"), source(1), false},
		{T("temperature", "#"), source(3), true},
		{T("temperature", "#"), T("temperature"), true},
		{T("#"), fused(), true},
		{T("temperature", "source", "#"), fused(), false},
		{T("temperature", "+", 2), source(2), true},
		{T("temperature", "+", 2), source(1), false},
		{T("humidity", "#"), source(0), false},
	}
	for _, c := range cases {
		b := NewBus(4)
		conn := b.NewConnection("test")
		sub := conn.Subscribe(c.pattern)
		conn.Publish(conn.NewMessage(c.topic, "x", false))
		if c.match {
			expectOneOf(t, sub, "x")
		} else {
			expectNoMessage(t, sub)
		}
	}
}

func TestRetainedDeliveryThroughWildcards(t *testing.T) {
	b := NewBus(32)
	c := b.NewConnection("fusion")

	c.Publish(b.NewMessage(fused(), "f", true))
	for i := 0; i < 3; i++ {
		c.Publish(b.NewMessage(source(i), "s"+string(rune('0'+i)), true))
	}

	all := drainPayloads(t, c.Subscribe(T("temperature", "#")), 4)
	assertUnorderedEqual(t, all, []string{"f", "s0", "s1", "s2"})

	sources := drainPayloads(t, c.Subscribe(T("temperature", "source", "+")), 3)
	assertUnorderedEqual(t, sources, []string{"s0", "s1", "s2"})

	level := drainPayloads(t, c.Subscribe(T("temperature", "+")), 1)
	assertUnorderedEqual(t, level, []string{"f"})
}

func TestRetainedClearedByNilPayload(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("fusion")

	c.Publish(b.NewMessage(source(0), "stale", true))
	c.Publish(b.NewMessage(source(1), "fresh", true))
	c.Publish(b.NewMessage(source(0), nil, true))

	got := drainPayloads(t, c.Subscribe(T("temperature", "source", "#")), 1)
	if got[0] != "fresh" {
		t.Fatalf("expected only 'fresh' after clear, got %v", got)
	}
}

// -----------------------------------------------------------------------------
// Queues
// -----------------------------------------------------------------------------

func TestFullQueueDropsOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	s := c.Subscribe(fused())

	for i := 1; i <= 5; i++ {
		c.Publish(b.NewMessage(fused(), i, false))
	}
	if d := s.Dropped(); d != 3 {
		t.Fatalf("dropped = %d, want 3", d)
	}
	for _, want := range []int{4, 5} {
		select {
		case m := <-s.Channel():
			if m.Payload.(int) != want {
				t.Fatalf("got %v, want %d", m.Payload, want)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout")
		}
	}
}

func TestPublishNeverBlocksWithoutReader(t *testing.T) {
	b := NewBus(1)
	c := b.NewConnection("test")
	c.Subscribe(T("a"))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			c.Publish(b.NewMessage(T("a"), i, false))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked")
	}
}

func TestIntTokensAndString(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")
	s := c.Subscribe(T("temperature", "source", "+"))
	c.Publish(b.NewMessage(source(2), float32(21.5), false))

	select {
	case m := <-s.Channel():
		if m.Topic.String() != "temperature/source/2" {
			t.Fatalf("topic = %s", m.Topic)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")
	s := c.Subscribe(T("a", "b"))
	s.Unsubscribe()
	if _, ok := <-s.Channel(); ok {
		t.Fatal("channel still open")
	}
	// second unsubscribe is a no-op
	c.Unsubscribe(s)
	c.Publish(b.NewMessage(T("a", "b"), "x", false))
}

func TestDisconnect(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")
	s1 := c.Subscribe(T("a"))
	s2 := c.Subscribe(T("#"))
	c.Disconnect()
	for _, s := range []*Subscription{s1, s2} {
		if _, ok := <-s.Channel(); ok {
			t.Fatal("channel still open after Disconnect")
		}
	}
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func expectOneOf(t *testing.T, sub *Subscription, want string) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		s, ok := got.Payload.(string)
		if !ok || s != want {
			t.Fatalf("unexpected payload: %v (want %q)", got.Payload, want)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for %q", want)
	}
}

func expectNoMessage(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		t.Fatalf("unexpected message: %#v", got)
	case <-time.After(60 * time.Millisecond):
	}
}

func drainPayloads(t *testing.T, sub *Subscription, n int) []string {
	t.Helper()
	var out []string
	deadline := time.Now().Add(300 * time.Millisecond)
	for len(out) < n && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			if s, ok := m.Payload.(string); ok {
				out = append(out, s)
			} else {
				t.Fatalf("non-string payload in drain: %#v", m.Payload)
			}
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(out) != n {
		t.Fatalf("drainPayloads: expected %d messages, got %d (%v)", n, len(out), out)
	}
	return out
}

func assertUnorderedEqual(t *testing.T, got, want []string) {
	t.Helper()
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d (%v vs %v)", len(got), len(want), got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("mismatch at %d: got %q, want %q (got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}

func TestTopic_InvalidTokenPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for non-comparable token, got none")
		}
	}()

	// []byte is not comparable, so T should panic
	_ = T([]byte{1, 2, 3})
}
