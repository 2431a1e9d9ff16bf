package fusion

import (
	"sync"
	"time"

	"thermofuse-go/sched"
)

// Reading is one sample from one source.
type Reading struct {
	Source int
	Value  float32
	At     time.Time
}

// Channels is a fixed set of single-slot mailboxes, one per source, that a
// single consumer multiplexes with Select.
type Channels struct {
	slots []*Channel
	ready chan struct{} // some slot became full
}

// NewChannels creates n empty channels.
func NewChannels(n int) *Channels {
	cs := &Channels{
		slots: make([]*Channel, n),
		ready: make(chan struct{}, 1),
	}
	for i := range cs.slots {
		cs.slots[i] = &Channel{idx: i, set: cs, space: make(chan struct{}, 1)}
	}
	return cs
}

func (cs *Channels) Len() int { return len(cs.slots) }

// At returns channel i.
func (cs *Channels) At(i int) *Channel { return cs.slots[i] }

// TrySelect takes the value of the lowest-index full channel.
func (cs *Channels) TrySelect() (Reading, bool) {
	for _, c := range cs.slots {
		if r, ok := c.take(); ok {
			return r, true
		}
	}
	return Reading{}, false
}

// Select is TrySelect that suspends t until some channel is full.
func (cs *Channels) Select(t *sched.Task) (Reading, error) {
	for {
		if r, ok := cs.TrySelect(); ok {
			return r, nil
		}
		done := t.Context().Done()
		if err := t.Await(func() {
			select {
			case <-cs.ready:
			case <-done:
			}
		}); err != nil {
			return Reading{}, err
		}
	}
}

// Channel holds at most one unread reading.
type Channel struct {
	idx   int
	set   *Channels
	space chan struct{} // the slot was emptied

	mu   sync.Mutex
	full bool
	r    Reading
}

func (c *Channel) Index() int { return c.idx }

// TrySend stores v if the slot is empty.
func (c *Channel) TrySend(v float32) bool {
	c.mu.Lock()
	if c.full {
		c.mu.Unlock()
		return false
	}
	c.full = true
	c.r = Reading{Source: c.idx, Value: v, At: time.Now()}
	c.mu.Unlock()
	signal(c.set.ready)
	return true
}

// Send stores v, suspending t while the previous value is unread.
func (c *Channel) Send(t *sched.Task, v float32) error {
	for !c.TrySend(v) {
		done := t.Context().Done()
		if err := t.Await(func() {
			select {
			case <-c.space:
			case <-done:
			}
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Channel) take() (Reading, bool) {
	c.mu.Lock()
	if !c.full {
		c.mu.Unlock()
		return Reading{}, false
	}
	r := c.r
	c.full = false
	c.mu.Unlock()
	signal(c.space)
	return r, true
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
