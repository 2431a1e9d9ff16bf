// Package bus is an in-process publish/subscribe broker with MQTT-style
// wildcards and retained messages.
//
// Publishing never blocks: every subscription owns a bounded queue and a
// full queue drops its oldest message. A consumer that is not waiting when a
// burst arrives sees only the most recent values.
package bus

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Wildcard tokens usable in subscription topics.
const (
	SingleLevel = "+"
	MultiLevel  = "#"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a sequence of comparable tokens (strings or ints in practice).
type Topic []any

// T builds a topic and panics on a token that cannot be a map key.
func T(tokens ...any) Topic {
	for _, tok := range tokens {
		if tok == nil || !reflect.TypeOf(tok).Comparable() {
			panic("bus: topic token is not comparable")
		}
	}
	return Topic(tokens)
}

func (t Topic) String() string {
	var sb strings.Builder
	for i, tok := range t {
		if i > 0 {
			sb.WriteByte('/')
		}
		switch v := tok.(type) {
		case string:
			sb.WriteString(v)
		case int:
			sb.WriteString(strconv.Itoa(v))
		default:
			sb.WriteString("?")
		}
	}
	return sb.String()
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// NewMessage builds a message. A retained message with a nil payload clears
// the retained value for its topic.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
	drops uint32 // guarded by bus.mu
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// Dropped counts messages discarded because the queue was full.
func (s *Subscription) Dropped() uint32 {
	s.conn.bus.mu.Lock()
	defer s.conn.bus.mu.Unlock()
	return s.drops
}

// deliver enqueues m, discarding the oldest queued message when full.
// caller holds bus.mu
func (s *Subscription) deliver(m *Message) {
	for {
		select {
		case s.ch <- m:
			return
		default:
		}
		select {
		case <-s.ch:
			s.drops++
		default:
			// consumer drained it meanwhile
		}
	}
}

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any, create bool) *node {
	if c, ok := n.children[tok]; ok || !create {
		return c
	}
	if n.children == nil {
		n.children = make(map[any]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
}

// NewBus creates a bus whose subscriptions queue up to queueLen messages.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	collectRetained(b.root, sub.topic, sub.deliver)
}

// collectRetained calls fn for every retained message whose topic matches
// the pattern.
func collectRetained(n *node, pattern Topic, fn func(*Message)) {
	if len(pattern) == 0 {
		if n.retained != nil {
			fn(n.retained)
		}
		return
	}
	switch pattern[0] {
	case MultiLevel:
		walkRetained(n, fn)
	case SingleLevel:
		for tok, c := range n.children {
			if tok == SingleLevel || tok == MultiLevel {
				continue
			}
			collectRetained(c, pattern[1:], fn)
		}
	default:
		if c := n.child(pattern[0], false); c != nil {
			collectRetained(c, pattern[1:], fn)
		}
	}
}

func walkRetained(n *node, fn func(*Message)) {
	if n.retained != nil {
		fn(n.retained)
	}
	for _, c := range n.children {
		walkRetained(c, fn)
	}
}

// Publish delivers msg to every matching subscription.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	match(b.root, msg.Topic, msg)

	if !msg.Retained {
		return
	}
	n := b.root
	for _, tok := range msg.Topic {
		n = n.child(tok, msg.Payload != nil)
		if n == nil {
			return
		}
	}
	if msg.Payload == nil {
		n.retained = nil
	} else {
		n.retained = msg
	}
}

func match(n *node, topic Topic, msg *Message) {
	if c := n.child(MultiLevel, false); c != nil {
		for _, s := range c.subs {
			s.deliver(msg)
		}
	}
	if len(topic) == 0 {
		for _, s := range n.subs {
			s.deliver(msg)
		}
		return
	}
	if c := n.child(topic[0], false); c != nil {
		match(c, topic[1:], msg)
	}
	if topic[0] != SingleLevel {
		if c := n.child(SingleLevel, false); c != nil {
			match(c, topic[1:], msg)
		}
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	topic := sub.topic
	n := b.root
	stack := make([]*node, 0, len(topic))
	for _, tok := range topic {
		c := n.child(tok, false)
		if c == nil {
			return
		}
		stack = append(stack, n)
		n = c
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	// Prune empty nodes.
	for i := len(topic) - 1; i >= 0; i-- {
		parent := stack[i]
		c := parent.children[topic[i]]
		if len(c.subs) == 0 && len(c.children) == 0 && c.retained == nil {
			delete(parent.children, topic[i])
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection groups the subscriptions of one service.
type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers topic, which may contain wildcards. Matching retained
// messages are queued immediately.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.unsubscribe(sub)
	close(sub.ch)
}

// Disconnect closes every subscription of c.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
