package pubsub

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

type subscriber struct {
	ch chan *Message
}

// Local is an in-process fan-out PubSub. Publish never blocks: a message
// for a subscriber whose buffer is full is dropped and counted.
type Local struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber
	bufSize     int
	dropped     atomic.Uint64
}

// NewLocal creates a Local with the given per-subscriber buffer size.
func NewLocal(bufSize int) *Local {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Local{
		subscribers: make(map[string][]*subscriber),
		bufSize:     bufSize,
	}
}

// Publish sends a message to all subscribers of the given channel.
func (ps *Local) Publish(_ context.Context, channel, message string) error {
	msg := &Message{Channel: channel, Payload: message}
	// held across the sends so cancel cannot close a channel mid-send
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, s := range ps.subscribers[channel] {
		select {
		case s.ch <- msg:
		default:
			ps.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe returns a channel of messages for the given channels, and a cancel function.
func (ps *Local) Subscribe(_ context.Context, channels ...string) (<-chan *Message, func(), error) {
	s := &subscriber{ch: make(chan *Message, ps.bufSize)}

	ps.mu.Lock()
	for _, c := range channels {
		ps.subscribers[c] = append(ps.subscribers[c], s)
	}
	ps.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ps.mu.Lock()
			defer ps.mu.Unlock()
			for _, c := range channels {
				ps.subscribers[c] = slices.DeleteFunc(ps.subscribers[c], func(x *subscriber) bool { return x == s })
				if len(ps.subscribers[c]) == 0 {
					delete(ps.subscribers, c)
				}
			}
			close(s.ch)
		})
	}

	return s.ch, cancel, nil
}

// Dropped returns how many messages were discarded on full buffers.
func (ps *Local) Dropped() uint64 {
	return ps.dropped.Load()
}
