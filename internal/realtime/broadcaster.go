// Package realtime fans stored notifications out to connected websocket
// clients, either within one process or across instances through Redis.
package realtime

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// Broadcaster delivers payloads to every live subscriber of a user.
type Broadcaster interface {
	Publish(ctx context.Context, userID string, payload []byte) error
	Subscribe(ctx context.Context, userID string) (<-chan []byte, func(), error)
	Close() error
}

type subscriber struct {
	ch chan []byte
}

// LocalBroadcaster keeps subscribers in memory. Slow subscribers miss
// payloads rather than block the publisher.
type LocalBroadcaster struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewLocalBroadcaster() *LocalBroadcaster {
	return &LocalBroadcaster{subs: make(map[string]map[*subscriber]struct{})}
}

func (b *LocalBroadcaster) Publish(_ context.Context, userID string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[userID] {
		select {
		case s.ch <- payload:
		default:
		}
	}
	return nil
}

func (b *LocalBroadcaster) Subscribe(_ context.Context, userID string) (<-chan []byte, func(), error) {
	s := &subscriber{ch: make(chan []byte, subscriberBuffer)}

	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*subscriber]struct{})
	}
	b.subs[userID][s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[userID], s)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			b.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel, nil
}

// Close is a no-op; subscribers are released by their cancel funcs.
func (b *LocalBroadcaster) Close() error {
	return nil
}
