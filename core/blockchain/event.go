package blockchain

import (
	"fmt"
	"sync"
)

// SealedEvent is published after a block is sealed and its save attempted.
type SealedEvent struct {
	Index        int
	Signature    string
	Transactions int
	Persisted    bool
}

type EventFeed[T any] struct {
	subs    map[string]chan<- T
	mu      sync.Mutex
	dropped func(id string)
}

func NewEventFeed[T any]() *EventFeed[T] {
	return &EventFeed[T]{
		subs: make(map[string]chan<- T),
	}
}

// OnDrop registers a callback for events a full subscriber channel missed.
func (ef *EventFeed[T]) OnDrop(fn func(id string)) {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	ef.dropped = fn
}

func (ef *EventFeed[T]) Subscribe(id string, ch chan<- T) error {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	if _, exists := ef.subs[id]; exists {
		return fmt.Errorf("subscriber with the id %s already present", id)
	}
	ef.subs[id] = ch
	return nil
}

func (ef *EventFeed[T]) UnSubscribe(id string) {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	delete(ef.subs, id)
}

// Send never blocks: a subscriber whose channel is full misses the event.
func (ef *EventFeed[T]) Send(event T) {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	for id, ch := range ef.subs {
		select {
		case ch <- event:
		default:
			if ef.dropped != nil {
				ef.dropped(id)
			}
		}
	}
}
