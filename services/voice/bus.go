// Package voice carries timer control commands recognized from speech to the
// components that apply them. It replaces the tracker client's string-keyed
// event emitter with a typed channel so the set of actions is closed and the
// producers/consumers are statically checkable.
package voice

import (
	"strings"
	"sync"
)

// Action is a timer control intent recognized from speech
type Action string

const (
	ActionPause   Action = "PAUSE"
	ActionResume  Action = "RESUME"
	ActionDismiss Action = "DISMISS"
	ActionDelete  Action = "DELETE"
)

// ParseAction maps a raw intent string onto a known action
func ParseAction(raw string) (Action, bool) {
	switch Action(strings.ToUpper(strings.TrimSpace(raw))) {
	case ActionPause:
		return ActionPause, true
	case ActionResume:
		return ActionResume, true
	case ActionDismiss:
		return ActionDismiss, true
	case ActionDelete:
		return ActionDelete, true
	}
	return "", false
}

// Command targets one timer with one action
type Command struct {
	TimerID string `json:"timer_id"`
	Action  Action `json:"action"`
}

// Bus fans commands out to subscribers. Sends never block: a subscriber that
// cannot keep up has commands dropped rather than stalling the publisher.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Command
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Command)}
}

// Subscribe registers a new listener and returns its id and channel
func (b *Bus) Subscribe() (int, <-chan Command) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Command, 16)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers the command to every subscriber without blocking
func (b *Bus) Publish(cmd Command) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- cmd:
		default:
			// Slow consumer: drop instead of stalling the recognizer
		}
	}
}
