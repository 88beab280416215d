// Package notifier provides a simple broadcast mechanism for store and
// storage change events.
package notifier

import "sync"

// Event actions.
const (
	ActionStoresChanged = "stores_changed"
	ActionEntryUpdated  = "entry_updated"
	ActionEntryRemoved  = "entry_removed"
)

// Event describes one observed change. Database events carry only an
// action; storage events also name the origin and key that changed.
type Event struct {
	Action string `json:"action"`
	Origin string `json:"origin,omitempty"`
	Key    string `json:"key,omitempty"`
}

// Notifier broadcasts change events to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives change events.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 8)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends ev to all listeners.
// Non-blocking: if a listener's channel is full, the event is skipped.
func (n *Notifier) Broadcast(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- ev:
		default:
			// Channel full, skip (listener will catch up on next broadcast)
		}
	}
}
