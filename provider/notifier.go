package provider

import (
	"sync"

	"github.com/google/uuid"
)

// ListenerHandle identifies a registered load listener.
type ListenerHandle = uuid.UUID

type listenerEntry struct {
	id uuid.UUID
	fn func()
}

// notifier delivers the "algorithms loaded" event to registered listeners in
// registration order, synchronously at the end of each successful refresh.
// There is no payload beyond "this provider's set changed".
type notifier struct {
	mu        sync.Mutex
	listeners []listenerEntry
}

func (n *notifier) add(fn func()) ListenerHandle {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := uuid.New()
	n.listeners = append(n.listeners, listenerEntry{id: id, fn: fn})
	return id
}

func (n *notifier) remove(h ListenerHandle) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, l := range n.listeners {
		if l.id == h {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (n *notifier) notify() {
	n.mu.Lock()
	snapshot := make([]listenerEntry, len(n.listeners))
	copy(snapshot, n.listeners)
	n.mu.Unlock()

	for _, l := range snapshot {
		l.fn()
	}
}
