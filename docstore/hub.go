package docstore

import "sync"

// Hub wakes the subscriptions of a collection after a committed change.
// Wakeups coalesce: a subscriber that is still delivering receives one more
// snapshot that covers every change made in the meantime.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

type subscription struct {
	collection string
	wake       chan struct{}
	done       chan struct{}
	once       sync.Once
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscription) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscription]struct{})}
}

// Publish wakes every subscriber of the given collections.
func (h *Hub) Publish(collections ...string) {
	if len(collections) == 0 {
		return
	}
	set := make(map[string]bool, len(collections))
	for _, c := range collections {
		set[c] = true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if !set[sub.collection] {
			continue
		}
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
}

// Subscribers reports the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) add(collection string) *subscription {
	sub := &subscription{
		collection: collection,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	openSubscriptions.Inc()
	return sub
}

func (h *Hub) remove(sub *subscription) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()
	if ok {
		openSubscriptions.Dec()
	}
	sub.stop()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	subs := make([]*subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()
	for _, sub := range subs {
		h.remove(sub)
	}
}
