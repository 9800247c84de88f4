// Package realtime fans full lead snapshots out to live subscribers.
package realtime

import (
	"sync"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

// Hub delivers every published snapshot to every subscriber. Each subscriber owns a
// goroutine and a one-slot mailbox: a snapshot that was not picked up yet is replaced by
// the newer one, so a slow subscriber only ever sees the latest state and never blocks
// the publisher or the others.
type Hub struct {
	mu      sync.Mutex
	subs    map[int]*subscriber
	nextID  int
	current []entity.Lead
	hasSnap bool
}

type subscriber struct {
	mailbox chan []entity.Lead
	done    chan struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[int]*subscriber{}}
}

// Publish records snapshot as the current state and offers it to every subscriber.
func (h *Hub) Publish(snapshot []entity.Lead) {
	snap := append([]entity.Lead{}, snapshot...)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = snap
	h.hasSnap = true
	for _, s := range h.subs {
		s.offer(snap)
	}
}

// Snapshot returns the last published state and whether one was published.
func (h *Hub) Snapshot() ([]entity.Lead, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, h.hasSnap
}

// Subscribe registers onChange. The current snapshot, if any, is delivered first.
// The returned function stops delivery; it is safe to call more than once.
func (h *Hub) Subscribe(onChange func([]entity.Lead)) func() {
	s := &subscriber{
		mailbox: make(chan []entity.Lead, 1),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = s
	if h.hasSnap {
		s.offer(h.current)
	}
	h.mu.Unlock()

	go s.run(onChange)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(s.done)
		})
	}
}

// Subscribers reports how many subscriptions are live.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// offer must be called with the hub lock held.
func (s *subscriber) offer(snap []entity.Lead) {
	select {
	case s.mailbox <- snap:
		return
	default:
	}
	// drop the stale snapshot and retry; the lock keeps other publishers out
	select {
	case <-s.mailbox:
	default:
	}
	select {
	case s.mailbox <- snap:
	default:
	}
}

func (s *subscriber) run(onChange func([]entity.Lead)) {
	for {
		select {
		case <-s.done:
			return
		case snap := <-s.mailbox:
			select {
			case <-s.done:
				return
			default:
			}
			onChange(snap)
		}
	}
}
