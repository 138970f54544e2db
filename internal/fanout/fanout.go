package fanout

import (
	"log/slog"
	"sync"
)

// Hub fans a change notification out to every registered subscriber. The
// unsubscribe closure ties a subscription to its owner's lifetime, and a
// panicking subscriber cannot starve the others.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
	log  *slog.Logger
}

func New(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{subs: make(map[int]func()), log: log}
}

// Subscribe registers fn to run on every notification and returns the
// deregistration func. Calling it more than once is harmless.
func (h *Hub) Subscribe(fn func()) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Notify invokes every subscriber exactly once, synchronously, in no
// particular order.
func (h *Hub) Notify() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		h.invoke(fn)
	}
}

func (h *Hub) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("booking subscriber panicked", "panic", r)
		}
	}()
	fn()
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
