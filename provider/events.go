package provider

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const subscriptionBuffer = 64

type subscription struct {
	ch      chan json.RawMessage
	handler func(json.RawMessage)
}

// Hub fans events out to subscribers. Each subscriber has its own queue
// and delivery goroutine, so a slow handler never blocks the emitter.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]*subscription
	log    *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		subs: map[string]map[int]*subscription{},
		log:  log,
	}
}

func (h *Hub) On(event string, handler func(json.RawMessage)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	sub := &subscription{
		ch:      make(chan json.RawMessage, subscriptionBuffer),
		handler: handler,
	}
	if h.subs[event] == nil {
		h.subs[event] = map[int]*subscription{}
	}
	h.subs[event][id] = sub
	go func() {
		for payload := range sub.ch {
			sub.handler(payload)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[event], id)
			close(sub.ch)
		})
	}
}

// Subscribers reports how many handlers listen to event.
func (h *Hub) Subscribers(event string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[event])
}

// Emit queues payload for every subscriber of event. When a subscriber's
// queue is full the event is dropped for it; the queued events already
// make it reload.
func (h *Hub) Emit(event string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("couldn't encode event payload", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, sub := range h.subs[event] {
		select {
		case sub.ch <- raw:
		default:
			h.log.Warn("event dropped, subscriber queue full", zap.String("event", event), zap.Int("subscriber", id))
		}
	}
}
