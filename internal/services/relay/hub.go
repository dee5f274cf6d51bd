// Package relay re-serves received lines to local HTTP subscribers.
//
// The hub never blocks the consumer: a subscriber whose buffer is full misses
// the line, which is counted as a drop. After Close, Write is a no-op and
// every subscriber channel is closed.
package relay

import (
	"sync"

	"github.com/kp666/twitter-stream/internal/metrics"
	"github.com/kp666/twitter-stream/internal/services/stream/contracts"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// DefaultBuffer is the per-subscriber queue length used when none is configured
const DefaultBuffer = 256

var _ contracts.StreamWriter = (*Hub)(nil)

// Subscriber receives lines from a Hub
type Subscriber struct {
	id      string
	lines   chan []byte
	hub     *Hub
	dropped int64 // guarded by hub.mu
}

// ID returns the subscriber id
func (s *Subscriber) ID() string {
	return s.id
}

// Lines is closed when the subscriber is removed or the hub closes
func (s *Subscriber) Lines() <-chan []byte {
	return s.lines
}

// Dropped returns the number of lines this subscriber missed
func (s *Subscriber) Dropped() int64 {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	return s.dropped
}

// Close unsubscribes
func (s *Subscriber) Close() {
	s.hub.remove(s)
}

// Hub fans lines out to subscribers
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	buffer      int
	closed      bool
}

// NewHub creates a hub. A non-positive buffer uses DefaultBuffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		buffer:      buffer,
	}
}

// Subscribe registers a new subscriber. It returns nil once the hub is closed.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	s := &Subscriber{
		id:    uuid.NewString(),
		lines: make(chan []byte, h.buffer),
		hub:   h,
	}
	h.subscribers[s.id] = s
	metrics.RelaySubscribers.Set(float64(len(h.subscribers)))
	fiberlog.Infof("[%s] Relay subscriber connected (%d total)", s.id, len(h.subscribers))
	return s
}

func (h *Hub) remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[s.id]; !ok {
		return
	}
	delete(h.subscribers, s.id)
	close(s.lines)
	metrics.RelaySubscribers.Set(float64(len(h.subscribers)))
	fiberlog.Infof("[%s] Relay subscriber disconnected after %d drops", s.id, s.dropped)
}

// Write hands the line to every subscriber without waiting
func (h *Hub) Write(line []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	for _, s := range h.subscribers {
		select {
		case s.lines <- line:
		default:
			s.dropped++
			metrics.RelayDroppedTotal.Inc()
			fiberlog.Warnf("[%s] Relay subscriber is slow, line dropped", s.id)
		}
	}
	return nil
}

// Flush is a no-op; lines are delivered on Write
func (h *Hub) Flush() error {
	return nil
}

// Close disconnects every subscriber
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for id, s := range h.subscribers {
		delete(h.subscribers, id)
		close(s.lines)
	}
	metrics.RelaySubscribers.Set(0)
	return nil
}

// Len returns the number of subscribers
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
