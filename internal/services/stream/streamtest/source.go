// Package streamtest provides deterministic chunk sources and clocks for
// exercising the stream pipeline without a network or wall-clock time.
package streamtest

import (
	"io"
	"sync"

	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
)

var _ contracts.ChunkSource = (*Source)(nil)

type event struct {
	chunk []byte
	err   error
}

// Source is a ChunkSource fed by the test. Chunks pushed before a TryNext
// call are delivered one per call, in order.
type Source struct {
	mu     sync.Mutex
	queue  []event
	ready  chan struct{}
	closed bool
	pulls  int
}

// NewSource returns a source preloaded with chunks. It does not end until End
// or Fail is called.
func NewSource(chunks ...string) *Source {
	s := &Source{ready: make(chan struct{}, 1)}
	s.Push(chunks...)
	return s
}

// Chunks returns a source that delivers chunks and then reports io.EOF.
func Chunks(chunks ...string) *Source {
	s := NewSource(chunks...)
	s.End()
	return s
}

// Push queues chunks for delivery.
func (s *Source) Push(chunks ...string) {
	s.mu.Lock()
	for _, c := range chunks {
		s.queue = append(s.queue, event{chunk: []byte(c)})
	}
	s.mu.Unlock()
	s.signal()
}

// End queues end of stream.
func (s *Source) End() {
	s.Fail(io.EOF)
}

// Fail queues a terminal error.
func (s *Source) Fail(err error) {
	s.mu.Lock()
	s.queue = append(s.queue, event{err: err})
	s.mu.Unlock()
	s.signal()
}

func (s *Source) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// TryNext implements contracts.ChunkSource. A queued error stays at the head
// of the queue so repeated calls keep reporting it.
func (s *Source) TryNext() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil, false, nil
	}
	s.pulls++
	ev := s.queue[0]
	if ev.err != nil {
		return nil, false, ev.err
	}
	s.queue = s.queue[1:]
	return ev.chunk, true, nil
}

// Ready implements contracts.ChunkSource.
func (s *Source) Ready() <-chan struct{} {
	return s.ready
}

// Close implements contracts.ChunkSource.
func (s *Source) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Pulls counts TryNext calls that returned a chunk or an error.
func (s *Source) Pulls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulls
}
