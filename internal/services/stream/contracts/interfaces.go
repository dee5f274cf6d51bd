package contracts

import (
	"time"
)

// ChunkSource yields raw body chunks without blocking.
//
// TryNext returns ok=false with a nil error when no chunk has arrived yet.
// It returns io.EOF once the body is exhausted, or the transport error that
// ended it. Ready is signalled whenever TryNext may make progress.
type ChunkSource interface {
	TryNext() (chunk []byte, ok bool, err error)
	Ready() <-chan struct{}
	Close() error
}

// Clock is the only source of time for idle deadlines
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// StreamWriter handles output with flush capabilities
type StreamWriter interface {
	Write([]byte) error
	Flush() error
	Close() error
}

// ConnectionState tracks client connection status
type ConnectionState interface {
	IsConnected() bool
	Done() <-chan struct{}
}
