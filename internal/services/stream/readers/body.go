package readers

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
	"github.com/kp666/twitter-stream/internal/utils"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// ErrSourceClosed is returned by TryNext after Close
var ErrSourceClosed = errors.New("chunk source closed")

var _ contracts.ChunkSource = (*BodySource)(nil)

type bodyRead struct {
	chunk []byte
	err   error
}

// BodySource turns a blocking HTTP response body into a polled ChunkSource.
// A single goroutine performs the reads and hands chunks over one at a time,
// so at most one chunk waits while the next read is in progress.
type BodySource struct {
	body       io.ReadCloser
	reads      chan bodyRead
	ready      chan struct{}
	done       chan struct{}
	err        error // sticky terminal result, consumer side only
	closed     atomic.Bool
	closeOnce  sync.Once
	sessionID  string
	totalBytes atomic.Int64
}

// NewBodySource starts reading body in the background
func NewBodySource(body io.ReadCloser, sessionID string) *BodySource {
	s := &BodySource{
		body:      body,
		reads:     make(chan bodyRead, 1),
		ready:     make(chan struct{}, 1),
		done:      make(chan struct{}),
		sessionID: sessionID,
	}
	go s.readLoop()
	return s
}

func (s *BodySource) readLoop() {
	buf := utils.GetSized(utils.ReadChunkSize)
	defer utils.Put(buf)

	for {
		n, err := s.body.Read(buf.B)
		if n > 0 {
			s.totalBytes.Add(int64(n))
			if !s.deliver(bodyRead{chunk: bytes.Clone(buf.B[:n])}) {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.closed.Load() {
				fiberlog.Debugf("[%s] Body read failed: %v", s.sessionID, err)
			}
			s.deliver(bodyRead{err: err})
			return
		}
	}
}

// deliver hands r to the consumer and wakes it. It reports false once the
// source is closed.
func (s *BodySource) deliver(r bodyRead) bool {
	select {
	case s.reads <- r:
	case <-s.done:
		return false
	}
	select {
	case s.ready <- struct{}{}:
	default:
	}
	return true
}

// TryNext implements contracts.ChunkSource
func (s *BodySource) TryNext() ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrSourceClosed
	}
	if s.err != nil {
		return nil, false, s.err
	}
	select {
	case r := <-s.reads:
		if r.err != nil {
			s.err = r.err
			return nil, false, r.err
		}
		return r.chunk, true, nil
	default:
		return nil, false, nil
	}
}

// Ready implements contracts.ChunkSource
func (s *BodySource) Ready() <-chan struct{} {
	return s.ready
}

// Close closes the body, which also stops the read goroutine
func (s *BodySource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		err = s.body.Close()
	})
	return err
}

// TotalBytes returns the number of body bytes read so far
func (s *BodySource) TotalBytes() int64 {
	return s.totalBytes.Load()
}
