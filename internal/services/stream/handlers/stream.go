package handlers

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
	"github.com/kp666/twitter-stream/internal/services/stream/idle"
	"github.com/kp666/twitter-stream/internal/services/stream/readers"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// State is the lifecycle position of a Stream
type State int

const (
	Active State = iota
	Ended
	TimedOut
	Failed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Ended:
		return "ended"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// StreamOption configures a Stream
type StreamOption func(*Stream)

// WithClock replaces the wall clock
func WithClock(clock contracts.Clock) StreamOption {
	return func(s *Stream) {
		s.clock = clock
	}
}

// WithSessionID sets the id used in log lines and stored records
func WithSessionID(id string) StreamOption {
	return func(s *Stream) {
		s.sessionID = id
	}
}

// Stream polls a line decoder against an idle deadline. A Stream must not be
// polled from more than one goroutine at a time.
type Stream struct {
	decoder   *readers.LineDecoder
	deadline  *idle.Deadline
	clock     contracts.Clock
	sessionID string

	state State
	err   error

	started  time.Time
	lastLine time.Time
	lastGap  time.Duration
	lines    int64

	mu        sync.RWMutex // guards state for observers such as the health check
	closeOnce sync.Once
}

// NewStream wraps source. The deadline is armed immediately; a non-positive
// timeout uses idle.DefaultTimeout.
func NewStream(source contracts.ChunkSource, timeout time.Duration, opts ...StreamOption) *Stream {
	s := &Stream{
		decoder: readers.NewLineDecoder(source),
		clock:   idle.SystemClock{},
		state:   Active,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessionID == "" {
		s.sessionID = uuid.NewString()
	}

	s.deadline = idle.New(s.clock, timeout)
	s.started = s.clock.Now()
	s.lastLine = s.started
	return s
}

// Poll advances the stream without blocking.
//
// It returns a line with ok set, or ok unset with a nil error when nothing is
// ready. Terminal results are io.EOF, a TimedOut *contracts.StreamError, or the
// source's error unchanged, and repeat on every later call.
func (s *Stream) Poll() (line []byte, ok bool, err error) {
	if s.state != Active {
		return nil, false, s.err
	}

	line, ok, err = s.decoder.Poll()
	switch {
	case ok:
		s.deliver()
		return line, true, nil
	case errors.Is(err, io.EOF):
		s.finish(Ended, io.EOF)
	case err != nil:
		s.finish(Failed, err)
	case s.deadline.Expired():
		s.finish(TimedOut, contracts.NewTimedOutError(s.sessionID, s.deadline.Timeout()))
	default:
		fiberlog.Tracef("[%s] No line ready, %d bytes buffered", s.sessionID, s.decoder.Buffered())
		return nil, false, nil
	}
	return nil, false, s.err
}

// Wait blocks until Poll may make progress: the source has data, the idle
// deadline elapsed, or ctx is done. It returns immediately once terminal.
func (s *Stream) Wait(ctx context.Context) error {
	if s.state != Active {
		return nil
	}
	select {
	case <-s.decoder.Ready():
	case <-s.deadline.C():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Next blocks until a line or a terminal result is available
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	for {
		line, ok, err := s.Poll()
		if err != nil {
			return nil, err
		}
		if ok {
			return line, nil
		}
		if err := s.Wait(ctx); err != nil {
			return nil, err
		}
	}
}

// All yields lines until the stream ends. A timeout, a source error or ctx
// cancellation is yielded once as the final pair; a clean end is not.
func (s *Stream) All(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			line, err := s.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}

// Close releases the decoder and the source. An active stream reports end of
// stream afterwards.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		if s.state == Active {
			s.state = Ended
			s.err = io.EOF
		}
		s.mu.Unlock()
		err = s.decoder.Close()
	})
	return err
}

func (s *Stream) deliver() {
	now := s.clock.Now()
	s.lastGap = now.Sub(s.lastLine)
	s.lastLine = now
	s.lines++
	s.deadline.Reset()
	fiberlog.Debugf("[%s] %v since last line", s.sessionID, s.lastGap)
}

func (s *Stream) finish(state State, err error) {
	s.mu.Lock()
	s.state = state
	s.err = err
	s.mu.Unlock()

	switch state {
	case Ended:
		fiberlog.Infof("[%s] Stream ended after %d lines", s.sessionID, s.lines)
	case TimedOut:
		fiberlog.Warnf("[%s] No line for %v, giving up after %d lines", s.sessionID, s.deadline.Timeout(), s.lines)
	default:
		fiberlog.Errorf("[%s] Stream failed after %d lines: %v", s.sessionID, s.lines, err)
	}

	if cerr := s.Close(); cerr != nil {
		fiberlog.Debugf("[%s] Error closing source: %v", s.sessionID, cerr)
	}
}

// State returns the current lifecycle state. Safe for concurrent use.
func (s *Stream) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the terminal result, nil while active
func (s *Stream) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// SessionID returns the stream's session id
func (s *Stream) SessionID() string {
	return s.sessionID
}

// Timeout returns the idle timeout
func (s *Stream) Timeout() time.Duration {
	return s.deadline.Timeout()
}

// Lines returns the number of lines delivered, blank lines included
func (s *Stream) Lines() int64 {
	return s.lines
}

// LastGap returns the time between the two most recent lines. For the first
// line it is measured from construction.
func (s *Stream) LastGap() time.Duration {
	return s.lastGap
}
