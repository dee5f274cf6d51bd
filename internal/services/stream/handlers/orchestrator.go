package handlers

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/kp666/twitter-stream/internal/metrics"
	"github.com/kp666/twitter-stream/internal/services/stream/contracts"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Sink is a named destination for lines
type Sink struct {
	Name   string
	Writer contracts.StreamWriter
}

// StreamOrchestrator moves lines from a Stream to its sinks
type StreamOrchestrator struct {
	stream         *Stream
	sinks          []Sink
	skipHeartbeats bool
	sessionID      string
}

// NewStreamOrchestrator creates a new stream orchestrator
func NewStreamOrchestrator(stream *Stream, skipHeartbeats bool, sinks ...Sink) *StreamOrchestrator {
	return &StreamOrchestrator{
		stream:         stream,
		sinks:          sinks,
		skipHeartbeats: skipHeartbeats,
		sessionID:      stream.SessionID(),
	}
}

// Handle consumes the stream until it terminates or ctx is done.
//
// The returned *contracts.StreamError says why it stopped: StreamComplete for a
// clean end, ClientDisconnect when ctx was cancelled, TimedOut, or SourceError
// wrapping the transport failure.
func (s *StreamOrchestrator) Handle(ctx context.Context) (err error) {
	startTime := time.Now()
	var totalLines, totalHeartbeats, totalBytes int64

	fiberlog.Infof("[%s] Starting stream orchestration with %d sinks", s.sessionID, len(s.sinks))
	metrics.StreamActive.Set(1)

	// Ensure cleanup
	defer func() {
		duration := time.Since(startTime)
		fiberlog.Infof("[%s] Stream finished: %d lines, %d heartbeats, %d bytes in %v (%.2f KB/s)",
			s.sessionID, totalLines, totalHeartbeats, totalBytes, duration, float64(totalBytes)/duration.Seconds()/1024)

		metrics.StreamActive.Set(0)
		metrics.TerminationsTotal.WithLabelValues(terminationReason(err)).Inc()

		// Close resources
		if cerr := s.stream.Close(); cerr != nil {
			fiberlog.Errorf("[%s] Error closing stream: %v", s.sessionID, cerr)
		}
		for _, sink := range s.sinks {
			if cerr := sink.Writer.Close(); cerr != nil && !contracts.IsExpectedError(cerr) {
				metrics.SinkErrorsTotal.WithLabelValues(sink.Name).Inc()
				fiberlog.Errorf("[%s] Error closing %s sink: %v", s.sessionID, sink.Name, cerr)
			}
		}
	}()

	for {
		line, err := s.stream.Next(ctx)
		if err != nil {
			return s.classify(ctx, err)
		}

		metrics.LineGap.Observe(s.stream.LastGap().Seconds())

		if len(line) == 0 {
			totalHeartbeats++
			metrics.LinesTotal.WithLabelValues(metrics.KindHeartbeat).Inc()
			fiberlog.Debugf("[%s] Blank line", s.sessionID)
			if s.skipHeartbeats {
				continue
			}
		} else {
			totalLines++
			totalBytes += int64(len(line))
			metrics.LinesTotal.WithLabelValues(metrics.KindLine).Inc()
			metrics.BytesTotal.Add(float64(len(line)))
		}

		s.fanOut(line)

		// Periodic logging for long streams
		if len(line) > 0 && totalLines%100 == 0 {
			duration := time.Since(startTime)
			throughput := float64(totalBytes) / duration.Seconds() / 1024
			fiberlog.Debugf("[%s] Stream progress: %d lines, %d bytes, %.2f KB/s",
				s.sessionID, totalLines, totalBytes, throughput)
		}
	}
}

// fanOut writes the line to every sink. A failing sink is logged and counted
// but does not stop the others or the stream.
func (s *StreamOrchestrator) fanOut(line []byte) {
	for _, sink := range s.sinks {
		if err := sink.Writer.Write(line); err != nil {
			s.sinkFailed(sink, "write", err)
			continue
		}
		if err := sink.Writer.Flush(); err != nil {
			s.sinkFailed(sink, "flush", err)
		}
	}
}

func (s *StreamOrchestrator) sinkFailed(sink Sink, op string, err error) {
	metrics.SinkErrorsTotal.WithLabelValues(sink.Name).Inc()
	if contracts.IsClientDisconnect(err) {
		fiberlog.Infof("[%s] %s sink disconnected during %s", s.sessionID, sink.Name, op)
		return
	}
	fiberlog.Errorf("[%s] %s sink %s failed: %v", s.sessionID, sink.Name, op, err)
}

// classify maps the terminal result to a StreamError. Once ctx is done the
// transport usually fails too, so cancellation wins over the stream's error.
func (s *StreamOrchestrator) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, io.EOF):
		fiberlog.Infof("[%s] Stream completed naturally", s.sessionID)
		return contracts.NewStreamCompleteError(s.sessionID)
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		fiberlog.Infof("[%s] Context cancelled, stopping stream", s.sessionID)
		return contracts.NewClientDisconnectError(s.sessionID)
	case contracts.IsTimedOut(err):
		return err
	default:
		return contracts.NewSourceError(s.sessionID, err)
	}
}

func terminationReason(err error) string {
	var streamErr *contracts.StreamError
	if errors.As(err, &streamErr) {
		return streamErr.Type.String()
	}
	return "unknown"
}

// SessionID returns the session ID
func (s *StreamOrchestrator) SessionID() string {
	return s.sessionID
}

// Stream returns the stream being consumed
func (s *StreamOrchestrator) Stream() *Stream {
	return s.stream
}
