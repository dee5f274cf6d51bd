package writers

import (
	"bufio"

	"github.com/kp666/twitter-stream/internal/services/stream/contracts"

	"github.com/valyala/fasthttp"
)

var crlf = []byte("\r\n")

var _ contracts.StreamWriter = (*HTTPStreamWriter)(nil)

// HTTPStreamWriter re-serves lines over a chunked HTTP response using the same
// CRLF framing as the upstream feed
type HTTPStreamWriter struct {
	writer     *bufio.Writer
	connState  contracts.ConnectionState
	sessionID  string
	totalBytes int64
}

// NewHTTPStreamWriter creates a new HTTP stream writer
func NewHTTPStreamWriter(writer *bufio.Writer, connState contracts.ConnectionState, sessionID string) *HTTPStreamWriter {
	return &HTTPStreamWriter{
		writer:    writer,
		connState: connState,
		sessionID: sessionID,
	}
}

// Write writes one CRLF terminated line. An empty line is a heartbeat.
func (w *HTTPStreamWriter) Write(line []byte) error {
	// Check connection state
	if !w.connState.IsConnected() {
		return contracts.NewClientDisconnectError(w.sessionID)
	}

	if err := w.writeBytes(line); err != nil {
		return err
	}
	return w.writeBytes(crlf)
}

// Heartbeat writes a blank line and flushes it
func (w *HTTPStreamWriter) Heartbeat() error {
	if err := w.Write(nil); err != nil {
		return err
	}
	return w.Flush()
}

func (w *HTTPStreamWriter) writeBytes(data []byte) error {
	n, err := w.writer.Write(data)
	if n > 0 {
		// Account for actual bytes written, even on partial write or error
		w.totalBytes += int64(n)
	}

	if err != nil {
		if contracts.IsConnectionClosed(err) {
			return contracts.NewClientDisconnectError(w.sessionID)
		}
		return contracts.NewInternalError(w.sessionID, "write failed", err)
	}
	return nil
}

// Flush flushes buffered data
func (w *HTTPStreamWriter) Flush() error {
	// Check connection state before flushing
	if !w.connState.IsConnected() {
		return contracts.NewClientDisconnectError(w.sessionID)
	}

	if err := w.writer.Flush(); err != nil {
		if contracts.IsConnectionClosed(err) {
			return contracts.NewClientDisconnectError(w.sessionID)
		}
		return contracts.NewInternalError(w.sessionID, "flush failed", err)
	}

	return nil
}

// Close flushes what is left while the client is still there
func (w *HTTPStreamWriter) Close() error {
	if !w.connState.IsConnected() {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		if contracts.IsConnectionClosed(err) {
			return contracts.NewClientDisconnectError(w.sessionID)
		}
		return contracts.NewInternalError(w.sessionID, "flush failed", err)
	}
	return nil
}

// TotalBytes returns total bytes written
func (w *HTTPStreamWriter) TotalBytes() int64 {
	return w.totalBytes
}

// FastHTTPConnectionState wraps FastHTTP context for connection state
type FastHTTPConnectionState struct {
	ctx *fasthttp.RequestCtx
}

// NewFastHTTPConnectionState creates connection state from FastHTTP context
func NewFastHTTPConnectionState(ctx *fasthttp.RequestCtx) *FastHTTPConnectionState {
	return &FastHTTPConnectionState{ctx: ctx}
}

// IsConnected checks if client is still connected
func (c *FastHTTPConnectionState) IsConnected() bool {
	if c.ctx == nil {
		return false
	}
	select {
	case <-c.ctx.Done():
		return false
	default:
		return true
	}
}

// Done returns channel that closes when client disconnects
func (c *FastHTTPConnectionState) Done() <-chan struct{} {
	if c.ctx == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return c.ctx.Done()
}
