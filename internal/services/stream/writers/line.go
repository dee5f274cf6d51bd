package writers

import (
	"bufio"

	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
)

var _ contracts.StreamWriter = (*LineStreamWriter)(nil)

// LineStreamWriter writes one line per record, LF terminated.
// Used for stdout and files.
type LineStreamWriter struct {
	writer     *bufio.Writer
	sessionID  string
	totalBytes int64
	lines      int64
}

// NewLineStreamWriter creates a new line writer
func NewLineStreamWriter(writer *bufio.Writer, sessionID string) *LineStreamWriter {
	return &LineStreamWriter{
		writer:    writer,
		sessionID: sessionID,
	}
}

// Write writes the line followed by a newline
func (w *LineStreamWriter) Write(line []byte) error {
	if err := w.writeBytes(line); err != nil {
		return err
	}
	if err := w.writeBytes([]byte{'\n'}); err != nil {
		return err
	}
	w.lines++
	return nil
}

// writeBytes is a helper method to write bytes and track total bytes
func (w *LineStreamWriter) writeBytes(data []byte) error {
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
func (w *LineStreamWriter) Flush() error {
	if err := w.writer.Flush(); err != nil {
		if contracts.IsConnectionClosed(err) {
			return contracts.NewClientDisconnectError(w.sessionID)
		}
		return contracts.NewInternalError(w.sessionID, "flush failed", err)
	}
	return nil
}

// Close flushes remaining data
func (w *LineStreamWriter) Close() error {
	return w.Flush()
}

// TotalBytes returns total bytes written
func (w *LineStreamWriter) TotalBytes() int64 {
	return w.totalBytes
}

// Lines returns the number of lines written
func (w *LineStreamWriter) Lines() int64 {
	return w.lines
}
