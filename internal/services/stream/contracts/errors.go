package contracts

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// StreamErrorType categorizes different types of streaming errors
type StreamErrorType int

const (
	// Expected errors - not logged as errors
	ClientDisconnect StreamErrorType = iota
	StreamComplete

	// Unexpected errors - logged as errors
	TimedOut
	HTTPStatus
	SourceError
	InternalError
)

func (t StreamErrorType) String() string {
	switch t {
	case ClientDisconnect:
		return "client_disconnect"
	case StreamComplete:
		return "complete"
	case TimedOut:
		return "timed_out"
	case HTTPStatus:
		return "http_status"
	case SourceError:
		return "source_error"
	case InternalError:
		return "internal_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// StreamError provides structured error handling
type StreamError struct {
	Type       StreamErrorType
	Message    string
	Cause      error
	SessionID  string
	Timeout    time.Duration // set for TimedOut
	StatusCode int           // set for HTTPStatus
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// IsExpected returns true if this error type is expected (client disconnect, etc.)
func (e *StreamError) IsExpected() bool {
	return e.Type == ClientDisconnect || e.Type == StreamComplete
}

// Error constructors
func NewClientDisconnectError(sessionID string) *StreamError {
	return &StreamError{
		Type:      ClientDisconnect,
		Message:   "Client disconnected",
		SessionID: sessionID,
	}
}

func NewStreamCompleteError(sessionID string) *StreamError {
	return &StreamError{
		Type:      StreamComplete,
		Message:   "Stream completed normally",
		SessionID: sessionID,
	}
}

func NewTimedOutError(sessionID string, timeout time.Duration) *StreamError {
	return &StreamError{
		Type:      TimedOut,
		Message:   fmt.Sprintf("connection timed out after %v without a line", timeout),
		SessionID: sessionID,
		Timeout:   timeout,
	}
}

func NewHTTPStatusError(statusCode int, body string) *StreamError {
	msg := fmt.Sprintf("stream endpoint returned status %d %s", statusCode, http.StatusText(statusCode))
	if body = strings.TrimSpace(body); body != "" {
		msg += ": " + body
	}
	return &StreamError{
		Type:       HTTPStatus,
		Message:    msg,
		StatusCode: statusCode,
	}
}

func NewSourceError(sessionID string, cause error) *StreamError {
	return &StreamError{
		Type:      SourceError,
		Message:   "stream source failed",
		Cause:     cause,
		SessionID: sessionID,
	}
}

func NewInternalError(sessionID, message string, cause error) *StreamError {
	return &StreamError{
		Type:      InternalError,
		Message:   message,
		Cause:     cause,
		SessionID: sessionID,
	}
}

// Helper functions

func typeOf(err error) (StreamErrorType, bool) {
	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		return streamErr.Type, true
	}
	return 0, false
}

// IsClientDisconnect checks if error is a client disconnect
func IsClientDisconnect(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ClientDisconnect
}

// IsTimedOut reports whether err is an idle timeout
func IsTimedOut(err error) bool {
	t, ok := typeOf(err)
	return ok && t == TimedOut
}

// IsHTTPStatus reports whether err is a non-200 handshake response
func IsHTTPStatus(err error) bool {
	t, ok := typeOf(err)
	return ok && t == HTTPStatus
}

// IsExpectedError checks if error is expected (not a real error)
func IsExpectedError(err error) bool {
	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		return streamErr.IsExpected()
	}
	return false
}

// IsConnectionClosed checks if error indicates closed connection
func IsConnectionClosed(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection closed") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "use of closed network connection")
}
