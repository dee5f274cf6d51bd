package contracts

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

func TestStreamErrorClassification(t *testing.T) {
	timeout := NewTimedOutError("s1", 90*time.Second)
	status := NewHTTPStatusError(420, "Enhance Your Calm")
	source := NewSourceError("s1", io.ErrUnexpectedEOF)

	tests := []struct {
		name       string
		err        error
		timedOut   bool
		httpStatus bool
		expected   bool
	}{
		{"timeout", timeout, true, false, false},
		{"wrapped timeout", fmt.Errorf("consume: %w", timeout), true, false, false},
		{"status", status, false, true, false},
		{"source", source, false, false, false},
		{"complete", NewStreamCompleteError("s1"), false, false, true},
		{"disconnect", NewClientDisconnectError("s1"), false, false, true},
		{"plain", errors.New("boom"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimedOut(tt.err); got != tt.timedOut {
				t.Errorf("IsTimedOut = %v, want %v", got, tt.timedOut)
			}
			if got := IsHTTPStatus(tt.err); got != tt.httpStatus {
				t.Errorf("IsHTTPStatus = %v, want %v", got, tt.httpStatus)
			}
			if got := IsExpectedError(tt.err); got != tt.expected {
				t.Errorf("IsExpectedError = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTimedOutErrorCarriesTimeout(t *testing.T) {
	err := NewTimedOutError("s1", 3*time.Second)
	if err.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v, want 3s", err.Timeout)
	}
	if !strings.Contains(err.Error(), "3s") {
		t.Fatalf("Error() = %q, want it to mention 3s", err.Error())
	}
}

func TestHTTPStatusErrorMessage(t *testing.T) {
	err := NewHTTPStatusError(401, "  \n")
	if err.StatusCode != 401 {
		t.Fatalf("StatusCode = %d, want 401", err.StatusCode)
	}
	if got, want := err.Error(), "stream endpoint returned status 401 Unauthorized"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestSourceErrorUnwraps(t *testing.T) {
	err := NewSourceError("s1", io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("expected errors.Is to reach the cause")
	}
}

func TestIsConnectionClosed(t *testing.T) {
	if IsConnectionClosed(nil) {
		t.Error("nil error reported as closed")
	}
	if !IsConnectionClosed(errors.New("write tcp: broken pipe")) {
		t.Error("broken pipe not detected")
	}
	if IsConnectionClosed(errors.New("bad gateway")) {
		t.Error("unrelated error reported as closed")
	}
}

func TestStreamErrorTypeString(t *testing.T) {
	if got := TimedOut.String(); got != "timed_out" {
		t.Errorf("TimedOut.String() = %q", got)
	}
	if got := StreamErrorType(42).String(); got != "unknown(42)" {
		t.Errorf("unknown String() = %q", got)
	}
}
