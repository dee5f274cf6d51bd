package writers

import (
	"bufio"
	"bytes"
	"errors"
	"syscall"
	"testing"

	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
)

func TestLineStreamWriter(t *testing.T) {
	var out bytes.Buffer
	w := NewLineStreamWriter(bufio.NewWriter(&out), "test")

	for _, line := range []string{"{\"id\":1}", "", "{\"id\":2}"} {
		if err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write(%q) error = %v", line, err)
		}
	}
	if out.Len() != 0 {
		t.Fatalf("data reached the output before Flush: %q", out.String())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := "{\"id\":1}\n\n{\"id\":2}\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if w.TotalBytes() != int64(len(want)) {
		t.Fatalf("TotalBytes() = %d, want %d", w.TotalBytes(), len(want))
	}
	if w.Lines() != 3 {
		t.Fatalf("Lines() = %d, want 3", w.Lines())
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestLineStreamWriterClassifiesErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		disconnect bool
	}{
		{"broken pipe", syscall.EPIPE, true},
		{"other", errors.New("disk full"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A zero sized buffer is rounded up, so force the error through Flush
			w := NewLineStreamWriter(bufio.NewWriter(failingWriter{tt.err}), "test")
			if err := w.Write([]byte("x")); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			err := w.Flush()
			if err == nil {
				t.Fatal("Flush() succeeded")
			}
			if got := contracts.IsClientDisconnect(err); got != tt.disconnect {
				t.Fatalf("IsClientDisconnect(%v) = %v, want %v", err, got, tt.disconnect)
			}
		})
	}
}
