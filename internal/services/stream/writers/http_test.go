package writers

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
)

type fakeConnState struct {
	connected bool
	done      chan struct{}
}

func (c *fakeConnState) IsConnected() bool     { return c.connected }
func (c *fakeConnState) Done() <-chan struct{} { return c.done }

func TestHTTPStreamWriterFramesWithCRLF(t *testing.T) {
	var out bytes.Buffer
	conn := &fakeConnState{connected: true, done: make(chan struct{})}
	w := NewHTTPStreamWriter(bufio.NewWriter(&out), conn, "test")

	if err := w.Write([]byte("{\"id\":1}")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Heartbeat(); err != nil {
		t.Fatalf("Heartbeat() error = %v", err)
	}

	want := "{\"id\":1}\r\n\r\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if w.TotalBytes() != int64(len(want)) {
		t.Fatalf("TotalBytes() = %d, want %d", w.TotalBytes(), len(want))
	}
}

func TestHTTPStreamWriterDisconnected(t *testing.T) {
	var out bytes.Buffer
	conn := &fakeConnState{connected: false}
	w := NewHTTPStreamWriter(bufio.NewWriter(&out), conn, "test")

	if err := w.Write([]byte("x")); !contracts.IsClientDisconnect(err) {
		t.Fatalf("Write() error = %v, want client disconnect", err)
	}
	if err := w.Flush(); !contracts.IsClientDisconnect(err) {
		t.Fatalf("Flush() error = %v, want client disconnect", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v, want nil once disconnected", err)
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want nothing", out.String())
	}
}
