package relay

import (
	"testing"
)

func receive(t *testing.T, s *Subscriber) (string, bool) {
	t.Helper()
	select {
	case line, ok := <-s.Lines():
		return string(line), ok
	default:
		t.Fatal("no line queued")
		return "", false
	}
}

func TestHubFansOut(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe()
	b := h.Subscribe()
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	if err := h.Write([]byte("tweet")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	for _, s := range []*Subscriber{a, b} {
		if line, ok := receive(t, s); !ok || line != "tweet" {
			t.Fatalf("subscriber %s got %q %v", s.ID(), line, ok)
		}
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub(1)
	slow := h.Subscribe()

	h.Write([]byte("first"))
	h.Write([]byte("second"))

	if slow.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", slow.Dropped())
	}
	if line, _ := receive(t, slow); line != "first" {
		t.Fatalf("line = %q, want first", line)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub(1)
	s := h.Subscribe()
	s.Close()
	s.Close()

	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}
	if _, ok := <-s.Lines(); ok {
		t.Fatal("Lines() still open after Close")
	}
	if err := h.Write([]byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub(0)
	s := h.Subscribe()

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, ok := <-s.Lines(); ok {
		t.Fatal("subscriber channel open after hub Close")
	}
	if h.Subscribe() != nil {
		t.Fatal("Subscribe() after Close returned a subscriber")
	}
	if err := h.Write([]byte("x")); err != nil {
		t.Fatalf("Write() after Close error = %v", err)
	}
	s.Close()
	if err := h.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
