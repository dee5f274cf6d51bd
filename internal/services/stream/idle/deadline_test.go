package idle

import (
	"testing"
	"time"

	"github.com/kp666/twitter-stream/internal/services/stream/streamtest"
)

func TestDeadlineArmedAtConstruction(t *testing.T) {
	clock := streamtest.NewClock()
	start := clock.Now()
	d := New(clock, 10*time.Second)

	if got, want := d.When(), start.Add(10*time.Second); !got.Equal(want) {
		t.Fatalf("When() = %v, want %v", got, want)
	}
	if d.Expired() {
		t.Fatal("fresh deadline reported expired")
	}
	if got := d.Remaining(); got != 10*time.Second {
		t.Fatalf("Remaining() = %v, want 10s", got)
	}
}

func TestDeadlineExpiresAtExactlyTimeout(t *testing.T) {
	clock := streamtest.NewClock()
	d := New(clock, 5*time.Second)

	clock.Advance(5*time.Second - time.Nanosecond)
	if d.Expired() {
		t.Fatal("expired before the timeout elapsed")
	}
	clock.Advance(time.Nanosecond)
	if !d.Expired() {
		t.Fatal("not expired once the timeout elapsed")
	}
	if got := d.Remaining(); got != 0 {
		t.Fatalf("Remaining() = %v, want 0", got)
	}
}

func TestDeadlineReset(t *testing.T) {
	clock := streamtest.NewClock()
	d := New(clock, 5*time.Second)

	clock.Advance(4 * time.Second)
	d.Reset()
	clock.Advance(4 * time.Second)
	if d.Expired() {
		t.Fatal("reset deadline expired early")
	}
	clock.Advance(time.Second)
	if !d.Expired() {
		t.Fatal("reset deadline did not expire")
	}
}

func TestDeadlineChannelFires(t *testing.T) {
	clock := streamtest.NewClock()
	d := New(clock, 3*time.Second)

	ch := d.C()
	select {
	case <-ch:
		t.Fatal("channel fired before the deadline")
	default:
	}

	clock.Advance(3 * time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("channel did not fire at the deadline")
	}
}

func TestDeadlineDefaults(t *testing.T) {
	d := New(nil, 0)
	if d.Timeout() != DefaultTimeout {
		t.Fatalf("Timeout() = %v, want %v", d.Timeout(), DefaultTimeout)
	}
	if d.Expired() {
		t.Fatal("wall-clock deadline expired immediately")
	}
}
