package idle

import (
	"time"

	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
)

// DefaultTimeout is the idle timeout used when none is configured
const DefaultTimeout = 90 * time.Second

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Deadline is a resettable point in time after which the connection is stale.
// It is owned by a single stream and is not safe for concurrent use.
type Deadline struct {
	clock   contracts.Clock
	timeout time.Duration
	at      time.Time
}

// New arms a deadline at now + timeout. A nil clock uses the wall clock and a
// non-positive timeout uses DefaultTimeout.
func New(clock contracts.Clock, timeout time.Duration) *Deadline {
	if clock == nil {
		clock = SystemClock{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Deadline{clock: clock, timeout: timeout}
	d.Reset()
	return d
}

// Reset replaces the deadline with now + timeout
func (d *Deadline) Reset() {
	d.at = d.clock.Now().Add(d.timeout)
}

// Expired reports whether the deadline has been reached
func (d *Deadline) Expired() bool {
	return !d.clock.Now().Before(d.at)
}

// Remaining returns the time left before expiry, never negative
func (d *Deadline) Remaining() time.Duration {
	return max(d.at.Sub(d.clock.Now()), 0)
}

// When returns the current deadline
func (d *Deadline) When() time.Time {
	return d.at
}

// Timeout returns the configured idle timeout
func (d *Deadline) Timeout() time.Duration {
	return d.timeout
}

// C returns a channel that fires once the current deadline elapses.
// A later Reset does not move an already returned channel.
func (d *Deadline) C() <-chan time.Time {
	return d.clock.After(d.Remaining())
}
