package session

import (
	"fmt"
	"sync"
)

// Timer is a countdown in whole seconds driven by explicit ticks. The owner
// decides where ticks come from: a wall-clock ticker in production, direct
// calls in tests.
type Timer struct {
	remaining int
	running   bool
	expired   bool

	once      sync.Once
	expiredCh chan struct{}
}

// NewTimer returns a stopped timer with nothing on the clock.
func NewTimer() *Timer {
	return &Timer{expiredCh: make(chan struct{})}
}

// Start arms the timer with totalSeconds. Negative values are clamped to
// zero; the next tick then expires the timer.
func (t *Timer) Start(totalSeconds int) {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	t.remaining = totalSeconds
	t.running = !t.expired
}

// Tick decrements the countdown. It returns true only on the tick that
// expires the timer.
func (t *Timer) Tick() bool {
	if !t.running {
		return false
	}
	t.remaining--
	if t.remaining > 0 {
		return false
	}
	t.remaining = 0
	t.running = false
	t.expired = true
	t.once.Do(func() { close(t.expiredCh) })
	return true
}

// Stop halts the countdown without expiring it.
func (t *Timer) Stop() {
	t.running = false
}

// Expired is closed exactly once when the countdown reaches zero.
func (t *Timer) Expired() <-chan struct{} {
	return t.expiredCh
}

// Remaining returns the seconds left on the clock.
func (t *Timer) Remaining() int { return t.remaining }

func (t *Timer) Running() bool { return t.running }

func (t *Timer) HasExpired() bool { return t.expired }

// Display renders the remaining time as MM:SS.
func (t *Timer) Display() string {
	return FormatClock(t.remaining)
}

// FormatClock renders seconds as MM:SS. Minutes are not capped at two digits.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
