package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/crosswordduel/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Tickers only fire when the clock is advanced.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// NewTicker registers a ticker driven by Advance
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{period: d, ch: make(chan time.Time, 64)}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward by the given duration, firing each
// ticker once per whole period elapsed
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = c.CurrentTime.Add(d)
	for _, t := range c.tickers {
		t.advance(d, c.CurrentTime)
	}
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}

// MockTicker is a ticker fired by MockClock.Advance
type MockTicker struct {
	mu      sync.Mutex
	period  time.Duration
	elapsed time.Duration
	stopped bool
	ch      chan time.Time
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop prevents further ticks
func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *MockTicker) advance(d time.Duration, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.period <= 0 {
		return
	}
	t.elapsed += d
	for t.elapsed >= t.period {
		t.elapsed -= t.period
		select {
		case t.ch <- now:
		default:
		}
	}
}
