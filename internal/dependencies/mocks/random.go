package mocks

import (
	"github.com/mcoot/crosswordduel/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or n-1 if none remaining.
// Out-of-range queued values are clamped into [0, n).
func (r *MockRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if r.intnIndex >= len(r.IntnResults) {
		return n - 1
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	if result < 0 {
		return 0
	}
	if result >= n {
		return n - 1
	}
	return result
}

// Shuffle runs Fisher-Yates over the queued Intn results. With an empty
// queue every draw returns n-1, which leaves the order unchanged.
func (r *MockRandom) Shuffle(n int, swap func(i, j int)) {
	random.FisherYates(r, n, swap)
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.IntnResults = nil
	r.intnIndex = 0
}
