package analysis

import (
	"sync/atomic"
)

// Generation tags each run request of a screen. A response is applied
// only while its tag is still current; resets and teardown advance the
// counter so late responses are discarded.
type Generation struct {
	current int64
}

// NewGeneration creates a counter starting at zero
func NewGeneration() *Generation {
	return &Generation{}
}

// Next issues a new tag atomically
func (g *Generation) Next() int64 {
	return atomic.AddInt64(&g.current, 1)
}

// Current returns the last issued tag without incrementing
func (g *Generation) Current() int64 {
	return atomic.LoadInt64(&g.current)
}

// IsCurrent reports whether tag is still the latest
func (g *Generation) IsCurrent(tag int64) bool {
	return g.Current() == tag
}
