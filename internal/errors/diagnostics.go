package errors

import (
	"sort"
	"sync"
)

// Collector accumulates non-fatal diagnostics across stages so that none is
// silently dropped. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	items  []*AppError
	counts map[ErrorType]int
}

// NewCollector creates an empty diagnostics collector
func NewCollector() *Collector {
	return &Collector{counts: make(map[ErrorType]int)}
}

// Add records diagnostics. Nil entries are ignored.
func (c *Collector) Add(diags ...*AppError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range diags {
		if d == nil {
			continue
		}
		c.items = append(c.items, d)
		c.counts[d.Type]++
	}
}

// Len returns the total number of recorded diagnostics
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Count returns the number of diagnostics of the given type
func (c *Collector) Count(t ErrorType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[t]
}

// Counts returns a copy of the per-type counts
func (c *Collector) Counts() map[ErrorType]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[ErrorType]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// All returns the recorded diagnostics in insertion order
func (c *Collector) All() []*AppError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*AppError, len(c.items))
	copy(out, c.items)
	return out
}

// ByType returns the recorded diagnostics of one type in insertion order
func (c *Collector) ByType(t ErrorType) []*AppError {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*AppError
	for _, d := range c.items {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// Types returns the recorded diagnostic types in sorted order
func (c *Collector) Types() []ErrorType {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]ErrorType, 0, len(c.counts))
	for t := range c.counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
