// Package stats contains statistics calculations and reporting.
package stats

import "github.com/verte-zerg/keytally/internal/model"

// Counter tallies key presses and remembers the order in which keys first appeared.
type Counter struct {
	order  []string
	counts map[string]int
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: map[string]int{}}
}

// Add records one press of key.
func (c *Counter) Add(key string) {
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Entries returns key counts in first-seen order.
func (c *Counter) Entries() []model.KeyCount {
	out := make([]model.KeyCount, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, model.KeyCount{Key: key, Count: c.counts[key]})
	}
	return out
}
