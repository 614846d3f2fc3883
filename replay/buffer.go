// Package replay holds the shared training-example ring buffer that
// every actor extends and the trainer samples from.
package replay

import (
	"math/rand"
	"sync"

	"github.com/portstow/az/env"
)

// Example is one training tuple: the observation at a decision point,
// the tree policy that decision produced, and the bootstrapped value
// target backfilled once the episode ended.
type Example struct {
	Observation env.Observation
	Policy      []float32
	Value       float32
}

// Buffer is a fixed-capacity ring of Examples, safe for concurrent
// Extend/Sample calls from many actor goroutines and one trainer
// goroutine.
type Buffer struct {
	mu       sync.Mutex
	capacity int
	items    []Example
}

// New returns an empty buffer holding at most capacity examples.
func New(capacity int) *Buffer {
	return &Buffer{capacity: capacity}
}

// Extend appends items, trimming the oldest entries once over capacity.
func (b *Buffer) Extend(items []Example) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, items...)
	if over := len(b.items) - b.capacity; b.capacity > 0 && over > 0 {
		b.items = b.items[over:]
	}
}

// Sample draws batchSize examples without replacement. It reports false
// if fewer than batchSize examples are currently held.
func (b *Buffer) Sample(batchSize int, src *rand.Rand) ([]Example, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) < batchSize {
		return nil, false
	}
	perm := src.Perm(len(b.items))[:batchSize]
	out := make([]Example, batchSize)
	for i, idx := range perm {
		out[i] = b.items[idx]
	}
	return out, true
}

// Len reports the number of examples currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
