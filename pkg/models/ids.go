package models

import "sync/atomic"

// IDAllocator hands out monotonically increasing symbol IDs for a single
// project. Orchestrator construction seeds it from the store's current
// high-water mark so IDs stay unique and increasing across indexer runs,
// not just within one process lifetime.
type IDAllocator struct {
	next atomic.Int64
}

// NewIDAllocator returns an allocator whose first Next() call yields
// seed+1. Pass the store's current max symbol ID for the project (0 for a
// brand-new project).
func NewIDAllocator(seed int64) *IDAllocator {
	a := &IDAllocator{}
	a.next.Store(seed)
	return a
}

// Next returns the next unused ID. Safe for concurrent use by multiple
// parser goroutines during the parse phase.
func (a *IDAllocator) Next() int64 {
	return a.next.Add(1)
}

// Peek returns the most recently allocated ID without consuming one.
func (a *IDAllocator) Peek() int64 {
	return a.next.Load()
}
