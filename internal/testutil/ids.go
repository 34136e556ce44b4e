package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// SequentialIDs generates version 4 shaped UUIDs from a counter:
// 00000000-0000-4000-8000-000000000001, ...000002, and so on.
//
// This enables deterministic test execution and golden snapshot comparison.
// Random IDs would reorder rows sorted by id from one run to the next.
//
// Thread-safety: Next is safe for concurrent use.
type SequentialIDs struct {
	mu  sync.Mutex
	seq uint64
}

// NewSequentialIDs creates a generator whose first ID ends in 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// Next returns the next ID.
func (g *SequentialIDs) Next() uuid.UUID {
	g.mu.Lock()
	g.seq++
	n := g.seq
	g.mu.Unlock()

	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], n)
	id[6] = 0x40
	id[8] = 0x80
	return id
}
