// Package ident generates record identifiers for store backends.
package ident

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces identifiers for records saved without one.
type Generator interface {
	Generate() string
}

// UUIDv7 generates time-sortable UUIDv7 identifiers, so records created
// later sort later.
//
// Thread-safety: UUIDv7 is stateless and safe for concurrent use.
type UUIDv7 struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Fixed returns predetermined identifiers in order, for tests.
//
// Thread-safety: Fixed is safe for concurrent use via internal mutex.
type Fixed struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixed creates a generator returning ids in order.
//
//	gen := NewFixed("a", "b")
//	gen.Generate() // "a"
//	gen.Generate() // "b"
//	gen.Generate() // panic: all identifiers exhausted
func NewFixed(ids ...string) *Fixed {
	return &Fixed{ids: ids}
}

// Generate returns the next identifier. It panics once every identifier has
// been handed out, so a test creating more records than planned fails fast.
func (g *Fixed) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("ident.Fixed: all identifiers exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Sequence generates "<prefix>-1", "<prefix>-2", ... Scenario runs use it
// so identifiers in golden traces are stable.
//
// Thread-safety: Sequence is safe for concurrent use via internal mutex.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequence creates a sequence generator. An empty prefix yields bare
// numbers.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Generate returns the next identifier in the sequence.
func (g *Sequence) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	if g.prefix == "" {
		return fmt.Sprint(g.n)
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
