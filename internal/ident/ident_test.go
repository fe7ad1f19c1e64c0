package ident

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7(t *testing.T) {
	var gen Generator = UUIDv7{}

	first := gen.Generate()
	second := gen.Generate()

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}

func TestFixed(t *testing.T) {
	gen := NewFixed("a", "b")

	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.PanicsWithValue(t, "ident.Fixed: all identifiers exhausted", func() {
		gen.Generate()
	})
}

func TestSequence(t *testing.T) {
	gen := NewSequence("person")
	assert.Equal(t, "person-1", gen.Generate())
	assert.Equal(t, "person-2", gen.Generate())

	bare := NewSequence("")
	assert.Equal(t, "1", bare.Generate())
}

func TestSequenceConcurrent(t *testing.T) {
	gen := NewSequence("x")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.Generate()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}
