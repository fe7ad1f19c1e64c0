// Package memstore is an in-memory store.Store.
//
// Records live in insertion order keyed by an identifier field ("id" unless
// configured otherwise). Saving a record without an identifier assigns one
// from an ident.Generator. Data is deep-copied on the way in and out, so
// callers never share maps with the store.
package memstore

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/schemata/internal/ident"
	"github.com/roach88/schemata/internal/store"
)

// Store is an in-memory store.Store.
//
// Thread-safety: Store is safe for concurrent use via an internal RWMutex.
type Store struct {
	store.Base

	mu      sync.RWMutex
	key     string
	gen     ident.Generator
	order   []string
	records map[string]store.Data
}

// Option configures New.
type Option func(*Store)

// WithKey sets the identifier field. Default: "id".
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithGenerator sets the generator for records saved without an
// identifier. Default: ident.UUIDv7.
func WithGenerator(g ident.Generator) Option {
	return func(s *Store) {
		if g != nil {
			s.gen = g
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		key:     "id",
		gen:     ident.UUIDv7{},
		records: make(map[string]store.Data),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save inserts or replaces d. Replacing keeps the record's original
// position.
func (s *Store) Save(ctx context.Context, d store.Data) (store.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := store.Clone(d)
	if rec == nil {
		rec = store.Data{}
	}

	id, ok, err := store.KeyOf(rec, s.key)
	if err != nil {
		return nil, fmt.Errorf("memstore: save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		id = s.gen.Generate()
		rec[s.key] = id
	}

	_, exists := s.records[id]
	if !exists {
		s.order = append(s.order, id)
	}
	s.records[id] = rec

	slog.Debug("memstore save", "id", id, "created", !exists)
	return store.Clone(rec), nil
}

// Destroy removes the record d identifies, failing with store.ErrNotFound
// when there is none.
func (s *Store) Destroy(ctx context.Context, d store.Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, ok := store.Identifier(d[s.key])
	if !ok {
		return fmt.Errorf("memstore: destroy without %s: %w", s.key, store.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return fmt.Errorf("memstore: destroy %s: %w", id, store.ErrNotFound)
	}
	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == id })

	slog.Debug("memstore destroy", "id", id)
	return nil
}

// Find returns the first record matching query.
func (s *Store) Find(ctx context.Context, query any) (store.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := store.Identifier(query); ok {
		if rec, exists := s.records[id]; exists {
			return store.Clone(rec), nil
		}
		return nil, fmt.Errorf("memstore: find %s: %w", id, store.ErrNotFound)
	}

	for _, id := range s.order {
		rec := s.records[id]
		ok, err := store.Match(rec, s.key, query)
		if err != nil {
			return nil, err
		}
		if ok {
			return store.Clone(rec), nil
		}
	}
	return nil, fmt.Errorf("memstore: find: %w", store.ErrNotFound)
}

// FindAll returns every record matching query in insertion order.
func (s *Store) FindAll(ctx context.Context, query any) ([]store.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []store.Data{}
	for _, id := range s.order {
		rec := s.records[id]
		ok, err := store.Match(rec, s.key, query)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, store.Clone(rec))
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
