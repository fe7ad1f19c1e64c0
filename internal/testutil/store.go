package testutil

import (
	"context"
	"sync"

	"github.com/roach88/schemata/internal/store"
)

// Call is one operation seen by a RecordingStore.
type Call struct {
	Op    string
	Data  store.Data
	Query any
}

// RecordingStore wraps a store and records every call made through it.
// Errors can be injected per operation with Fail. The wrapped store's
// Codec, if any, is used for serialization.
type RecordingStore struct {
	store.Store

	mu    sync.Mutex
	calls []Call
	fail  map[string]error
}

// NewRecordingStore wraps inner.
func NewRecordingStore(inner store.Store) *RecordingStore {
	return &RecordingStore{Store: inner, fail: make(map[string]error)}
}

// Fail makes op ("save", "destroy", "find", "findAll") return err.
func (s *RecordingStore) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// Calls returns the recorded calls in order.
func (s *RecordingStore) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *RecordingStore) record(c Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return s.fail[c.Op]
}

func (s *RecordingStore) Save(ctx context.Context, d store.Data) (store.Data, error) {
	if err := s.record(Call{Op: "save", Data: store.Clone(d)}); err != nil {
		return nil, err
	}
	return s.Store.Save(ctx, d)
}

func (s *RecordingStore) Destroy(ctx context.Context, d store.Data) error {
	if err := s.record(Call{Op: "destroy", Data: store.Clone(d)}); err != nil {
		return err
	}
	return s.Store.Destroy(ctx, d)
}

func (s *RecordingStore) Find(ctx context.Context, query any) (store.Data, error) {
	if err := s.record(Call{Op: "find", Query: query}); err != nil {
		return nil, err
	}
	return s.Store.Find(ctx, query)
}

func (s *RecordingStore) FindAll(ctx context.Context, query any) ([]store.Data, error) {
	if err := s.record(Call{Op: "findAll", Query: query}); err != nil {
		return nil, err
	}
	return s.Store.FindAll(ctx, query)
}

// Serialize implements store.Codec with the wrapped store's codec.
func (s *RecordingStore) Serialize(r store.Serializable) (store.Data, error) {
	return store.CodecOf(s.Store).Serialize(r)
}

// Deserialize implements store.Codec with the wrapped store's codec.
func (s *RecordingStore) Deserialize(d store.Data) (store.Data, error) {
	return store.CodecOf(s.Store).Deserialize(d)
}
