package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/schemata/internal/future"
	"github.com/roach88/schemata/internal/store"
)

func (t *Type) storeFor(op string) (store.Store, store.Codec, error) {
	if t.backend == nil {
		return nil, nil, fmt.Errorf("%s %s: %w", op, t.name, ErrNoStore)
	}
	return t.backend, store.CodecOf(t.backend), nil
}

// Save serializes r, persists it and applies the stored form back onto r
// with SetProperties, so identifiers or other fields the store assigns are
// visible on r afterwards. It returns r itself.
func (r *Record) Save(ctx context.Context) (*Record, error) {
	s, codec, err := r.typ.storeFor("save")
	if err != nil {
		return nil, err
	}

	data, err := codec.Serialize(r)
	if err != nil {
		return nil, fmt.Errorf("save %s: serialize: %w", r.typ.name, err)
	}
	saved, err := s.Save(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", r.typ.name, err)
	}
	out, err := codec.Deserialize(saved)
	if err != nil {
		return nil, fmt.Errorf("save %s: deserialize: %w", r.typ.name, err)
	}

	r.SetProperties(out)
	slog.Debug("record saved", "model", r.typ.name, "fields", len(out))
	return r, nil
}

// Destroy removes r from the store. r itself is left untouched.
func (r *Record) Destroy(ctx context.Context) error {
	s, codec, err := r.typ.storeFor("destroy")
	if err != nil {
		return err
	}

	data, err := codec.Serialize(r)
	if err != nil {
		return fmt.Errorf("destroy %s: serialize: %w", r.typ.name, err)
	}
	if err := s.Destroy(ctx, data); err != nil {
		return fmt.Errorf("destroy %s: %w", r.typ.name, err)
	}

	slog.Debug("record destroyed", "model", r.typ.name)
	return nil
}

// Find returns the record the store finds for query.
func (t *Type) Find(ctx context.Context, query any) (*Record, error) {
	s, codec, err := t.storeFor("find")
	if err != nil {
		return nil, err
	}

	datum, err := s.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", t.name, err)
	}
	return t.reconstruct(codec, datum)
}

// FindAll returns every record the store finds for query, in store order.
func (t *Type) FindAll(ctx context.Context, query any) ([]*Record, error) {
	s, codec, err := t.storeFor("findAll")
	if err != nil {
		return nil, err
	}

	data, err := s.FindAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("findAll %s: %w", t.name, err)
	}

	records := make([]*Record, 0, len(data))
	for _, datum := range data {
		r, err := t.reconstruct(codec, datum)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (t *Type) reconstruct(codec store.Codec, datum store.Data) (*Record, error) {
	data, err := codec.Deserialize(datum)
	if err != nil {
		return nil, fmt.Errorf("%s: deserialize: %w", t.name, err)
	}
	return New(t, data)
}

// SaveAsync runs Save on a new goroutine.
func (r *Record) SaveAsync(ctx context.Context) *future.Future[*Record] {
	return future.Go(ctx, r.Save)
}

// DestroyAsync runs Destroy on a new goroutine.
func (r *Record) DestroyAsync(ctx context.Context) *future.Future[struct{}] {
	return future.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.Destroy(ctx)
	})
}

// FindAsync runs Find on a new goroutine.
func (t *Type) FindAsync(ctx context.Context, query any) *future.Future[*Record] {
	return future.Go(ctx, func(ctx context.Context) (*Record, error) {
		return t.Find(ctx, query)
	})
}

// FindAllAsync runs FindAll on a new goroutine.
func (t *Type) FindAllAsync(ctx context.Context, query any) *future.Future[[]*Record] {
	return future.Go(ctx, func(ctx context.Context) ([]*Record, error) {
		return t.FindAll(ctx, query)
	})
}
