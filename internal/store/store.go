package store

import "context"

// Data is the plain representation records take at the store boundary.
type Data = map[string]any

// Store is the persistence contract records delegate to.
type Store interface {
	// Save persists d and returns the stored form, which may be enriched
	// (for example with an assigned identifier).
	Save(ctx context.Context, d Data) (Data, error)

	// Destroy removes the record d identifies. Backends return ErrNotFound
	// when there is nothing to remove.
	Destroy(ctx context.Context, d Data) error

	// Find returns the first record matching query, or ErrNotFound.
	Find(ctx context.Context, query any) (Data, error)

	// FindAll returns every record matching query in a stable order.
	FindAll(ctx context.Context, query any) ([]Data, error)
}

// Serializable is implemented by values a Codec can serialize.
type Serializable interface {
	ToJSON() map[string]any
}

// Codec converts between records and stored data.
type Codec interface {
	Serialize(r Serializable) (Data, error)
	Deserialize(d Data) (Data, error)
}

// DefaultCodec serializes a record to its JSON projection and passes stored
// data through unchanged.
type DefaultCodec struct{}

// Serialize returns r's JSON projection.
func (DefaultCodec) Serialize(r Serializable) (Data, error) {
	return r.ToJSON(), nil
}

// Deserialize returns d unchanged.
func (DefaultCodec) Deserialize(d Data) (Data, error) {
	return d, nil
}

// CodecOf returns s's own Codec when it has one, DefaultCodec otherwise.
func CodecOf(s Store) Codec {
	if c, ok := s.(Codec); ok {
		return c
	}
	return DefaultCodec{}
}

// Base is the abstract store. Embed it and override the operations a
// backend supports; the rest fail with *NotImplementedError.
type Base struct {
	DefaultCodec
}

// Save is not implemented by Base.
func (Base) Save(context.Context, Data) (Data, error) {
	return nil, &NotImplementedError{Op: "save"}
}

// Destroy is not implemented by Base.
func (Base) Destroy(context.Context, Data) error {
	return &NotImplementedError{Op: "destroy"}
}

// Find is not implemented by Base.
func (Base) Find(context.Context, any) (Data, error) {
	return nil, &NotImplementedError{Op: "find"}
}

// FindAll is not implemented by Base.
func (Base) FindAll(context.Context, any) ([]Data, error) {
	return nil, &NotImplementedError{Op: "findAll"}
}

// Concrete rejects values that are the abstract Base itself rather than a
// store built on it.
func Concrete(s Store) error {
	switch s.(type) {
	case nil:
		return &AbstractInstantiationError{Name: "nil store"}
	case Base, *Base:
		return &AbstractInstantiationError{Name: "store.Base"}
	}
	return nil
}
