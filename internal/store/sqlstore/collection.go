package sqlstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/schemata/internal/canonical"
	"github.com/roach88/schemata/internal/ident"
	"github.com/roach88/schemata/internal/store"
)

// Collection is the store.Store for one record type within a DB.
type Collection struct {
	store.Base

	db   *DB
	name string
	gen  ident.Generator
}

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

// WithGenerator overrides the DB's identifier generator for one
// collection.
func WithGenerator(g ident.Generator) CollectionOption {
	return func(c *Collection) { c.gen = g }
}

// Collection returns the collection called name. Collections need no
// setup; an unused name is simply empty.
func (d *DB) Collection(name string, opts ...CollectionOption) *Collection {
	c := &Collection{db: d, name: name, gen: d.cfg.Generator}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Save inserts or replaces d and returns the stored form as FindAll would
// return it. Records saved without an identifier get one from the
// configured generator.
func (c *Collection) Save(ctx context.Context, d store.Data) (store.Data, error) {
	rec := store.Clone(d)
	if rec == nil {
		rec = store.Data{}
	}

	key := c.db.cfg.Key
	id, ok, err := store.KeyOf(rec, key)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", c.name, err)
	}
	if !ok {
		id = c.gen.Generate()
		rec[key] = id
	}

	data, err := canonical.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("save %s/%s: %w", c.name, id, err)
	}

	// ON CONFLICT keeps the original seq so updates do not reorder listings.
	_, err = c.db.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, seq, data)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE collection = ?), ?)
		ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data
	`, c.name, id, c.name, string(data))
	if err != nil {
		return nil, fmt.Errorf("save %s/%s: %w", c.name, id, err)
	}

	slog.Debug("sqlstore save", "collection", c.name, "id", id)
	return decode(data)
}

// Destroy deletes the record d identifies.
func (c *Collection) Destroy(ctx context.Context, d store.Data) error {
	id, ok := store.Identifier(d[c.db.cfg.Key])
	if !ok {
		return fmt.Errorf("destroy %s: no %s: %w", c.name, c.db.cfg.Key, store.ErrNotFound)
	}

	res, err := c.db.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, c.name, id)
	if err != nil {
		return fmt.Errorf("destroy %s/%s: %w", c.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("destroy %s/%s: %w", c.name, id, err)
	}
	if n == 0 {
		return fmt.Errorf("destroy %s/%s: %w", c.name, id, store.ErrNotFound)
	}

	slog.Debug("sqlstore destroy", "collection", c.name, "id", id)
	return nil
}

// Find returns the first record matching query.
func (c *Collection) Find(ctx context.Context, query any) (store.Data, error) {
	if id, ok := store.Identifier(query); ok {
		var data string
		err := c.db.db.QueryRowContext(ctx,
			`SELECT data FROM records WHERE collection = ? AND id = ?`, c.name, id).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find %s/%s: %w", c.name, id, store.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("find %s/%s: %w", c.name, id, err)
		}
		return decode([]byte(data))
	}

	found, err := c.scan(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("find %s: %w", c.name, store.ErrNotFound)
	}
	return found[0], nil
}

// FindAll returns every record matching query, ordered by first insertion.
func (c *Collection) FindAll(ctx context.Context, query any) ([]store.Data, error) {
	return c.scan(ctx, query, 0)
}

// scan walks the collection in order, keeping records that match query.
// limit 0 means no limit.
func (c *Collection) scan(ctx context.Context, query any, limit int) ([]store.Data, error) {
	rows, err := c.db.db.QueryContext(ctx, `
		SELECT data FROM records
		WHERE collection = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, c.name)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.name, err)
	}
	defer rows.Close()

	out := []store.Data{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		rec, err := decode([]byte(data))
		if err != nil {
			return nil, err
		}
		ok, err := store.Match(rec, c.db.cfg.Key, query)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.name, err)
	}
	return out, nil
}

// decode reads stored JSON, keeping numbers as json.Number so integers
// survive the round trip exactly.
func decode(data []byte) (store.Data, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec store.Data
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
