package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type partial struct {
	Base
}

func (partial) FindAll(context.Context, any) ([]Data, error) {
	return []Data{{"id": "1"}}, nil
}

type projection map[string]any

func (p projection) ToJSON() map[string]any { return p }

func TestBaseOperationsNotImplemented(t *testing.T) {
	ctx := context.Background()
	var s Store = partial{}

	_, err := s.Find(ctx, "1")
	op, ok := IsNotImplemented(err)
	require.True(t, ok)
	assert.Equal(t, "find", op)
	assert.EqualError(t, err, "store: find not implemented")

	_, err = s.Save(ctx, Data{})
	op, _ = IsNotImplemented(err)
	assert.Equal(t, "save", op)

	err = s.Destroy(ctx, Data{})
	op, _ = IsNotImplemented(err)
	assert.Equal(t, "destroy", op)

	all, err := s.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = Base{}.FindAll(ctx, nil)
	op, _ = IsNotImplemented(err)
	assert.Equal(t, "findAll", op)
}

func TestConcrete(t *testing.T) {
	assert.NoError(t, Concrete(partial{}))
	assert.NoError(t, Concrete(&partial{}))

	for _, s := range []Store{Base{}, &Base{}, nil} {
		err := Concrete(s)
		require.Error(t, err)
		assert.True(t, IsAbstractInstantiation(err))
	}
}

func TestDefaultCodec(t *testing.T) {
	c := CodecOf(partial{})

	d, err := c.Serialize(projection{"name": "Bruce"})
	require.NoError(t, err)
	assert.Equal(t, Data{"name": "Bruce"}, d)

	out, err := c.Deserialize(Data{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, Data{"id": 1}, out)
}

type upperCodec struct{ partial }

func (upperCodec) Deserialize(d Data) (Data, error) {
	out := Clone(d)
	out["deserialized"] = true
	return out, nil
}

func TestCodecOfPrefersOverride(t *testing.T) {
	c := CodecOf(upperCodec{})

	out, err := c.Deserialize(Data{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, true, out["deserialized"])

	d, err := c.Serialize(projection{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, Data{"a": 1}, d)
}

func TestMatch(t *testing.T) {
	rec := Data{"id": "person-1", "name": "Bruce", "age": int64(42), "tags": []any{"a", "b"}}
	numeric := Data{"id": int64(7)}

	tests := []struct {
		name     string
		data     Data
		query    any
		expected bool
	}{
		{"nil matches all", rec, nil, true},
		{"identifier", rec, "person-1", true},
		{"other identifier", rec, "person-2", false},
		{"numeric identifier", numeric, 7, true},
		{"float identifier", numeric, 7.0, true},
		{"json number identifier", numeric, json.Number("7"), true},
		{"fractional identifier", numeric, 7.5, false},
		{"fractional key compares by value", Data{"id": 7.5}, 7.5, true},
		{"fractional json number", numeric, json.Number("7.5"), false},
		{"subset", rec, map[string]any{"name": "Bruce"}, true},
		{"numeric subset across types", rec, map[string]any{"age": 42.0}, true},
		{"slice subset", rec, map[string]any{"tags": []any{"a", "b"}}, true},
		{"mismatch", rec, map[string]any{"name": "Banner"}, false},
		{"missing field", rec, map[string]any{"alias": nil}, false},
		{"empty subset", rec, map[string]any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Match(tt.data, "id", tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestMatchUnsupportedQuery(t *testing.T) {
	_, err := Match(Data{}, "id", []string{"x"})
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, err.Error(), "[]string")
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		ok    bool
	}{
		{"string", "person-1", "person-1", true},
		{"int", 7, "7", true},
		{"integral float", 7.0, "7", true},
		{"json number", json.Number("7"), "7", true},
		{"json number exponent", json.Number("1e3"), "1000", true},
		{"fractional float", 7.5, "", false},
		{"fractional json number", json.Number("7.5"), "", false},
		{"bool", true, "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Identifier(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyOf(t *testing.T) {
	id, ok, err := KeyOf(Data{"id": int64(7)}, "id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", id)

	for _, d := range []Data{{}, {"id": nil}} {
		_, ok, err := KeyOf(d, "id")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	for _, bad := range []any{1.5, true, []any{"a"}} {
		_, _, err := KeyOf(Data{"id": bad}, "id")
		var ke *KeyError
		require.ErrorAs(t, err, &ke)
		assert.Equal(t, "id", ke.Key)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(int64(1), 1.0))
	assert.True(t, Equal(map[string]any{"a": 1}, map[string]any{"a": int64(1)}))
	assert.False(t, Equal(map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}))
	assert.False(t, Equal([]any{1}, []any{1, 2}))
	assert.False(t, Equal("1", 1))
	assert.True(t, Equal(nil, nil))
}

func TestClone(t *testing.T) {
	orig := Data{"nested": map[string]any{"k": "v"}, "list": []any{map[string]any{"x": 1}}}

	cp := Clone(orig)
	cp["nested"].(map[string]any)["k"] = "changed"
	cp["list"].([]any)[0].(map[string]any)["x"] = 2

	assert.Equal(t, "v", orig["nested"].(map[string]any)["k"])
	assert.Equal(t, 1, orig["list"].([]any)[0].(map[string]any)["x"])
	assert.Nil(t, Clone(nil))
}
