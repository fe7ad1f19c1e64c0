package attr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string
}

func newAddress(v any) (*address, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("address: expected object, got %T", v)
	}
	city, _ := m["city"].(string)
	return &address{City: city}, nil
}

var addressType = Composite("Address", newAddress)

func TestNewRequiresType(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "type is required")
}

func TestNewRejectsCompositeWithoutConstructor(t *testing.T) {
	_, err := New(Options{Type: Composite[*address]("Address", nil)})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), `"Address"`)
}

func TestAttrPanicsOnUnresolvedType(t *testing.T) {
	assert.PanicsWithError(t, "attr: type is required", func() {
		Attr(Type{})
	})
}

func TestAttrOptions(t *testing.T) {
	d := Attr(String, Default("Male"))
	assert.Equal(t, String, d.Type())
	assert.False(t, d.IsRepeated())
	assert.Equal(t, "Male", d.DefaultValue())

	r := Attr(String, Repeated())
	assert.True(t, r.IsRepeated())
	assert.Nil(t, r.DefaultValue())
}

func TestMakeDefaultUsesDefault(t *testing.T) {
	tests := []struct {
		name     string
		desc     *Descriptor
		expected any
	}{
		{"string", Attr(String, Default("Male")), "Male"},
		{"int", Attr(Int, Default(7)), int64(7)},
		{"float from string", Attr(Float, Default("2.5")), 2.5},
		{"bool", Attr(Bool, Default(true)), true},
		{"no default", Attr(String), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.desc.MakeDefault()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMakeValueExplicitNilSkipsDefault(t *testing.T) {
	d := Attr(String, Default("Male"))

	got, err := d.MakeValue(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDefaultIsNotMutated(t *testing.T) {
	d := Attr(Int, Default("7"))

	got, err := d.MakeDefault()
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
	assert.Equal(t, "7", d.DefaultValue())
}

func TestRepeatedEmptyForms(t *testing.T) {
	d := Attr(String, Repeated(), Default([]any{"ignored"}))

	fromDefault, err := d.MakeDefault()
	require.NoError(t, err)
	assert.Equal(t, []any{}, fromDefault)

	for _, input := range []any{nil, []any{}, []string{}} {
		got, err := d.MakeValue(input)
		require.NoError(t, err)
		assert.Equal(t, []any{}, got, "input %#v", input)
	}
}

func TestRepeatedCoercesEachElement(t *testing.T) {
	tests := []struct {
		name     string
		desc     *Descriptor
		input    any
		expected []any
	}{
		{"strings", Attr(String, Repeated()), []any{"Hulk", "World-Breaker"}, []any{"Hulk", "World-Breaker"}},
		{"typed slice", Attr(String, Repeated()), []string{"a", "b"}, []any{"a", "b"}},
		{"ints", Attr(Int, Repeated()), []any{"1", 2, 3.9}, []any{int64(1), int64(2), int64(3)}},
		{"array", Attr(Bool, Repeated()), [2]any{"", "x"}, []any{false, true}},
		{"nil elements kept", Attr(String, Repeated()), []any{nil, 1}, []any{nil, "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.desc.MakeValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRepeatedRejectsScalar(t *testing.T) {
	d := Attr(String, Repeated())

	_, err := d.MakeValue("Hulk")
	require.Error(t, err)

	var seqErr *SequenceError
	require.True(t, errors.As(err, &seqErr))
	assert.Equal(t, "Hulk", seqErr.Input)
}

func TestMakeValueIdentity(t *testing.T) {
	addr := &address{City: "Dayton"}
	d := Attr(addressType)

	got, err := d.MakeValue(addr)
	require.NoError(t, err)
	assert.Same(t, addr, got)

	obj := map[string]any{"a": 1}
	got, err = Attr(Object).MakeValue(obj)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%p", obj), fmt.Sprintf("%p", got))
}

func TestMakeValueComposite(t *testing.T) {
	d := Attr(addressType)

	got, err := d.MakeValue(map[string]any{"city": "Dayton"})
	require.NoError(t, err)
	assert.Equal(t, &address{City: "Dayton"}, got)

	_, err = d.MakeValue(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "construct Address")
	assert.Contains(t, err.Error(), "expected object")
}

func TestCompositeFunc(t *testing.T) {
	upper := CompositeFunc("Upper",
		func(v any) bool { s, ok := v.(string); return ok && s == "OK" },
		func(v any) (any, error) { return "OK", nil },
	)
	d := Attr(upper)

	got, err := d.MakeValue("anything")
	require.NoError(t, err)
	assert.Equal(t, "OK", got)
	assert.Equal(t, KindComposite, d.Type().Kind())
	assert.Equal(t, "Upper", d.Type().Name())
}
