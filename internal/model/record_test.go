package model_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schemata/internal/attr"
	"github.com/roach88/schemata/internal/model"
	"github.com/roach88/schemata/internal/store"
	"github.com/roach88/schemata/internal/testutil"
)

func TestNewAbstractType(t *testing.T) {
	for name, typ := range map[string]*model.Type{"nil": nil, "zero": {}} {
		t.Run(name, func(t *testing.T) {
			_, err := model.New(typ, nil)
			require.Error(t, err)
			assert.True(t, store.IsAbstractInstantiation(err))

			var aie *model.AbstractInstantiationError
			assert.ErrorAs(t, err, &aie)
		})
	}
}

func TestNewRequiresSchema(t *testing.T) {
	simple := model.MustDefine("Simple", nil)

	_, err := model.New(simple, nil)
	require.Error(t, err)
	assert.True(t, model.IsSchemaRequired(err))
	assert.EqualError(t, err, "model: Simple has no schema")
}

func TestDefineRequiresName(t *testing.T) {
	_, err := model.Define("", testutil.PersonSchema())
	assert.True(t, attr.IsConfigurationError(err))
}

func TestNewWithoutData(t *testing.T) {
	person, err := model.New(testutil.Person(), nil)
	require.NoError(t, err)

	for _, name := range []string{"id", "firstName", "lastName", "age", "dob", "location", "alive"} {
		v, ok := person.Lookup(name)
		assert.True(t, ok, name)
		assert.Nil(t, v, name)
	}
	assert.Equal(t, "Male", person.Get("sex"))
	assert.Equal(t, []any{}, person.Get("aliases"))
}

func TestNewWithDatum(t *testing.T) {
	person, err := model.New(testutil.Person(), testutil.BruceBanner())
	require.NoError(t, err)

	assert.Nil(t, person.Get("id"))
	assert.Equal(t, "Bruce", person.Get("firstName"))
	assert.Equal(t, int64(33), person.Get("age"))
	assert.Equal(t, time.Date(1969, 12, 18, 8, 0, 0, 0, time.UTC), person.Get("dob"))
	assert.Equal(t, true, person.Get("alive"))
	assert.Equal(t, []any{"Hulk", "World-Breaker"}, person.Get("aliases"))

	name, ok := model.Value[string](person, "firstName")
	require.True(t, ok)
	assert.Equal(t, "Bruce", name)

	_, ok = model.Value[string](person, "age")
	assert.False(t, ok)
}

func TestNewExplicitNilSkipsDefault(t *testing.T) {
	person, err := model.New(testutil.Person(), map[string]any{"sex": nil})
	require.NoError(t, err)
	assert.Nil(t, person.Get("sex"))
}

func TestNewIgnoresUnknownKeys(t *testing.T) {
	person, err := model.New(testutil.Person(), map[string]any{"nickname": "Hulk"})
	require.NoError(t, err)

	_, ok := person.Lookup("nickname")
	assert.False(t, ok)
	assert.NotContains(t, person.ToJSON(), "nickname")
}

func TestNewWrapsFieldErrors(t *testing.T) {
	_, err := model.New(testutil.Person(), map[string]any{"aliases": "Hulk"})
	require.Error(t, err)

	var fe *model.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "aliases", fe.Field)

	var seqErr *attr.SequenceError
	assert.ErrorAs(t, err, &seqErr)
	assert.Contains(t, err.Error(), "Person.aliases")
}

func TestPermissiveCoercionIsData(t *testing.T) {
	typ := model.MustDefine("Reading", attr.MustSchema(
		attr.F("value", attr.Attr(attr.Float)),
		attr.F("count", attr.Attr(attr.Int)),
	))

	r, err := model.New(typ, map[string]any{"value": "one", "count": "two"})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(r.Get("value").(float64)))
	assert.IsType(t, attr.Invalid{}, r.Get("count"))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"value":null,"count":null}`, string(data))
}

func TestAccessors(t *testing.T) {
	person, err := model.New(testutil.Person(), testutil.BruceBanner())
	require.NoError(t, err)

	assert.Equal(t, "33/Male/New Mexico", person.Get("asl"))

	require.NoError(t, person.Set("asl", "40/Male/S.H.I.E.L.D. Helicarrier"))
	assert.Equal(t, int64(40), person.Get("age"))
	assert.Equal(t, "Male", person.Get("sex"))
	assert.Equal(t, "S.H.I.E.L.D. Helicarrier", person.Get("location"))

	assert.NotContains(t, person.ToJSON(), "asl")
}

func TestAccessorFirstDefinitionWins(t *testing.T) {
	first := model.Accessor{Get: func(*model.Record) any { return "first" }}
	second := model.Accessor{Get: func(*model.Record) any { return "second" }}
	typ := model.MustDefine("T", attr.MustSchema(attr.F("a", attr.Attr(attr.String))),
		model.WithAccessor("label", first),
		model.WithAccessor("label", second),
	)

	r, err := typ.New(nil)
	require.NoError(t, err)
	assert.Equal(t, "first", r.Get("label"))
	assert.True(t, typ.HasAccessor("label"))
}

func TestAccessorShadowsSchemaField(t *testing.T) {
	shout := model.Accessor{
		Get: func(r *model.Record) any {
			return fmt.Sprintf("%v!", r.Field("name"))
		},
	}
	typ := model.MustDefine("Loud", attr.MustSchema(attr.F("name", attr.Attr(attr.String))),
		model.WithAccessor("name", shout))

	r, err := typ.New(map[string]any{"name": "hey"})
	require.NoError(t, err)

	assert.Equal(t, "hey", r.Field("name"))
	assert.Equal(t, "hey!", r.Get("name"))
	assert.Equal(t, map[string]any{"name": "hey!"}, r.ToJSON())

	err = r.Set("name", "x")
	assert.ErrorIs(t, err, model.ErrReadOnly)
	assert.Equal(t, "hey", r.Field("name"))
}

func TestAccessorRequiresGetter(t *testing.T) {
	_, err := model.Define("T", nil, model.WithAccessor("x", model.Accessor{}))
	assert.True(t, attr.IsConfigurationError(err))
}

func TestSetIsRaw(t *testing.T) {
	person, err := model.New(testutil.Person(), nil)
	require.NoError(t, err)

	require.NoError(t, person.Set("age", "forty"))
	assert.Equal(t, "forty", person.Get("age"))

	require.NoError(t, person.Set("mood", "angry"))
	v, ok := person.Lookup("mood")
	assert.True(t, ok)
	assert.Equal(t, "angry", v)
	assert.NotContains(t, person.ToJSON(), "mood")
}

func TestSetPropertiesBypassesCoercion(t *testing.T) {
	person, err := model.New(testutil.Person(), nil)
	require.NoError(t, err)

	person.SetProperties(map[string]any{"age": "40", "alive": "false", "team": "Avengers"})

	assert.Equal(t, "40", person.Get("age"))
	assert.Equal(t, "false", person.Get("alive"))
	assert.Equal(t, "Avengers", person.Get("team"))
}

func TestAssignCoerces(t *testing.T) {
	person, err := model.New(testutil.Person(), nil)
	require.NoError(t, err)

	require.NoError(t, person.Assign(map[string]any{"age": "40", "alive": "false", "team": "Avengers"}))

	assert.Equal(t, int64(40), person.Get("age"))
	assert.Equal(t, true, person.Get("alive"))
	assert.Equal(t, "Avengers", person.Get("team"))
}

func TestAssignIsAllOrNothing(t *testing.T) {
	person, err := model.New(testutil.Person(), nil)
	require.NoError(t, err)

	err = person.Assign(map[string]any{"age": "40", "aliases": "Hulk"})
	require.Error(t, err)

	var fe *model.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "aliases", fe.Field)
	assert.Nil(t, person.Get("age"))
}

func TestToJSONIsTotal(t *testing.T) {
	person, err := model.New(testutil.Person(), testutil.BruceBanner())
	require.NoError(t, err)

	expected := map[string]any{
		"id":        nil,
		"firstName": "Bruce",
		"lastName":  "Banner",
		"age":       int64(33),
		"dob":       "1969-12-18T08:00:00.000Z",
		"sex":       "Male",
		"location":  "New Mexico",
		"alive":     true,
		"aliases":   []any{"Hulk", "World-Breaker"},
	}
	assert.Equal(t, expected, person.ToJSON())
}

func TestToJSONRepeatedTimes(t *testing.T) {
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	days := make([]any, 7)
	for i := range days {
		days[i] = epoch
	}

	week, err := model.New(testutil.Week(), map[string]any{"days": days})
	require.NoError(t, err)

	projected := week.ToJSON()["days"].([]any)
	require.Len(t, projected, 7)
	for _, d := range projected {
		assert.Equal(t, "1970-01-01T00:00:00.000Z", d)
	}
}

func TestAliasesProjection(t *testing.T) {
	typ := model.MustDefine("Hero", attr.MustSchema(
		attr.F("aliases", attr.Attr(attr.String, attr.Repeated())),
	))

	r, err := typ.New(map[string]any{"aliases": []string{"Hulk", "World-Breaker"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"Hulk", "World-Breaker"}, r.ToJSON()["aliases"])
}

func TestMarshalJSONSchemaOrder(t *testing.T) {
	person, err := model.New(testutil.Person(), testutil.BruceBanner())
	require.NoError(t, err)

	data, err := json.Marshal(person)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":null,"firstName":"Bruce","lastName":"Banner","age":33,"dob":"1969-12-18T08:00:00.000Z",`+
			`"sex":"Male","location":"New Mexico","alive":true,"aliases":["Hulk","World-Breaker"]}`,
		string(data))
	assert.Equal(t, "Person"+string(data), person.String())
}

func TestRoundTrip(t *testing.T) {
	typ := testutil.Person()
	person, err := model.New(typ, testutil.BruceBanner())
	require.NoError(t, err)

	again, err := model.New(typ, person.ToJSON())
	require.NoError(t, err)

	for _, name := range typ.Schema().Names() {
		assert.Equal(t, person.Get(name), again.Get(name), name)
	}
}

func TestNestedRecords(t *testing.T) {
	address := model.MustDefine("Address", attr.MustSchema(
		attr.F("city", attr.Attr(attr.String)),
		attr.F("zip", attr.Attr(attr.String)),
	))
	other := model.MustDefine("Other", attr.MustSchema(attr.F("x", attr.Attr(attr.Int))))
	hero := model.MustDefine("Hero", attr.MustSchema(
		attr.F("name", attr.Attr(attr.String)),
		attr.F("home", attr.Attr(model.Nested(address))),
		attr.F("bases", attr.Attr(model.Nested(address), attr.Repeated())),
	))

	r, err := hero.New(map[string]any{
		"name":  "Bruce",
		"home":  map[string]any{"city": "Dayton", "zip": 45402},
		"bases": []any{map[string]any{"city": "Culver"}},
	})
	require.NoError(t, err)

	home, ok := model.Value[*model.Record](r, "home")
	require.True(t, ok)
	assert.Equal(t, address, home.Type())
	assert.Equal(t, "45402", home.Get("zip"))

	assert.Equal(t, map[string]any{
		"name":  "Bruce",
		"home":  map[string]any{"city": "Dayton", "zip": "45402"},
		"bases": []any{map[string]any{"city": "Culver", "zip": nil}},
	}, r.ToJSON())

	same, err := hero.New(map[string]any{"home": home})
	require.NoError(t, err)
	assert.Same(t, home, same.Get("home"))

	wrong, err := other.New(nil)
	require.NoError(t, err)
	_, err = hero.New(map[string]any{"home": wrong})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected Address record, got Other")

	_, err = hero.New(map[string]any{"home": "Dayton"})
	assert.Error(t, err)
}

func TestNestedNilRecordIsAbsent(t *testing.T) {
	address := model.MustDefine("Address", attr.MustSchema(attr.F("city", attr.Attr(attr.String))))
	hero := model.MustDefine("Hero", attr.MustSchema(
		attr.F("home", attr.Attr(model.Nested(address))),
		attr.F("bases", attr.Attr(model.Nested(address), attr.Repeated())),
	))

	var none *model.Record
	r, err := hero.New(map[string]any{"home": none, "bases": []any{none}})
	require.NoError(t, err)
	assert.Nil(t, r.Get("home"))
	assert.Equal(t, map[string]any{"home": nil, "bases": []any{nil}}, r.ToJSON())

	r.SetProperties(map[string]any{"home": none})
	assert.Nil(t, r.ToJSON()["home"])
	assert.Nil(t, attr.Project(none))
}

func TestRegistry(t *testing.T) {
	reg := model.NewRegistry()
	person := testutil.Person()
	week := testutil.Week()

	require.NoError(t, reg.Register(person))
	require.NoError(t, reg.Register(week))

	got, ok := reg.Lookup("Person")
	require.True(t, ok)
	assert.Same(t, person, got)
	assert.True(t, reg.Has("Week"))
	assert.False(t, reg.Has("Address"))
	assert.Equal(t, []*model.Type{person, week}, reg.Types())

	err := reg.Register(testutil.Person())
	assert.EqualError(t, err, "model: Person already registered")

	err = reg.Register(&model.Type{})
	assert.True(t, store.IsAbstractInstantiation(err))
}

func TestFieldErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	fe := &model.FieldError{Type: "T", Field: "f", Err: inner}
	assert.ErrorIs(t, fe, inner)
	assert.Equal(t, "model: T.f: inner", fe.Error())
}
