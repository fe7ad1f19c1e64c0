// Package testutil holds record fixtures and store fakes shared by tests.
package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/schemata/internal/attr"
	"github.com/roach88/schemata/internal/model"
)

// PersonSchema is the schema of the Person fixture.
func PersonSchema() *attr.Schema {
	return attr.MustSchema(
		attr.F("id", attr.Attr(attr.Int)),
		attr.F("firstName", attr.Attr(attr.String)),
		attr.F("lastName", attr.Attr(attr.String)),
		attr.F("age", attr.Attr(attr.Int)),
		attr.F("dob", attr.Attr(attr.Time)),
		attr.F("sex", attr.Attr(attr.String, attr.Default("Male"))),
		attr.F("location", attr.Attr(attr.String)),
		attr.F("alive", attr.Attr(attr.Bool)),
		attr.F("aliases", attr.Attr(attr.String, attr.Repeated())),
	)
}

// ASL is the "age/sex/location" accessor of the Person fixture. Setting it
// splits the string back into the three fields.
var ASL = model.Accessor{
	Get: func(r *model.Record) any {
		return fmt.Sprintf("%v/%v/%v", r.Field("age"), r.Field("sex"), r.Field("location"))
	},
	Set: func(r *model.Record, v any) error {
		parts := strings.SplitN(attr.ToString(v), "/", 3)
		if len(parts) != 3 {
			return fmt.Errorf("asl: want age/sex/location, got %q", v)
		}
		r.SetField("age", attr.ToInt(parts[0]))
		r.SetField("sex", parts[1])
		r.SetField("location", parts[2])
		return nil
	},
}

// Person defines a fresh Person type with the ASL accessor.
func Person(opts ...model.TypeOption) *model.Type {
	opts = append([]model.TypeOption{model.WithAccessor("asl", ASL)}, opts...)
	return model.MustDefine("Person", PersonSchema(), opts...)
}

// BruceBanner returns the canonical Person input datum.
func BruceBanner() map[string]any {
	return map[string]any{
		"firstName": "Bruce",
		"lastName":  "Banner",
		"age":       33,
		"dob":       "1969-12-18T08:00:00.000Z",
		"location":  "New Mexico",
		"alive":     true,
		"aliases":   []any{"Hulk", "World-Breaker"},
	}
}

// Week defines a type with a single repeated time field.
func Week(opts ...model.TypeOption) *model.Type {
	return model.MustDefine("Week", attr.MustSchema(
		attr.F("days", attr.Attr(attr.Time, attr.Repeated())),
	), opts...)
}
