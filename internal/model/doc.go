// Package model provides schema-typed records.
//
// A record Type pairs a name with an attr.Schema, an optional store.Store
// and a table of explicit accessors. Records are built from raw input with
// New: every schema field is coerced through its descriptor, absent fields
// take the descriptor default, and the results live in the record's private
// backing store.
//
//	var Person = model.MustDefine("Person", attr.MustSchema(
//	    attr.F("firstName", attr.Attr(attr.String)),
//	    attr.F("sex", attr.Attr(attr.String, attr.Default("Male"))),
//	    attr.F("aliases", attr.Attr(attr.String, attr.Repeated())),
//	), model.WithStore(mem))
//
//	bruce, err := model.New(Person, map[string]any{"firstName": "Bruce"})
//	bruce.Get("sex") // "Male"
//
// # Accessors
//
// Get and Set consult the type's accessor table first, then the backing
// store for schema fields, then the record's own instance properties.
// Accessors are shared by every record of the type and the first definition
// of a name wins.
//
// # Bulk Updates
//
// SetProperties writes values as given, without coercion; Save uses it to
// apply whatever the store returns. Assign is the coercing variant.
//
// # Persistence
//
// Save, Destroy, Find and FindAll block on the type's store; the Async
// variants return a future.Future. A record does not track whether it has
// been destroyed.
package model
