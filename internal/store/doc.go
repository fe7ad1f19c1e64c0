// Package store defines the persistence boundary for records.
//
// A Store saves, destroys and finds plain record data. It never sees record
// values directly: a Codec converts a record into Data on the way in
// (Serialize, by default the record's JSON projection) and shapes backend
// Data for record reconstruction on the way out (Deserialize, by default the
// identity).
//
// # Implementing a Store
//
// Concrete stores embed Base and override the operations they support.
// Every operation left to Base fails with a *NotImplementedError naming it:
//
//	type Archive struct {
//	    store.Base
//	}
//
//	func (a *Archive) FindAll(ctx context.Context, q any) ([]store.Data, error) { ... }
//
// A bare Base is not a store; Concrete rejects it with an
// *AbstractInstantiationError.
//
// # Queries
//
// The bundled backends understand three query forms, checked with Match:
//   - nil matches every record
//   - a string or integer is an identifier compared with the key field
//   - a map[string]any matches records holding every listed field value
//
// This is a lookup contract, not a query language.
package store
