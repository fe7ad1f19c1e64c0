// Package canonical produces deterministic JSON bytes for plain data.
//
// Output follows RFC 8785 where it matters for determinism:
//   - object keys sorted by UTF-16 code units (not UTF-8 bytes)
//   - no HTML escaping, U+2028/U+2029 written literally
//   - strings NFC normalized
//   - numbers in shortest round-trip form
//
// Unlike RFC 8785, non-finite floats are written as null rather than
// rejected; records carry NaN as data and the persisted form must not fail
// on it.
//
// The SQLite backend stores record data with Marshal and the harness uses it
// for golden trace files, so byte-identical input always yields
// byte-identical output.
package canonical
