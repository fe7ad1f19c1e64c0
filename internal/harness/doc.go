// Package harness runs record lifecycle scenarios written in YAML.
//
// A scenario names the CUE spec files declaring its models, a backend
// ("memory" or "sqlite") and a list of steps. Each step builds, updates,
// saves, finds or destroys records and may check the outcome:
//
//	name: person_lifecycle
//	description: Person is built, saved, found and destroyed
//	specs: [person.cue]
//	steps:
//	  - op: new
//	    model: Person
//	    as: bruce
//	    data: {firstName: Bruce}
//	  - op: save
//	    ref: bruce
//	    expect: {id: person-1}
//	  - op: find
//	    model: Person
//	    query: person-missing
//	    expect_error: not_found
//
// Every scenario runs against fresh stores. Identifiers come from one
// sequence per model ("person-1", "person-2", ...), so runs are
// deterministic and the trace can be compared against a golden file with
// RunWithGolden.
package harness
