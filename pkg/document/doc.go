// Package document is the text boundary of jsondiagram: it turns editor text
// into an ordered JSON value and back.
//
// # Overview
//
// Go maps do not keep insertion order, yet a diagram must show object members
// in the order they were written. [Parse] therefore decodes into a [Value]
// tree that stores object members as an ordered slice:
//
//	v, err := document.Parse([]byte(`{"b":1,"a":2}`))
//	v.Members[0].Key // "b"
//
// # Validation
//
// On top of the JSON grammar, duplicate keys within one object are rejected
// with a DUPLICATE_KEY error. Errors carry the 1-based line of the problem
// when it can be derived, see [derrors.LineOf].
//
// # Editor
//
// [Editor] keeps the text the user is typing. Only valid text reaches the
// subscriber; invalid text is kept, the error is exposed for display and the
// diagram keeps showing the last accepted value.
//
// # Import and Export
//
// [ImportFile] and [Import] read documents, [ExportFile] writes the current
// value as data.json indented with two spaces. [Watcher] re-imports a file
// whenever it changes on disk.
//
// [derrors.LineOf]: github.com/matzehuels/jsondiagram/pkg/errors.LineOf
package document
