// Package domstorage exposes a host application's typed key/value
// preference namespaces to inspection clients as DOM-storage-style
// string entries.
//
// The wire representation of every value is text, but the stored
// representation keeps its concrete type. Because no schema exists, the
// only way to interpret an incoming text value is to anchor on the type
// of the value already stored under the same key; writes to absent keys
// are rejected rather than guessed at.
package domstorage
