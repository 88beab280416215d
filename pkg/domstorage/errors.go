package domstorage

import "fmt"

// TypeMismatchError reports a text value that could not be converted into
// the type anchored by a key's existing value, or an anchor type the store
// cannot persist.
type TypeMismatchError struct {
	Key      string
	Value    string
	Expected string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch setting %s to %s (expected %s)", e.Key, e.Value, e.Expected)
}

// UnsupportedError reports an attempt to create a brand-new key. With no
// existing value to anchor on, the text-to-typed conversion is undefined.
type UnsupportedError struct {
	Key string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: cannot add new key %s due to lack of type inference", e.Key)
}
