package database

import "fmt"

// StoreAccessError reports a store that could not be located or opened
// for read/write. It is never retried internally.
type StoreAccessError struct {
	Store string
	Err   error
}

func (e *StoreAccessError) Error() string {
	return fmt.Sprintf("cannot open store %q: %v", e.Store, e.Err)
}

func (e *StoreAccessError) Unwrap() error { return e.Err }

// QueryError reports a query the underlying engine rejected. The engine's
// error is carried verbatim; the executor performs no validation of its own.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
