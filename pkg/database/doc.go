// Package database exposes a host application's SQLite store files to
// inspection clients: enumerating stores (with shadow artifacts such as
// journals filtered out), listing tables, and executing free-form SQL
// with a uniform rows-or-scalar result shape.
//
// Every operation is a self-contained open/operate/close cycle against
// one store file. The package holds no state between calls and adds no
// locking of its own; concurrent access is arbitrated by SQLite.
package database
