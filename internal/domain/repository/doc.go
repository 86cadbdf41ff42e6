// Package repository defines the domain records and the persistence-port
// interfaces the rest of the system consumes.
//
// Records are immutable values: mutation means building a new value and
// persisting it, never editing a field in place. Every interface method takes
// a context and returns an explicit error; lookups that find nothing return
// ErrNotFound, never a nil value with a nil error.
//
// Implementations live under internal/store. Any method that issues more than
// one statement must execute them inside a single transaction.
package repository
