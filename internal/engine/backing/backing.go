// Package backing provides the positional byte store underneath the chunk
// cache. Implementations are pluggable: files in production, memory for
// tests, potentially remote stores later.
//
// All IO is positional (offset-explicit); there is no shared current-offset
// state, so independent reads and writes at different offsets never
// interfere. All failures surface as typed errors carrying the failing
// offset; nothing in this package panics on IO failure.
package backing

import "fmt"

// Store is a positional (random-access) byte store.
type Store interface {
	// Load returns up to chunkSize bytes persisted at offset. It returns
	// (nil, nil) when offset lies at or beyond the persisted extent.
	// The final slice of the extent may be shorter than chunkSize; Load
	// never zero-pads and never returns a partial read mid-extent.
	Load(offset uint64) ([]byte, error)

	// StoreAt persists exactly len(data) bytes at offset, extending the
	// store if necessary.
	StoreAt(offset uint64, data []byte) error

	// Truncate shrinks (or extends with zeros) the persisted extent.
	Truncate(size uint64) error

	// Size reports the current persisted extent in bytes.
	Size() (uint64, error)
}

// LoadError reports a failed read at a given offset.
type LoadError struct {
	Offset uint64
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load at offset %d: %v", e.Offset, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// StoreError reports a failed write at a given offset.
type StoreError struct {
	Offset uint64
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store at offset %d: %v", e.Offset, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
