package backing

import "errors"

// Memory is an in-memory Store for tests and scratch buffers. Besides the
// Store contract it counts Load/StoreAt calls and can inject failures, which
// the chunk store and cursor tests use to verify write-avoidance and
// retry-safe flushing.
type Memory struct {
	data      []byte
	chunkSize uint64

	// Call accounting.
	LoadCalls  int
	StoreCalls int

	// Failure injection: when > 0, the next N calls fail.
	FailLoads  int
	FailStores int
}

// ErrInjected is the cause reported by injected Memory failures.
var ErrInjected = errors.New("injected failure")

// NewMemory creates an in-memory store with the given initial content.
func NewMemory(content []byte, chunkSize uint64) *Memory {
	return &Memory{data: append([]byte(nil), content...), chunkSize: chunkSize}
}

// Load returns the bytes at offset, nil past the extent.
func (s *Memory) Load(offset uint64) ([]byte, error) {
	s.LoadCalls++
	if s.FailLoads > 0 {
		s.FailLoads--
		return nil, &LoadError{Offset: offset, Err: ErrInjected}
	}
	if offset >= uint64(len(s.data)) {
		return nil, nil
	}
	end := offset + s.chunkSize
	if end > uint64(len(s.data)) {
		end = uint64(len(s.data))
	}
	return append([]byte(nil), s.data[offset:end]...), nil
}

// StoreAt writes data at offset, extending the buffer if necessary.
func (s *Memory) StoreAt(offset uint64, data []byte) error {
	s.StoreCalls++
	if s.FailStores > 0 {
		s.FailStores--
		return &StoreError{Offset: offset, Err: ErrInjected}
	}
	if need := offset + uint64(len(data)); need > uint64(len(s.data)) {
		grown := make([]byte, need)
		copy(grown, s.data)
		s.data = grown
	}
	copy(s.data[offset:], data)
	return nil
}

// Truncate resizes the buffer.
func (s *Memory) Truncate(size uint64) error {
	if size <= uint64(len(s.data)) {
		s.data = s.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, s.data)
	s.data = grown
	return nil
}

// Size reports the buffer length.
func (s *Memory) Size() (uint64, error) {
	return uint64(len(s.data)), nil
}

// Bytes returns the current content. The returned slice is a copy.
func (s *Memory) Bytes() []byte {
	return append([]byte(nil), s.data...)
}

var _ Store = (*Memory)(nil)
