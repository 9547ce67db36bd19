package backing

import (
	"errors"
	"io"
	"os"
)

// File is a file-backed Store using positional IO (ReadAt/WriteAt), so the
// file's seek offset is never implicit shared state.
type File struct {
	f         *os.File
	chunkSize uint64
}

// NewFile creates a file-backed store reading and writing chunkSize-byte
// slices. chunkSize must be > 0.
func NewFile(f *os.File, chunkSize uint64) (*File, error) {
	if chunkSize == 0 {
		return nil, errors.New("chunk size must be > 0")
	}
	return &File{f: f, chunkSize: chunkSize}, nil
}

// OpenFile opens (creating if absent) path for read/write access.
func OpenFile(path string, chunkSize uint64) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	return NewFile(f, chunkSize)
}

// Load returns the bytes persisted at offset, nil past the extent.
func (s *File) Load(offset uint64) ([]byte, error) {
	buf := make([]byte, s.chunkSize)
	n, err := s.f.ReadAt(buf, int64(offset))
	if n > 0 {
		// A short final read is reported alongside io.EOF.
		return buf[:n], nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, nil
	}
	return nil, &LoadError{Offset: offset, Err: err}
}

// StoreAt persists data at offset, extending the file if necessary.
func (s *File) StoreAt(offset uint64, data []byte) error {
	if _, err := s.f.WriteAt(data, int64(offset)); err != nil {
		return &StoreError{Offset: offset, Err: err}
	}
	return nil
}

// Truncate resizes the file.
func (s *File) Truncate(size uint64) error {
	if err := s.f.Truncate(int64(size)); err != nil {
		return &StoreError{Offset: size, Err: err}
	}
	return nil
}

// Size reports the file's current length.
func (s *File) Size() (uint64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, &LoadError{Offset: 0, Err: err}
	}
	return uint64(info.Size()), nil
}

// Sync flushes file contents to stable storage.
func (s *File) Sync() error {
	return s.f.Sync()
}

// Close closes the underlying file.
func (s *File) Close() error {
	return s.f.Close()
}

var _ Store = (*File)(nil)
