// Package chunk caches fixed-size slices of a backing store, keyed by chunk
// index. Chunks are loaded lazily on first access, tracked for unflushed
// mutations, and written back on demand.
//
// The index-keyed map doubles as the arena: map key uniqueness guarantees at
// most one Chunk per index, so there is never an aliased copy of a chunk's
// bytes. The store is single-threaded by design; callers needing concurrent
// views must serialize access themselves.
package chunk

import (
	"container/list"
	"fmt"

	"github.com/dshills/hugefile/internal/engine/backing"
	"github.com/dshills/hugefile/internal/log"
)

var logger = log.GetLogger("chunk")

// Store caches chunks of a backing store.
type Store struct {
	backing   backing.Store
	chunkSize uint64

	chunks map[uint64]*Chunk

	// LRU bookkeeping for bounded residency. lru holds chunk indices,
	// most recently used at the front. Zero maxResident disables the bound.
	maxResident int
	lru         *list.List
	lruElem     map[uint64]*list.Element
}

// Option configures a Store.
type Option func(*Store)

// WithMaxResident bounds the number of chunks kept in memory. When the bound
// is exceeded, least-recently-used chunks are evicted; dirty ones are
// flushed first so no mutation is ever silently discarded.
func WithMaxResident(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxResident = n
		}
	}
}

// NewStore creates a chunk store over the given backing store.
// chunkSize must be > 0.
func NewStore(b backing.Store, chunkSize uint64, opts ...Option) (*Store, error) {
	if chunkSize == 0 {
		return nil, fmt.Errorf("chunk size must be > 0")
	}
	s := &Store{
		backing:   b,
		chunkSize: chunkSize,
		chunks:    make(map[uint64]*Chunk),
		lru:       list.New(),
		lruElem:   make(map[uint64]*list.Element),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ChunkSize returns the store's fixed chunk size in bytes.
func (s *Store) ChunkSize() uint64 { return s.chunkSize }

// Backing returns the underlying backing store.
func (s *Store) Backing() backing.Store { return s.backing }

// Get returns the chunk at index, loading it from the backing store on first
// access. A load beyond the persisted extent yields an empty chunk, not an
// error. Repeated calls with no intervening mutation issue no further IO.
//
// The returned pointer is an exclusive accessor into the store's arena;
// callers must release it (stop using it) before the next store operation
// that may evict.
func (s *Store) Get(index uint64) (*Chunk, error) {
	if c, ok := s.chunks[index]; ok {
		s.touch(index)
		return c, nil
	}

	offset := index * s.chunkSize
	data, err := s.backing.Load(offset)
	if err != nil {
		// An IO failure is never converted into an empty chunk.
		return nil, fmt.Errorf("chunk %d: %w", index, err)
	}

	c := &Chunk{}
	if data == nil {
		c.empty = true
	} else {
		c.data = data
	}
	s.insert(index, c)
	if err := s.enforceBound(); err != nil {
		return nil, err
	}
	return c, nil
}

// Flush writes the chunk at index back through the backing store if it is
// dirty. On failure the dirty flag stays set, so a later Flush retries.
func (s *Store) Flush(index uint64) error {
	c, ok := s.chunks[index]
	if !ok || !c.dirty {
		return nil
	}
	if err := s.backing.StoreAt(index*s.chunkSize, c.data); err != nil {
		return fmt.Errorf("chunk %d: %w", index, err)
	}
	c.dirty = false
	return nil
}

// FlushAll flushes every dirty chunk. Clean chunks are never written. The
// first failure is returned with its chunk index; chunks already flushed
// stay clean, the failing one stays dirty.
func (s *Store) FlushAll() error {
	for index, c := range s.chunks {
		if !c.dirty {
			continue
		}
		if err := s.Flush(index); err != nil {
			return err
		}
	}
	return nil
}

// Evict removes the chunk at index from the cache. A dirty chunk is flushed
// first; if the flush fails the chunk stays resident and dirty.
func (s *Store) Evict(index uint64) error {
	c, ok := s.chunks[index]
	if !ok {
		return nil
	}
	if c.dirty {
		if err := s.Flush(index); err != nil {
			return err
		}
	}
	s.remove(index)
	return nil
}

// Drop discards the chunk at index without flushing. It is the cache
// invalidation used when the caller knows the cached bytes are stale
// (external file change) or logically beyond the new extent after a
// shrinking rewrite.
func (s *Store) Drop(index uint64) {
	s.remove(index)
}

// DropFrom discards every cached chunk with index >= start without
// flushing. Used after a suffix rewrite shrinks the extent, when cached
// chunks past the new end are stale.
func (s *Store) DropFrom(start uint64) {
	for index := range s.chunks {
		if index >= start {
			s.remove(index)
		}
	}
}

// DropAll discards every cached chunk without flushing.
func (s *Store) DropAll() {
	s.chunks = make(map[uint64]*Chunk)
	s.lru.Init()
	s.lruElem = make(map[uint64]*list.Element)
}

// Resident returns the number of chunks currently in memory.
func (s *Store) Resident() int { return len(s.chunks) }

// DirtyCount returns the number of chunks with unflushed mutations.
func (s *Store) DirtyCount() int {
	n := 0
	for _, c := range s.chunks {
		if c.dirty {
			n++
		}
	}
	return n
}

func (s *Store) insert(index uint64, c *Chunk) {
	s.chunks[index] = c
	s.lruElem[index] = s.lru.PushFront(index)
}

func (s *Store) remove(index uint64) {
	delete(s.chunks, index)
	if e, ok := s.lruElem[index]; ok {
		s.lru.Remove(e)
		delete(s.lruElem, index)
	}
}

func (s *Store) touch(index uint64) {
	if e, ok := s.lruElem[index]; ok {
		s.lru.MoveToFront(e)
	}
}

// enforceBound evicts least-recently-used chunks until the residency bound
// holds. The most recently inserted chunk is never evicted.
func (s *Store) enforceBound() error {
	if s.maxResident == 0 {
		return nil
	}
	for len(s.chunks) > s.maxResident {
		e := s.lru.Back()
		if e == nil || e == s.lru.Front() {
			return nil
		}
		index := e.Value.(uint64)
		logger.Debugf("evicting chunk %d under memory pressure", index)
		if err := s.Evict(index); err != nil {
			return err
		}
	}
	return nil
}
