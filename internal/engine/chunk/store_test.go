package chunk

import (
	"errors"
	"testing"

	"github.com/dshills/hugefile/internal/engine/backing"
)

func newStore(t *testing.T, content []byte, chunkSize uint64, opts ...Option) (*Store, *backing.Memory) {
	t.Helper()

	mem := backing.NewMemory(content, chunkSize)
	s, err := NewStore(mem, chunkSize, opts...)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s, mem
}

func TestGetLoadsOnFirstAccess(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789"), 4)

	c, err := s.Get(0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(c.Data()) != "0123" {
		t.Errorf("expected %q, got %q", "0123", c.Data())
	}
	if c.Dirty() {
		t.Error("freshly loaded chunk should not be dirty")
	}
	if mem.LoadCalls != 1 {
		t.Errorf("expected 1 load call, got %d", mem.LoadCalls)
	}
}

func TestGetIsIdempotent(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789"), 4)

	first, err := s.Get(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	second, err := s.Get(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if first != second {
		t.Error("repeated get should return the same chunk")
	}
	if mem.LoadCalls != 1 {
		t.Errorf("expected a single load call, got %d", mem.LoadCalls)
	}
}

func TestGetBeyondExtentIsEmpty(t *testing.T) {
	s, _ := newStore(t, nil, 8)

	c, err := s.Get(2)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !c.Empty() {
		t.Error("chunk beyond extent should be empty")
	}
	if c.Len() != 0 {
		t.Errorf("empty chunk should hold no bytes, got %d", c.Len())
	}
}

func TestGetPropagatesLoadError(t *testing.T) {
	s, mem := newStore(t, []byte("0123"), 4)
	mem.FailLoads = 1

	_, err := s.Get(0)
	var le *backing.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}

	// The failure must not be cached as an empty chunk.
	c, err := s.Get(0)
	if err != nil {
		t.Fatalf("get after failure: %v", err)
	}
	if c.Empty() {
		t.Error("IO failure was converted into an empty chunk")
	}
	if string(c.Data()) != "0123" {
		t.Errorf("expected %q, got %q", "0123", c.Data())
	}
}

func TestFlushAllNoMutationWritesNothing(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789"), 4)

	for i := uint64(0); i < 3; i++ {
		if _, err := s.Get(i); err != nil {
			t.Fatalf("get failed: %v", err)
		}
	}
	if err := s.FlushAll(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if mem.StoreCalls != 0 {
		t.Errorf("expected zero store calls, got %d", mem.StoreCalls)
	}
}

func TestFlushAllWritesEachDirtyChunkOnce(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789"), 4)

	c, err := s.Get(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	c.SetData([]byte("abcd"))
	if !c.Dirty() {
		t.Fatal("SetData should mark the chunk dirty")
	}

	if err := s.FlushAll(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if mem.StoreCalls != 1 {
		t.Errorf("expected one store call, got %d", mem.StoreCalls)
	}
	if c.Dirty() {
		t.Error("flush should clear the dirty flag")
	}
	if string(mem.Bytes()[4:8]) != "abcd" {
		t.Errorf("backing store not updated: %q", mem.Bytes())
	}

	// A second flush with no further mutation is a no-op.
	if err := s.FlushAll(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if mem.StoreCalls != 1 {
		t.Errorf("expected no additional store calls, got %d", mem.StoreCalls)
	}
}

func TestFlushFailureRetainsDirty(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789"), 4)

	c, err := s.Get(0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	c.SetData([]byte("wxyz"))

	mem.FailStores = 1
	err = s.Flush(0)
	var se *backing.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if !c.Dirty() {
		t.Error("failed flush must leave the chunk dirty")
	}

	// Retry succeeds and clears the flag.
	if err := s.Flush(0); err != nil {
		t.Fatalf("retry flush failed: %v", err)
	}
	if c.Dirty() {
		t.Error("successful retry should clear the dirty flag")
	}
	if string(mem.Bytes()[:4]) != "wxyz" {
		t.Errorf("backing store not updated: %q", mem.Bytes())
	}
}

func TestEvictCleanChunk(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789"), 4)

	if _, err := s.Get(0); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := s.Evict(0); err != nil {
		t.Fatalf("evict failed: %v", err)
	}
	if s.Resident() != 0 {
		t.Errorf("expected no resident chunks, got %d", s.Resident())
	}
	if mem.StoreCalls != 0 {
		t.Errorf("evicting a clean chunk must not write, got %d calls", mem.StoreCalls)
	}

	// A later get re-loads.
	if _, err := s.Get(0); err != nil {
		t.Fatalf("get after evict: %v", err)
	}
	if mem.LoadCalls != 2 {
		t.Errorf("expected reload after evict, got %d load calls", mem.LoadCalls)
	}
}

func TestEvictDirtyChunkFlushesFirst(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789"), 4)

	c, err := s.Get(0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	c.SetData([]byte("abcd"))

	if err := s.Evict(0); err != nil {
		t.Fatalf("evict failed: %v", err)
	}
	if string(mem.Bytes()[:4]) != "abcd" {
		t.Error("dirty chunk was evicted without persisting")
	}
	if s.Resident() != 0 {
		t.Errorf("expected no resident chunks, got %d", s.Resident())
	}
}

func TestEvictDirtyChunkFlushFailureKeepsChunk(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789"), 4)

	c, err := s.Get(0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	c.SetData([]byte("abcd"))

	mem.FailStores = 1
	if err := s.Evict(0); err == nil {
		t.Fatal("expected evict to fail when the flush fails")
	}
	if s.Resident() != 1 {
		t.Error("chunk must stay resident after a failed evict")
	}
	if s.DirtyCount() != 1 {
		t.Error("chunk must stay dirty after a failed evict")
	}
}

func TestBoundedResidencyEvictsLRU(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789abcdef"), 4, WithMaxResident(2))

	for i := uint64(0); i < 4; i++ {
		if _, err := s.Get(i); err != nil {
			t.Fatalf("get %d failed: %v", i, err)
		}
	}
	if s.Resident() != 2 {
		t.Errorf("expected 2 resident chunks, got %d", s.Resident())
	}
	if mem.StoreCalls != 0 {
		t.Errorf("clean eviction must not write, got %d store calls", mem.StoreCalls)
	}

	// Chunk 0 was evicted; re-reading it is a fresh load.
	loads := mem.LoadCalls
	if _, err := s.Get(0); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if mem.LoadCalls != loads+1 {
		t.Error("expected evicted chunk to be re-loaded")
	}
}

func TestBoundedResidencyFlushesDirtyBeforeEvicting(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789abcdef"), 4, WithMaxResident(2))

	c, err := s.Get(0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	c.SetData([]byte("dddd"))

	// Fill past the bound so chunk 0 falls off the LRU tail.
	for i := uint64(1); i < 4; i++ {
		if _, err := s.Get(i); err != nil {
			t.Fatalf("get %d failed: %v", i, err)
		}
	}
	if string(mem.Bytes()[:4]) != "dddd" {
		t.Error("dirty chunk evicted under pressure without persisting")
	}
}

func TestDropDiscardsWithoutFlushing(t *testing.T) {
	s, mem := newStore(t, []byte("0123456789"), 4)

	c, err := s.Get(0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	c.SetData([]byte("abcd"))
	s.Drop(0)

	if s.Resident() != 0 {
		t.Errorf("expected no resident chunks, got %d", s.Resident())
	}
	if mem.StoreCalls != 0 {
		t.Errorf("drop must not write, got %d store calls", mem.StoreCalls)
	}
}

func TestNewStoreRejectsZeroChunkSize(t *testing.T) {
	if _, err := NewStore(backing.NewMemory(nil, 4), 0); err == nil {
		t.Error("expected error for zero chunk size")
	}
}
