package chunk

// Chunk is the in-memory state of one fixed-size slice of the backing
// store's address space. A chunk is either loaded (bytes present, possibly
// dirty) or empty (its offset lies beyond the persisted extent).
//
// Chunks are owned exclusively by one Store; callers mutate them only
// through SetData, which is what keeps the dirty flag honest.
type Chunk struct {
	data  []byte
	dirty bool
	empty bool
}

// Data returns the chunk's bytes. Empty chunks return nil. Callers must not
// modify the returned slice; use SetData.
func (c *Chunk) Data() []byte { return c.data }

// Len returns the number of bytes held by the chunk.
func (c *Chunk) Len() int { return len(c.data) }

// Dirty reports whether the chunk holds an unflushed mutation.
func (c *Chunk) Dirty() bool { return c.dirty }

// Empty reports whether the chunk lies beyond the persisted extent and has
// never been written.
func (c *Chunk) Empty() bool { return c.empty }

// SetData replaces the chunk's bytes and marks it dirty. Writing to an
// empty chunk makes it loaded.
func (c *Chunk) SetData(data []byte) {
	c.data = data
	c.dirty = true
	c.empty = false
}
