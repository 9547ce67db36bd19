package vfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/dshills/hugefile/internal/engine/chunk"
)

// Errors returned by cursor operations.
var (
	// ErrOutOfRange indicates a line index outside the current window.
	// Mutations never clamp; they report.
	ErrOutOfRange = errors.New("line index out of range")
)

// DefaultWindowChunks is the number of chunks a window spans before the
// cursor trims the far edge on an adjacent seek. Edited windows are never
// trimmed; they grow until the next flush.
const DefaultWindowChunks = 2

// Cursor is the line-oriented view over a chunk store (the virtual file).
type Cursor struct {
	store      *chunk.Store
	chunkSize  uint64
	win        *window
	chunkIndex uint64
	lineIndex  int
	maxChunks  int

	// pendingTruncate carries a shrink from a re-chunking flush whose
	// store flush failed, so a retry still truncates the backing.
	pendingTruncate *uint64
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithWindowChunks sets how many chunks the window may span before
// trimming. Values below two are ignored; a two-chunk minimum is required
// for boundary stitching.
func WithWindowChunks(n int) Option {
	return func(c *Cursor) {
		if n >= 2 {
			c.maxChunks = n
		}
	}
}

// New creates a cursor over the given chunk store. No IO happens until the
// first seek or line read.
func New(store *chunk.Store, opts ...Option) *Cursor {
	c := &Cursor{
		store:     store,
		chunkSize: store.ChunkSize(),
		maxChunks: DefaultWindowChunks,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkSize returns the cursor's chunk size in bytes.
func (c *Cursor) ChunkSize() uint64 { return c.chunkSize }

// Store returns the cursor's chunk store.
func (c *Cursor) Store() *chunk.Store { return c.store }

// Seek positions the cursor at the chunk containing the byte offset.
//
// Moving to the chunk already current is a no-op. Moving exactly one chunk
// forward or backward splices the neighbor into the window, stitching a
// boundary-straddling line into one logical line. A move to a chunk still
// inside the window repositions without reloading. Any other move discards
// the window and loads the target chunk fresh; boundary fragments of a
// fresh window stay marked incomplete until a neighbor is loaded.
func (c *Cursor) Seek(offset uint64) error {
	target := offset / c.chunkSize

	switch {
	case c.win == nil:
		return c.loadFresh(target)
	case target == c.chunkIndex:
		return nil
	case target >= c.win.first && target <= c.win.last:
		c.lineIndex = c.win.lineAt(offset)
		c.chunkIndex = target
		return nil
	case target == c.win.last+1:
		return c.appendNext()
	case c.win.first > 0 && target == c.win.first-1:
		return c.prependPrev()
	default:
		return c.loadFresh(target)
	}
}

// SeekLine seeks to offset and positions the line cursor on the line
// containing it, so NextLine continues from that line. Seek alone keeps
// the line position stable across splices; SeekLine repositions.
func (c *Cursor) SeekLine(offset uint64) error {
	if err := c.Seek(offset); err != nil {
		return err
	}
	c.lineIndex = c.win.lineAt(offset)
	return nil
}

// NextLine returns the next logical line and advances the cursor. The
// returned line is always terminator-complete (or the genuine final line):
// when the window's tail is a fragment, the following chunk is spliced in
// before returning. io.EOF signals the end of the stream.
func (c *Cursor) NextLine() (Line, error) {
	if c.win == nil {
		if err := c.loadFresh(c.chunkIndex); err != nil {
			return Line{}, err
		}
	}
	for {
		w := c.win
		needMore := c.lineIndex >= len(w.lines) ||
			(c.lineIndex == len(w.lines)-1 && w.tailOpen)
		if !needMore {
			break
		}
		if w.atEOF {
			return Line{}, io.EOF
		}
		if err := c.appendNext(); err != nil {
			return Line{}, err
		}
	}
	ln := c.win.lines[c.lineIndex]
	c.lineIndex++
	return ln, nil
}

// Get returns the window line at index. Boundary fragments are returned
// as-is, marked incomplete.
func (c *Cursor) Get(index int) (Line, error) {
	if c.win == nil || index < 0 || index >= len(c.win.lines) {
		return Line{}, fmt.Errorf("get line %d: %w", index, ErrOutOfRange)
	}
	return c.win.lines[index], nil
}

// Len returns the number of lines materialized in the current window.
func (c *Cursor) Len() int {
	if c.win == nil {
		return 0
	}
	return len(c.win.lines)
}

// LineIndex returns the cursor's position within the window.
func (c *Cursor) LineIndex() int { return c.lineIndex }

// Lines returns a copy of the window's materialized lines.
func (c *Cursor) Lines() []Line {
	if c.win == nil {
		return nil
	}
	return append([]Line(nil), c.win.lines...)
}

// Modified reports whether unflushed edits exist.
func (c *Cursor) Modified() bool {
	return (c.win != nil && c.win.edited) || c.store.DirtyCount() > 0
}

// Insert inserts a new line before index; index may equal Len to append.
// The change lives in the window until Flush re-chunks and persists it.
func (c *Cursor) Insert(index int, text string) error {
	if c.win == nil {
		if err := c.loadFresh(c.chunkIndex); err != nil {
			return err
		}
	}
	w := c.win
	n := len(w.lines)
	if index < 0 || index > n {
		return fmt.Errorf("insert at line %d: %w", index, ErrOutOfRange)
	}

	// An insertion point adjacent to an unresolved boundary fragment would
	// split a straddling line on disk; splice the neighbor in first.
	switch {
	case index == n && n > 0 && w.lines[n-1].openEnd:
		idx, err := c.resolveLine(n - 1)
		if err != nil {
			return err
		}
		w = c.win
		index = idx + 1
		n = len(w.lines)
	case index < n && w.lines[index].openStart:
		idx, err := c.resolveLine(index)
		if err != nil {
			return err
		}
		w = c.win
		index = idx
		n = len(w.lines)
	}

	ln := Line{text: text, term: true}
	if index == n {
		// Appending after the final line: the previous final line gains
		// a terminator; the new line becomes the unterminated tail.
		if n > 0 && !w.lines[n-1].term {
			w.lines[n-1].term = true
		}
		ln.term = false
		w.lines = append(w.lines, ln)
	} else {
		w.lines = append(w.lines, Line{})
		copy(w.lines[index+1:], w.lines[index:])
		w.lines[index] = ln
		if index <= c.lineIndex {
			c.lineIndex++
		}
	}
	w.edited = true
	w.recomputeOffsets()
	return nil
}

// Remove deletes and returns the line at index.
func (c *Cursor) Remove(index int) (Line, error) {
	if c.win == nil || index < 0 || index >= len(c.win.lines) {
		return Line{}, fmt.Errorf("remove line %d: %w", index, ErrOutOfRange)
	}
	// Removing a fragment would delete only the loaded half of a line that
	// straddles into an unloaded chunk; resolve it before mutating.
	if !c.win.lines[index].Complete() {
		var err error
		if index, err = c.resolveLine(index); err != nil {
			return Line{}, err
		}
	}
	w := c.win
	ln := w.lines[index]
	w.lines = append(w.lines[:index], w.lines[index+1:]...)
	if index < c.lineIndex {
		c.lineIndex--
	}
	if c.lineIndex > len(w.lines) {
		c.lineIndex = len(w.lines)
	}
	w.edited = true
	w.recomputeOffsets()
	return ln, nil
}

// resolveLine splices neighboring chunks into the window until the line at
// index is complete on both ends, returning the line's index afterward.
// Splices shift indices and trims can reshape the far edge, so the line is
// re-located by offset after each step.
func (c *Cursor) resolveLine(index int) (int, error) {
	for {
		ln := c.win.lines[index]
		if ln.Complete() {
			return index, nil
		}
		off := ln.off
		var err error
		if ln.openStart {
			err = c.prependPrev()
		} else {
			err = c.appendNext()
		}
		if err != nil {
			return 0, err
		}
		index = c.win.lineAt(off)
	}
}

// loadFresh discards the window and materializes the target chunk.
func (c *Cursor) loadFresh(target uint64) error {
	ck, err := c.store.Get(target)
	if err != nil {
		return err
	}

	w := &window{
		first:     target,
		last:      target,
		origStart: target * c.chunkSize,
	}
	if ck.Empty() {
		w.origEnd = w.origStart
		w.atEOF = true
	} else {
		w.lines = parseChunk(ck.Data(), w.origStart)
		w.origEnd = w.origStart + uint64(ck.Len())
		w.tailOpen = true
		if target > 0 {
			w.headOpen = true
			w.lines[0].openStart = true
		}
		if uint64(ck.Len()) < c.chunkSize {
			w.finalize()
		}
	}
	c.win = w
	c.chunkIndex = target
	c.lineIndex = 0
	return nil
}

// appendNext splices the chunk after the window into its tail. A trailing
// fragment is concatenated with the new chunk's first piece, so a line
// straddling the boundary becomes one logical line. The line index is
// unchanged: the new chunk only extends the tail.
//
// When the tail was trimmed earlier, the window's coverage ends mid-chunk
// at a line boundary; incoming pieces already covered are skipped instead
// of stitched.
func (c *Cursor) appendNext() error {
	w := c.win
	target := w.last + 1
	ck, err := c.store.Get(target)
	if err != nil {
		return err
	}
	if ck.Empty() {
		w.finalize()
		c.chunkIndex = w.last
		return nil
	}

	incoming := parseChunk(ck.Data(), target*c.chunkSize)
	if w.tailOpen && len(w.lines) > 0 {
		n := len(w.lines) - 1
		frag := w.lines[n]
		frag.text += incoming[0].text
		frag.term = incoming[0].term
		frag.openEnd = incoming[0].openEnd
		w.lines[n] = frag
		incoming = incoming[1:]
	} else {
		// Skip pieces the window still covers (a stitched line kept
		// through a tail trim can reach into this chunk).
		skip := 0
		for skip < len(incoming) && incoming[skip].end() <= w.origEnd {
			skip++
		}
		incoming = incoming[skip:]
	}
	w.lines = append(w.lines, incoming...)
	w.last = target
	w.origEnd = target*c.chunkSize + uint64(ck.Len())
	w.tailOpen = true
	if uint64(ck.Len()) < c.chunkSize {
		w.finalize()
	}
	c.chunkIndex = w.last
	c.trimHead()
	return nil
}

// prependPrev splices the chunk before the window into its head. The
// preceding chunk's trailing fragment is concatenated with the window's
// first line; the line index shifts forward by the number of whole lines
// the prepended chunk contributed, since line 0 of the old window is no
// longer line 0 of the new one.
func (c *Cursor) prependPrev() error {
	w := c.win
	target := w.first - 1
	ck, err := c.store.Get(target)
	if err != nil {
		return err
	}
	if ck.Empty() {
		// Preceding chunks are always within the extent when the current
		// one is; an empty result means the file shrank underneath us.
		return fmt.Errorf("chunk %d: preceding chunk vanished", target)
	}

	incoming := parseChunk(ck.Data(), target*c.chunkSize)
	old := w.lines
	var prepended int
	if w.headOpen && len(old) > 0 {
		// Stitch the incoming trailing fragment onto the old first line.
		n := len(incoming) - 1
		frag := incoming[n]
		frag.text += old[0].text
		frag.term = old[0].term
		frag.openEnd = old[0].openEnd
		incoming[n] = frag
		old = old[1:]
		prepended = n
	} else {
		// A head trim left line 0 with a known start; keep only incoming
		// lines that end at or before it, dropping the zero-length
		// fragment that marks the boundary itself.
		keep := 0
		for keep < len(incoming) {
			l := incoming[keep]
			if l.end() > w.origStart || (!l.term && l.off >= w.origStart) {
				break
			}
			keep++
		}
		incoming = incoming[:keep]
		prepended = keep
	}

	// Swap-based splice: take the old line slice and rebuild in front of
	// it; failure-free once both chunks are loaded.
	w.lines = append(incoming, old...)
	w.first = target
	w.origStart = target * c.chunkSize
	w.headOpen = target > 0
	if len(w.lines) > 0 {
		w.lines[0].openStart = w.headOpen
	}
	c.lineIndex += prepended
	c.chunkIndex = w.first
	c.trimTail()
	return nil
}

// trimHead drops whole chunks off the window head once the span exceeds the
// configured bound. A stitched line overlapping the retained region is kept
// even when it begins inside a dropped chunk. Edited windows are never
// trimmed.
func (c *Cursor) trimHead() {
	w := c.win
	if w.edited {
		return
	}
	for w.chunkSpan() > uint64(c.maxChunks) {
		w.first++
		boundary := w.first * c.chunkSize
		dropped := 0
		for dropped < len(w.lines) && w.lines[dropped].end() <= boundary {
			dropped++
		}
		if dropped == 0 {
			// A single line spans the whole head chunk; trimming it
			// would lose coverage. Let the window stay wide.
			w.first--
			return
		}
		w.lines = append([]Line(nil), w.lines[dropped:]...)
		c.lineIndex -= dropped
		if c.lineIndex < 0 {
			c.lineIndex = 0
		}
		w.headOpen = false
		if len(w.lines) > 0 {
			w.lines[0].openStart = false
			w.origStart = w.lines[0].off
		} else {
			w.origStart = boundary
		}
	}
}

// trimTail drops whole chunks off the window tail once the span exceeds the
// configured bound; the symmetric counterpart of trimHead for backward
// scans.
func (c *Cursor) trimTail() {
	w := c.win
	if w.edited {
		return
	}
	for w.chunkSpan() > uint64(c.maxChunks) {
		boundary := w.last * c.chunkSize
		w.last--
		kept := len(w.lines)
		for kept > 0 && w.lines[kept-1].off >= boundary {
			kept--
		}
		if kept == len(w.lines) {
			// Nothing starts inside the tail chunk: a stitched line (or
			// open fragment) spans it. Trimming would lose coverage.
			w.last++
			return
		}
		w.lines = w.lines[:kept]
		if c.lineIndex > kept {
			c.lineIndex = kept
		}
		w.tailOpen = false
		w.atEOF = false
		if kept > 0 {
			w.origEnd = w.lines[kept-1].end()
		} else {
			w.origEnd = boundary
		}
	}
}
