package vfile

// Line is a logical line: a maximal run of bytes not containing the line
// terminator, together with its source byte offset and markers describing
// whether the run is known to be complete.
//
// A line read near the edge of the loaded window may be a fragment: its
// start can continue into a not-yet-loaded preceding chunk (OpenStart), or
// its terminator may not have been seen yet (OpenEnd). NextLine only ever
// returns lines whose end is resolved; Get exposes fragments as-is.
type Line struct {
	text      string
	off       uint64
	openStart bool
	openEnd   bool
	term      bool
}

// Text returns the line's bytes, without the terminator.
func (l Line) Text() string { return l.text }

// Offset returns the byte offset of the line's first byte in the file. For
// an edited window, offsets reflect the in-memory content as it will be
// serialized on flush.
func (l Line) Offset() uint64 { return l.off }

// OpenStart reports whether the line may continue into a preceding chunk
// that is not loaded.
func (l Line) OpenStart() bool { return l.openStart }

// OpenEnd reports whether the line's terminator has not been seen yet.
func (l Line) OpenEnd() bool { return l.openEnd }

// Complete reports whether the line is known complete on both ends.
func (l Line) Complete() bool { return !l.openStart && !l.openEnd }

// Terminated reports whether the line's source bytes end with the line
// terminator. The final line of a file frequently does not; preserving the
// distinction keeps re-serialization byte-exact.
func (l Line) Terminated() bool { return l.term }

// end returns the offset one past the line's last byte, terminator included.
func (l Line) end() uint64 {
	e := l.off + uint64(len(l.text))
	if l.term {
		e++
	}
	return e
}
