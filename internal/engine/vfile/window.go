package vfile

// window is the cursor's materialized slice of logical lines for the
// chunk(s) currently being traversed.
//
// first/last bound the chunk span whose lines are materialized. origStart
// and origEnd bound the pre-edit byte region the lines were parsed from;
// they drive flush-time re-chunking and are updated only by structural
// operations (parse, splice, trim), never by edits.
type window struct {
	first, last uint64
	lines       []Line

	headOpen bool // lines[0] may continue into an unloaded preceding chunk
	tailOpen bool // final line's terminator not yet seen within the span
	atEOF    bool // the span reaches the end of the persisted extent

	origStart uint64
	origEnd   uint64
	edited    bool
}

// parseChunk splits one chunk's bytes into logical lines. Bytes after the
// last terminator (possibly zero of them) form an open-ended fragment; the
// caller resolves it by stitching or, at end of extent, by finalizing.
func parseChunk(data []byte, off uint64) []Line {
	var lines []Line
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			lines = append(lines, Line{
				text: string(data[start:i]),
				off:  off + uint64(start),
				term: true,
			})
			start = i + 1
		}
	}
	lines = append(lines, Line{
		text:    string(data[start:]),
		off:     off + uint64(start),
		openEnd: true,
	})
	return lines
}

// finalize resolves the tail fragment against the end of the extent: an
// empty fragment is dropped (the file ended with a terminator), a non-empty
// one is the complete unterminated final line.
func (w *window) finalize() {
	w.atEOF = true
	if !w.tailOpen {
		return
	}
	w.tailOpen = false
	n := len(w.lines)
	if n == 0 {
		return
	}
	if w.lines[n-1].text == "" && !w.lines[n-1].term {
		w.lines = w.lines[:n-1]
		return
	}
	w.lines[n-1].openEnd = false
}

// serialize re-joins the window's lines with terminators. Unterminated
// lines (fragments and a file's final line) contribute no terminator, so an
// unedited window serializes to its original bytes.
func (w *window) serialize() []byte {
	var size int
	for _, l := range w.lines {
		size += len(l.text)
		if l.term {
			size++
		}
	}
	buf := make([]byte, 0, size)
	for _, l := range w.lines {
		buf = append(buf, l.text...)
		if l.term {
			buf = append(buf, '\n')
		}
	}
	return buf
}

// recomputeOffsets rewrites line offsets from origStart, reflecting the
// window's current in-memory content.
func (w *window) recomputeOffsets() {
	off := w.origStart
	for i := range w.lines {
		w.lines[i].off = off
		off = w.lines[i].end()
	}
}

// lineAt returns the index of the line containing the byte offset, or the
// nearest line when the offset falls before or after the window.
func (w *window) lineAt(off uint64) int {
	idx := 0
	for i := range w.lines {
		if w.lines[i].off > off {
			break
		}
		idx = i
	}
	return idx
}

func (w *window) chunkSpan() uint64 {
	return w.last - w.first + 1
}
