package vfile

import (
	"bytes"
	"fmt"
)

// Flush persists all pending state: the window's edits are re-chunked and
// written through the chunk store, then every dirty chunk is flushed.
//
// Re-chunking is deferred until here by design. The edited region is
// re-joined with terminators and re-split into fixed-size chunks; when the
// edit changed the region's byte length, everything following the region is
// shifted, rewritten, and the file truncated on shrink. The cost is
// O(affected suffix length) per flush, which suits localized edits near the
// cursor; frequent large edits near the start of a huge file pay the full
// rewrite.
//
// Flush reads everything it needs before mutating any chunk, so a failure
// during the gather phase leaves no partial state. After the in-memory
// rewrite, failures leave chunks dirty (and any pending truncation
// remembered), and a later Flush retries; persistence is at-least-once.
func (c *Cursor) Flush() error {
	if c.win == nil || !c.win.edited {
		return c.flushStore()
	}

	w := c.win
	cs := c.chunkSize
	body := w.serialize()
	origLen := w.origEnd - w.origStart

	firstChunk := w.origStart / cs
	prefixLen := w.origStart % cs
	var content []byte
	if prefixLen > 0 {
		// The head of the first chunk precedes the window's lines and is
		// untouched by edits; carry it into the rewrite verbatim.
		ck, err := c.store.Get(firstChunk)
		if err != nil {
			return err
		}
		if uint64(ck.Len()) < prefixLen {
			return fmt.Errorf("chunk %d shorter than window prefix", firstChunk)
		}
		content = append(content, ck.Data()[:prefixLen]...)
	}
	content = append(content, body...)

	shifted := uint64(len(body)) != origLen
	endChunk := w.origEnd / cs
	rem := w.origEnd % cs
	if shifted {
		// The whole suffix of the file moves: pull everything from the
		// old region end through the extent end.
		idx := endChunk
		for {
			ck, err := c.store.Get(idx)
			if err != nil {
				return err
			}
			if ck.Empty() {
				break
			}
			d := ck.Data()
			if idx == endChunk && rem > 0 {
				if uint64(len(d)) <= rem {
					d = nil
				} else {
					d = d[rem:]
				}
			}
			content = append(content, d...)
			if uint64(ck.Len()) < cs {
				break
			}
			idx++
		}
	} else if rem > 0 {
		// Length unchanged but the region ends mid-chunk; preserve the
		// rest of that chunk's bytes.
		ck, err := c.store.Get(endChunk)
		if err != nil {
			return err
		}
		if !ck.Empty() && uint64(ck.Len()) > rem {
			content = append(content, ck.Data()[rem:]...)
		}
	}

	pieces := (len(content) + int(cs) - 1) / int(cs)

	// Make every target chunk resident before mutating anything, so the
	// rewrite below cannot fail halfway through.
	for i := 0; i < pieces; i++ {
		if _, err := c.store.Get(firstChunk + uint64(i)); err != nil {
			return err
		}
	}

	// Re-split into fixed-size chunks. Unchanged chunks are left alone so
	// a single-chunk edit issues a single store call.
	next := firstChunk
	for off := 0; off < len(content); off += int(cs) {
		end := off + int(cs)
		if end > len(content) {
			end = len(content)
		}
		ck, err := c.store.Get(next)
		if err != nil {
			return err
		}
		if ck.Empty() || !bytes.Equal(ck.Data(), content[off:end]) {
			ck.SetData(append([]byte(nil), content[off:end]...))
		}
		next++
	}
	if shifted {
		// Cached chunks past the rewritten range are stale.
		c.store.DropFrom(next)
		newEnd := firstChunk*cs + uint64(len(content))
		c.pendingTruncate = &newEnd
	}

	// The in-memory rewrite is complete; from here on the window's lines
	// are exactly what the chunk store holds, and only the store flush
	// (plus any truncation) remains to retry on failure.
	w.edited = false
	w.origEnd = w.origStart + uint64(len(body))
	if shifted {
		w.atEOF = uint64(len(content)) == prefixLen+uint64(len(body))
		if w.atEOF && w.tailOpen {
			w.finalize()
		}
	}
	if w.origEnd > w.origStart {
		w.last = (w.origEnd - 1) / cs
	} else {
		w.last = w.first
	}
	if c.lineIndex > len(w.lines) {
		c.lineIndex = len(w.lines)
	}

	return c.flushStore()
}

// flushStore flushes dirty chunks and applies any pending truncation from
// a shrinking rewrite.
func (c *Cursor) flushStore() error {
	if err := c.store.FlushAll(); err != nil {
		return err
	}
	if c.pendingTruncate != nil {
		newEnd := *c.pendingTruncate
		sz, err := c.store.Backing().Size()
		if err != nil {
			return err
		}
		if sz > newEnd {
			if err := c.store.Backing().Truncate(newEnd); err != nil {
				return err
			}
		}
		c.pendingTruncate = nil
	}
	return nil
}
