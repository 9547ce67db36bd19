// Package vfile presents a lazily materialized, navigable sequence of
// logical lines over a chunk store. It is the line-oriented API the editor's
// buffer and view layers consume.
//
// The package provides:
//
//   - Byte-offset seeking with chunk-granular loading
//   - Forward line iteration that reuses already-loaded chunks
//     (amortized O(1) per line on a sequential scan)
//   - Correct reassembly of lines whose bytes straddle a chunk boundary
//   - Line-level read, insert and remove with dirty tracking
//   - Flush-time re-chunking of edited regions, byte-exact with respect to
//     the logical content
//
// A line that crosses a chunk boundary is never reported as two truncated
// lines: a chunk's trailing bytes with no terminator form a fragment that is
// stitched to the following chunk's first piece. When a neighbor is not
// loaded (after a non-adjacent seek), the boundary line is exposed as
// incomplete rather than silently presented as a complete short line.
//
// The cursor is single-threaded and synchronous. All chunk store calls are
// blocking positional IO; an interactive caller should dispatch them off the
// rendering path. A cursor owns its chunk store exclusively; concurrent
// views over the same file must be serialized by the integrating layer.
package vfile
