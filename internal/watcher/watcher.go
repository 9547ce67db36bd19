// Package watcher detects external changes to the file backing a buffer.
//
// The buffer core is single-threaded and never polls; the watcher reports
// changes on a channel so the integrating editor can drop clean chunks and
// re-read at a point of its choosing. Rapid change bursts (editors and
// build tools often write a file several times in quick succession) are
// debounced into one event.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/hugefile/internal/log"
)

var logger = log.GetLogger("watcher")

// Op represents the type of change observed on the watched file.
type Op uint32

const (
	// OpWrite indicates the file content changed.
	OpWrite Op = 1 << iota
	// OpCreate indicates the file appeared (or was replaced via rename-over).
	OpCreate
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
	// OpChmod indicates file permissions changed.
	OpChmod
)

// String returns a human-readable representation of the operation set.
func (op Op) String() string {
	switch {
	case op.Has(OpWrite):
		return "WRITE"
	case op.Has(OpCreate):
		return "CREATE"
	case op.Has(OpRemove):
		return "REMOVE"
	case op.Has(OpRename):
		return "RENAME"
	case op.Has(OpChmod):
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation set includes the given op.
func (op Op) Has(o Op) bool {
	return op&o != 0
}

// Event represents a change to the watched file. Op combines every
// operation coalesced into the event.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// Option configures a File watcher.
type Option func(*File)

// WithDebounce sets the coalescing delay for change bursts.
func WithDebounce(d time.Duration) Option {
	return func(f *File) {
		if d > 0 {
			f.delay = d
		}
	}
}

// WithBufferSize sets the event channel capacity.
func WithBufferSize(n int) Option {
	return func(f *File) {
		if n > 0 {
			f.bufSize = n
		}
	}
}

// File watches a single file for external changes.
//
// The parent directory is watched rather than the file itself: most editors
// save by writing a temp file and renaming it over the target, which would
// silently detach a direct watch.
type File struct {
	path    string
	watcher *fsnotify.Watcher
	delay   time.Duration
	bufSize int

	events chan Event
	errors chan error

	mu      sync.Mutex
	pending *pendingEvent
	closed  bool

	closeCh chan struct{}
	wg      sync.WaitGroup
}

// pendingEvent is a debounced event waiting for its timer.
type pendingEvent struct {
	ops   Op
	timer *time.Timer
}

// NewFile starts watching the file at path.
func NewFile(path string, opts ...Option) (*File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	f := &File{
		path:    absPath,
		delay:   100 * time.Millisecond,
		bufSize: 16,
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.events = make(chan Event, f.bufSize)
	f.errors = make(chan error, f.bufSize)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}
	f.watcher = fsw

	f.wg.Add(1)
	go f.processLoop()
	return f, nil
}

// Path returns the watched file path.
func (f *File) Path() string { return f.path }

// Events returns the channel of debounced change events. It is closed when
// the watcher is closed.
func (f *File) Events() <-chan Event { return f.events }

// Errors returns the channel of watcher errors. It is closed when the
// watcher is closed.
func (f *File) Errors() <-chan error { return f.errors }

// Close stops the watcher, flushes any pending event, and closes both
// channels.
func (f *File) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	if f.pending != nil {
		f.pending.timer.Stop()
		f.pending = nil
	}
	f.mu.Unlock()

	err := f.watcher.Close()
	close(f.closeCh)
	f.wg.Wait()
	close(f.events)
	close(f.errors)
	return err
}

func (f *File) processLoop() {
	defer f.wg.Done()
	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			f.record(mapOp(ev.Op))
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			select {
			case f.errors <- err:
			default:
			}
		case <-f.closeCh:
			return
		}
	}
}

// record merges the op into the pending event, starting the debounce timer
// on the first change of a burst.
func (f *File) record(op Op) {
	if op == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if f.pending != nil {
		f.pending.ops |= op
		f.pending.timer.Reset(f.delay)
		return
	}
	p := &pendingEvent{ops: op}
	p.timer = time.AfterFunc(f.delay, func() { f.fire(p) })
	f.pending = p
}

func (f *File) fire(p *pendingEvent) {
	f.mu.Lock()
	if f.closed || f.pending != p {
		f.mu.Unlock()
		return
	}
	f.pending = nil
	f.mu.Unlock()

	ev := Event{Path: f.path, Op: p.ops, Timestamp: time.Now()}
	logger.Debugf("change detected: %s %s", ev.Op, ev.Path)
	select {
	case f.events <- ev:
	default:
		// A full channel means the consumer is far behind; dropping the
		// event is safe because the next change produces another.
	}
}

func mapOp(op fsnotify.Op) Op {
	var out Op
	if op.Has(fsnotify.Write) {
		out |= OpWrite
	}
	if op.Has(fsnotify.Create) {
		out |= OpCreate
	}
	if op.Has(fsnotify.Remove) {
		out |= OpRemove
	}
	if op.Has(fsnotify.Rename) {
		out |= OpRename
	}
	if op.Has(fsnotify.Chmod) {
		out |= OpChmod
	}
	return out
}

// Stat returns the watched file's current size and modification time, for
// cheap change confirmation before re-reading.
func (f *File) Stat() (size int64, modTime time.Time, err error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return 0, time.Time{}, err
	}
	return info.Size(), info.ModTime(), nil
}
