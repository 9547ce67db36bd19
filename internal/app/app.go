// Package app wires the buffer engine, command registry, plugins, and
// renderer into the interactive viewer shell.
package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hugefile/internal/command"
	"github.com/dshills/hugefile/internal/config"
	"github.com/dshills/hugefile/internal/engine/backing"
	"github.com/dshills/hugefile/internal/engine/chunk"
	"github.com/dshills/hugefile/internal/engine/vfile"
	"github.com/dshills/hugefile/internal/log"
	"github.com/dshills/hugefile/internal/plugin"
	"github.com/dshills/hugefile/internal/renderer"
	"github.com/dshills/hugefile/internal/watcher"
)

// ErrQuit signals a normal user-requested exit from Run.
var ErrQuit = errors.New("quit")

var logger = log.GetLogger("app")

// Options configures the application.
type Options struct {
	// ConfigPath overrides the configuration file location.
	ConfigPath string
	// ChunkSize overrides the configured chunk size when non-zero.
	ChunkSize uint64
	// LogLevel overrides the configured log level when non-empty.
	LogLevel string
	// Paths are the files to open, one tab each.
	Paths []string
}

// mode is the input mode the shell is in.
type mode int

const (
	modeNormal mode = iota
	modePalette
	modeHelp
)

// buffer couples one open file with its engine stack and UI state.
type buffer struct {
	id     renderer.BufferID
	path   string
	file   *backing.File
	store  *chunk.Store
	cursor *vfile.Cursor

	// top is the byte offset of the first visible line.
	top uint64
	// row is the selected row within the visible lines.
	row int

	watch *watcher.File
	// stale is set when the file changed on disk under unsaved edits.
	stale bool
}

// App is the viewer shell.
type App struct {
	cfg    config.Config
	theme  renderer.Theme
	screen tcell.Screen

	registry *command.Registry
	plugins  *plugin.Loader
	tabs     *renderer.Tabs
	popup    *renderer.Suggestions

	buffers map[renderer.BufferID]*buffer

	mode    mode
	query   string // palette input
	message string // status line message

	pendingQuit bool
}

// New creates the application, loads configuration and plugins, and opens
// one buffer per path. At least one path is required.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.ChunkSize > 0 {
		cfg.ChunkSize = opts.ChunkSize
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.SetLevel(log.ParseLevel(cfg.Log.Level))

	if len(opts.Paths) == 0 {
		return nil, errors.New("no files to open")
	}

	a := &App{
		cfg:      cfg,
		theme:    renderer.LookupTheme(cfg.Theme),
		registry: command.NewRegistry(),
		tabs:     renderer.NewTabs(),
		popup:    renderer.NewSuggestions(),
		buffers:  make(map[renderer.BufferID]*buffer),
	}
	a.plugins = plugin.NewLoader(a.registry)
	if cfg.PluginDir != "" {
		if err := a.plugins.LoadDir(cfg.PluginDir); err != nil {
			// A broken plugin must not keep the editor from starting.
			logger.Warnf("plugin load: %v", err)
		}
	}

	for _, path := range opts.Paths {
		if err := a.open(path); err != nil {
			a.Shutdown()
			return nil, err
		}
	}
	return a, nil
}

// open adds a buffer (and tab) for the file at path.
func (a *App) open(path string) error {
	file, err := backing.OpenFile(path, a.cfg.ChunkSize)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	var storeOpts []chunk.Option
	if a.cfg.MaxResidentChunks > 0 {
		storeOpts = append(storeOpts, chunk.WithMaxResident(a.cfg.MaxResidentChunks))
	}
	store, err := chunk.NewStore(file, a.cfg.ChunkSize, storeOpts...)
	if err != nil {
		file.Close()
		return err
	}

	buf := &buffer{
		path:   path,
		file:   file,
		store:  store,
		cursor: vfile.New(store),
	}
	buf.id = a.tabs.Add(filepath.Base(path))
	a.buffers[buf.id] = buf

	w, err := watcher.NewFile(path)
	if err != nil {
		logger.Warnf("watch %s: %v", path, err)
	} else {
		buf.watch = w
		if a.screen != nil {
			a.forwardWatch(buf)
		}
	}
	return nil
}

// SetScreen attaches the (initialized) screen the app draws on. Watcher
// events start flowing into the event loop once a screen is attached.
func (a *App) SetScreen(screen tcell.Screen) {
	a.screen = screen
	for _, buf := range a.buffers {
		if buf.watch != nil {
			a.forwardWatch(buf)
		}
	}
}

// forwardWatch pumps file change events into the tcell event loop.
func (a *App) forwardWatch(buf *buffer) {
	go func(id renderer.BufferID, events <-chan watcher.Event) {
		for range events {
			a.screen.PostEvent(newFileChangedEvent(id))
		}
	}(buf.id, buf.watch.Events())
}

// active returns the active buffer.
func (a *App) active() *buffer {
	return a.buffers[a.tabs.Active()]
}

// Run drives the event loop until quit or error.
func (a *App) Run() error {
	if a.screen == nil {
		return errors.New("no screen attached")
	}
	for {
		a.draw()
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := a.handleEvent(ev); err != nil {
			return err
		}
	}
}

// Shutdown releases every buffer's resources. Pending edits are not
// flushed; saving is an explicit action.
func (a *App) Shutdown() {
	for _, buf := range a.buffers {
		if buf.watch != nil {
			buf.watch.Close()
		}
		if err := buf.file.Close(); err != nil {
			logger.Warnf("closing %s: %v", buf.path, err)
		}
	}
	a.buffers = make(map[renderer.BufferID]*buffer)
}

// save flushes the active buffer to disk.
func (a *App) save() error {
	buf := a.active()
	if err := buf.cursor.Flush(); err != nil {
		return err
	}
	if err := buf.file.Sync(); err != nil {
		return err
	}
	buf.stale = false
	a.message = "saved " + buf.path
	return nil
}

// reload discards all cached state of the active buffer and re-reads.
func (a *App) reload() {
	buf := a.active()
	buf.store.DropAll()
	buf.cursor = a.freshCursor(buf)
	buf.stale = false
	a.message = "reloaded " + buf.path
}

// execute dispatches a palette command's action.
func (a *App) execute(cmd command.Command) error {
	switch cmd.Action {
	case "file.save":
		return a.save()
	case "app.quit":
		return a.requestQuit()
	case "tab.next":
		a.tabs.Next()
	case "tab.prev":
		a.tabs.Prev()
	case "edit.insert-line":
		return a.insertLine()
	case "edit.delete-line":
		return a.deleteLine()
	case "file.reload":
		a.reload()
	case "cursor.goto":
		a.message = "go to line: type a number in the palette, e.g. :42"
	case "help.close":
		a.mode = modeNormal
	default:
		// Plugin commands carry no executable action in-process.
		a.message = "ran " + cmd.Name
	}
	return nil
}

// requestQuit quits, demanding a second request when edits are unsaved.
func (a *App) requestQuit() error {
	for _, buf := range a.buffers {
		if buf.cursor.Modified() && !a.pendingQuit {
			a.pendingQuit = true
			a.message = "unsaved changes; quit again to discard"
			return nil
		}
	}
	return ErrQuit
}

// insertLine inserts an empty line after the selected one.
func (a *App) insertLine() error {
	buf := a.active()
	idx, ok := a.selectedLine(buf)
	if !ok {
		// An empty buffer gets its first line.
		return buf.cursor.Insert(0, "")
	}
	return buf.cursor.Insert(idx+1, "")
}

// deleteLine removes the selected line.
func (a *App) deleteLine() error {
	buf := a.active()
	idx, ok := a.selectedLine(buf)
	if !ok {
		return nil
	}
	if _, err := buf.cursor.Remove(idx); err != nil {
		return err
	}
	if buf.row > 0 {
		buf.row--
	}
	return nil
}

// selectedLine resolves the selected row to a window line index.
func (a *App) selectedLine(buf *buffer) (int, bool) {
	lines := a.visibleLines(buf, buf.row+1)
	if len(lines) <= buf.row {
		return 0, false
	}
	target := lines[buf.row]
	if err := buf.cursor.SeekLine(target.Offset()); err != nil {
		return 0, false
	}
	return buf.cursor.LineIndex(), true
}
