package app

import (
	"errors"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hugefile/internal/command"
	"github.com/dshills/hugefile/internal/renderer"
)

// fileChangedEvent is posted into the tcell loop when the watcher reports
// an external change to a buffer's file.
type fileChangedEvent struct {
	tcell.EventTime
	id renderer.BufferID
}

func newFileChangedEvent(id renderer.BufferID) *fileChangedEvent {
	ev := &fileChangedEvent{id: id}
	ev.SetEventNow()
	return ev
}

func (a *App) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		return nil
	case *fileChangedEvent:
		a.handleFileChanged(ev.id)
		return nil
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventInterrupt:
		return ErrQuit
	default:
		return nil
	}
}

// handleFileChanged reloads a clean buffer; a buffer with unsaved edits is
// only marked stale, the user decides what wins.
func (a *App) handleFileChanged(id renderer.BufferID) {
	buf, ok := a.buffers[id]
	if !ok {
		return
	}
	if buf.cursor.Modified() {
		buf.stale = true
		a.message = buf.path + " changed on disk; save overwrites, reload discards edits"
		return
	}
	buf.store.DropAll()
	buf.cursor = a.freshCursor(buf)
	a.message = buf.path + " reloaded after external change"
}

func (a *App) handleKey(ev *tcell.EventKey) error {
	switch a.mode {
	case modePalette:
		return a.handlePaletteKey(ev)
	case modeHelp:
		return a.handleHelpKey(ev)
	default:
		return a.handleNormalKey(ev)
	}
}

func (a *App) handleNormalKey(ev *tcell.EventKey) error {
	// Any key other than a repeated quit cancels the pending quit.
	pending := a.pendingQuit
	a.pendingQuit = false
	a.message = ""

	switch {
	case ev.Key() == tcell.KeyCtrlQ,
		ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
		a.pendingQuit = pending
		return a.requestQuit()
	case ev.Key() == tcell.KeyCtrlS:
		if err := a.save(); err != nil {
			a.message = "save failed: " + err.Error()
		}
	case ev.Key() == tcell.KeyRune && ev.Rune() == ':':
		a.mode = modePalette
		a.query = ""
		a.popup.Set(a.registry.Filter("", command.ContextNormal))
	case ev.Key() == tcell.KeyF1:
		a.mode = modeHelp
	case ev.Key() == tcell.KeyTab:
		a.tabs.Next()
	case ev.Key() == tcell.KeyBacktab:
		a.tabs.Prev()
	case ev.Key() == tcell.KeyUp:
		a.moveSelection(-1)
	case ev.Key() == tcell.KeyDown:
		a.moveSelection(1)
	case ev.Key() == tcell.KeyPgUp:
		a.page(-1)
	case ev.Key() == tcell.KeyPgDn:
		a.page(1)
	case ev.Key() == tcell.KeyHome:
		buf := a.active()
		buf.top = 0
		buf.row = 0
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'o':
		if err := a.insertLine(); err != nil {
			a.message = err.Error()
		}
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'd':
		if err := a.deleteLine(); err != nil {
			a.message = err.Error()
		}
	}
	return nil
}

func (a *App) handlePaletteKey(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.mode = modeNormal
	case tcell.KeyEnter:
		a.mode = modeNormal
		return a.runPaletteSelection()
	case tcell.KeyUp:
		a.popup.Move(-1)
	case tcell.KeyDown:
		a.popup.Move(1)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if a.query != "" {
			a.query = a.query[:len(a.query)-1]
			a.popup.Set(a.registry.Filter(a.query, command.ContextNormal))
		}
	case tcell.KeyRune:
		a.query += string(ev.Rune())
		a.popup.Set(a.registry.Filter(a.query, command.ContextNormal))
	}
	return nil
}

func (a *App) handleHelpKey(ev *tcell.EventKey) error {
	switch {
	case ev.Key() == tcell.KeyEscape,
		ev.Key() == tcell.KeyF1,
		ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
		a.mode = modeNormal
	}
	return nil
}

// runPaletteSelection executes the selected suggestion. A purely numeric
// query is a go-to-line shortcut instead.
func (a *App) runPaletteSelection() error {
	if n, err := strconv.ParseUint(a.query, 10, 64); err == nil && a.query != "" {
		a.gotoLine(n)
		return nil
	}

	sel, ok := a.popup.Selected()
	if !ok {
		return nil
	}
	if sel.Disabled {
		a.message = sel.Text + " is not available here"
		return nil
	}
	cmd, ok := a.registry.Find(sel.Text)
	if !ok {
		return nil
	}
	err := a.execute(cmd)
	if errors.Is(err, ErrQuit) {
		return err
	}
	if err != nil {
		a.message = err.Error()
	}
	return nil
}

// gotoLine scrolls the active buffer to the 1-based line number, walking
// lines from the start of the file.
func (a *App) gotoLine(n uint64) {
	buf := a.active()
	if err := buf.cursor.SeekLine(0); err != nil {
		a.message = err.Error()
		return
	}
	var offset uint64
	for i := uint64(1); i < n; i++ {
		ln, err := buf.cursor.NextLine()
		if err != nil {
			break
		}
		offset = ln.Offset() + uint64(len(ln.Text()))
		if ln.Terminated() {
			offset++
		}
	}
	buf.top = offset
	buf.row = 0
}

// moveSelection moves the cursor row, scrolling at the viewport edges.
func (a *App) moveSelection(delta int) {
	buf := a.active()
	rows := a.textRows()
	if delta > 0 {
		lines := a.visibleLines(buf, buf.row+2)
		if buf.row+1 < len(lines) {
			if buf.row+1 < rows {
				buf.row++
			} else {
				a.scrollDown(buf)
			}
		}
		return
	}
	if buf.row > 0 {
		buf.row--
		return
	}
	a.scrollUp(buf)
}

// page scrolls by a full viewport of lines.
func (a *App) page(dir int) {
	buf := a.active()
	rows := a.textRows()
	if dir > 0 {
		lines := a.visibleLines(buf, rows+1)
		if len(lines) > rows {
			buf.top = lines[rows].Offset()
			buf.row = 0
		}
		return
	}
	for i := 0; i < rows; i++ {
		if !a.scrollUp(buf) {
			break
		}
	}
	buf.row = 0
}

// scrollDown advances top by one line.
func (a *App) scrollDown(buf *buffer) {
	lines := a.visibleLines(buf, 2)
	if len(lines) > 1 {
		buf.top = lines[1].Offset()
	}
}

// scrollUp moves top to the preceding line, reporting whether it moved.
func (a *App) scrollUp(buf *buffer) bool {
	if buf.top == 0 {
		return false
	}
	if err := buf.cursor.SeekLine(buf.top - 1); err != nil {
		return false
	}
	ln, err := buf.cursor.Get(buf.cursor.LineIndex())
	if err != nil {
		return false
	}
	buf.top = ln.Offset()
	return true
}
