package app

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hugefile/internal/engine/vfile"
	"github.com/dshills/hugefile/internal/renderer"
	"github.com/dshills/hugefile/internal/view"
)

// freshCursor replaces a buffer's cursor after its cache was dropped.
func (a *App) freshCursor(buf *buffer) *vfile.Cursor {
	buf.top = 0
	buf.row = 0
	return vfile.New(buf.store)
}

// textRows returns the number of rows available for buffer text: everything
// between the tab bar and the status line.
func (a *App) textRows() int {
	_, h := a.screen.Size()
	rows := h - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

// visibleLines returns up to n lines starting at the line containing the
// buffer's top offset.
func (a *App) visibleLines(buf *buffer, n int) []vfile.Line {
	if err := buf.cursor.SeekLine(buf.top); err != nil {
		a.message = err.Error()
		return nil
	}

	var out []vfile.Line
	for len(out) < n {
		ln, err := buf.cursor.NextLine()
		if err != nil {
			break
		}
		end := ln.Offset() + uint64(len(ln.Text()))
		if ln.Terminated() {
			end++
		}
		if end <= buf.top {
			continue
		}
		out = append(out, ln)
	}
	return out
}

func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()

	for id, buf := range a.buffers {
		a.tabs.SetModified(id, buf.cursor.Modified())
	}
	a.tabs.Draw(a.screen, 0, w, a.theme)

	if a.mode == modeHelp {
		a.drawHelp(w, h)
	} else {
		a.drawText(w, h)
	}
	a.drawStatus(w, h)

	if a.mode == modePalette && a.popup.Len() > 0 {
		ph := a.popup.Len() + 2
		if avail := h - 3; ph > avail {
			ph = avail
		}
		if ph >= 3 {
			a.popup.Draw(a.screen, renderer.Rect{X: 0, Y: h - 1 - ph, W: w, H: ph}, a.theme)
		}
	}

	a.screen.Show()
}

func (a *App) drawText(w, h int) {
	buf := a.active()
	if buf == nil {
		return
	}
	rows := a.textRows()
	lines := a.visibleLines(buf, rows)
	stream := view.FromLines(lines)

	base := tcell.StyleDefault.Foreground(a.theme.Text).Background(a.theme.Background)
	selected := base.Reverse(true)

	row, x := 0, 0
	used := len(lines)
	for _, tok := range stream.Tokens() {
		if row >= rows {
			break
		}
		style := base
		if row == buf.row {
			style = selected
		}
		switch tok.Kind {
		case view.KindText:
			for _, r := range tok.Text {
				if x >= w {
					break
				}
				a.screen.SetContent(x, row+1, r, nil, style)
				x++
			}
		case view.KindVirtualText:
			for _, r := range tok.Text {
				if x >= w {
					break
				}
				a.screen.SetContent(x, row+1, r, nil, style.Dim(true))
				x++
			}
		case view.KindNewline:
			if row == buf.row {
				for ; x < w; x++ {
					a.screen.SetContent(x, row+1, ' ', nil, style)
				}
			}
			row, x = row+1, 0
		}
	}
	if used > 0 && row == buf.row && row < rows && x < w {
		for ; x < w; x++ {
			a.screen.SetContent(x, row+1, ' ', nil, selected)
		}
	}
	for row := used; row < rows; row++ {
		a.screen.SetContent(0, row+1, '~', nil, base.Dim(true))
	}
}

var helpLines = []string{
	"hugefile keys",
	"",
	"  Up/Down        move selection",
	"  PgUp/PgDn      scroll by a page",
	"  Home           jump to start of file",
	"  :              open the command palette (a number jumps to that line)",
	"  o              insert a line below the selection",
	"  d              delete the selected line",
	"  Tab/Shift-Tab  switch buffer tabs",
	"  Ctrl-S         save (flush edits to disk)",
	"  q / Ctrl-Q     quit",
	"  F1             toggle this help",
}

func (a *App) drawHelp(w, h int) {
	style := tcell.StyleDefault.Foreground(a.theme.Text).Background(a.theme.Background)
	for i, line := range helpLines {
		if i+1 >= h-1 {
			break
		}
		x := 0
		for _, r := range line {
			if x >= w {
				break
			}
			a.screen.SetContent(x, i+1, r, nil, style)
			x++
		}
	}
}

func (a *App) drawStatus(w, h int) {
	y := h - 1
	style := tcell.StyleDefault.
		Foreground(a.theme.TabActiveFg).
		Background(a.theme.TabActiveBg)
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, style)
	}

	var text string
	if a.mode == modePalette {
		text = ":" + a.query
		if a.message != "" {
			text += "  |  " + a.message
		}
	} else if buf := a.active(); buf != nil {
		mark := ""
		if buf.cursor.Modified() {
			mark = " [+]"
		}
		if buf.stale {
			mark += " [changed on disk]"
		}
		text = fmt.Sprintf(" %s%s  @%d", buf.path, mark, buf.top)
		if a.message != "" {
			text += "  |  " + a.message
		}
	}
	x := 0
	for _, r := range text {
		if x >= w {
			break
		}
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
