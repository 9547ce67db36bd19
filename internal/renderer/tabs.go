package renderer

import (
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

// BufferID identifies an open buffer across the UI.
type BufferID = uuid.UUID

// Tab is one entry in the tab bar.
type Tab struct {
	ID       BufferID
	Name     string
	Modified bool
}

// Tabs models the tab bar: open buffers in open order, one of them active.
type Tabs struct {
	order  []BufferID
	byID   map[BufferID]*Tab
	active BufferID
}

// NewTabs returns an empty tab bar.
func NewTabs() *Tabs {
	return &Tabs{byID: make(map[BufferID]*Tab)}
}

// Add opens a tab with the given display name and makes it active.
func (t *Tabs) Add(name string) BufferID {
	id := uuid.New()
	t.byID[id] = &Tab{ID: id, Name: name}
	t.order = append(t.order, id)
	t.active = id
	return id
}

// Remove closes a tab. When the active tab is closed the previous tab in
// open order becomes active.
func (t *Tabs) Remove(id BufferID) {
	if _, ok := t.byID[id]; !ok {
		return
	}
	delete(t.byID, id)
	for i, other := range t.order {
		if other == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			if t.active == id && len(t.order) > 0 {
				if i > 0 {
					i--
				}
				t.active = t.order[i]
			}
			break
		}
	}
	if len(t.order) == 0 {
		t.active = BufferID{}
	}
}

// SetModified updates a tab's unsaved-changes marker.
func (t *Tabs) SetModified(id BufferID, modified bool) {
	if tab, ok := t.byID[id]; ok {
		tab.Modified = modified
	}
}

// SetActive makes the tab with id active.
func (t *Tabs) SetActive(id BufferID) {
	if _, ok := t.byID[id]; ok {
		t.active = id
	}
}

// Active returns the active tab's ID.
func (t *Tabs) Active() BufferID { return t.active }

// Next activates the tab after the active one, wrapping around.
func (t *Tabs) Next() { t.step(1) }

// Prev activates the tab before the active one, wrapping around.
func (t *Tabs) Prev() { t.step(-1) }

func (t *Tabs) step(delta int) {
	n := len(t.order)
	if n == 0 {
		return
	}
	for i, id := range t.order {
		if id == t.active {
			t.active = t.order[((i+delta)%n+n)%n]
			return
		}
	}
}

// Len returns the number of open tabs.
func (t *Tabs) Len() int { return len(t.order) }

// List returns the tabs in open order.
func (t *Tabs) List() []Tab {
	out := make([]Tab, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.byID[id])
	}
	return out
}

// Draw renders the tab bar on row y. Each tab shows " name " with a "*"
// marker when modified; the active tab is bold in the active colors.
func (t *Tabs) Draw(screen tcell.Screen, y, width int, theme Theme) {
	sep := tcell.StyleDefault.Background(theme.TabSeparatorBg)
	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, sep)
	}

	x := 0
	for i, id := range t.order {
		tab := t.byID[id]
		style := tcell.StyleDefault.
			Foreground(theme.TabInactiveFg).
			Background(theme.TabInactiveBg)
		if id == t.active {
			style = tcell.StyleDefault.
				Foreground(theme.TabActiveFg).
				Background(theme.TabActiveBg).
				Bold(true)
		}

		text := " " + tab.Name
		if tab.Modified {
			text += "*"
		}
		text += " "
		x = drawText(screen, x, y, width, style, text)
		if i < len(t.order)-1 && x < width {
			screen.SetContent(x, y, ' ', nil, sep)
			x++
		}
		if x >= width {
			break
		}
	}
}

// drawText writes text starting at (x, y), clipped at maxX, and returns the
// x position after the last written cell.
func drawText(screen tcell.Screen, x, y, maxX int, style tcell.Style, text string) int {
	for _, r := range text {
		if x >= maxX {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
