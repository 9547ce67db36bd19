package renderer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hugefile/internal/command"
)

// Rect is a screen region.
type Rect struct {
	X, Y, W, H int
}

// Suggestions models the command palette popup: a scrollable suggestion
// list with one entry selected. Disabled entries are drawn dimmed but stay
// selectable, so the palette can explain why a command is unavailable.
type Suggestions struct {
	items    []command.Suggestion
	selected int
}

// NewSuggestions returns an empty popup model.
func NewSuggestions() *Suggestions {
	return &Suggestions{}
}

// Set replaces the suggestion list and clamps the selection.
func (s *Suggestions) Set(items []command.Suggestion) {
	s.items = items
	if s.selected >= len(items) {
		s.selected = 0
	}
}

// Len returns the number of suggestions.
func (s *Suggestions) Len() int { return len(s.items) }

// Move shifts the selection by delta, clamping at the ends.
func (s *Suggestions) Move(delta int) {
	if len(s.items) == 0 {
		return
	}
	s.selected += delta
	if s.selected < 0 {
		s.selected = 0
	}
	if s.selected >= len(s.items) {
		s.selected = len(s.items) - 1
	}
}

// Selected returns the selected suggestion.
func (s *Suggestions) Selected() (command.Suggestion, bool) {
	if len(s.items) == 0 {
		return command.Suggestion{}, false
	}
	return s.items[s.selected], true
}

// SelectedIndex returns the selection index.
func (s *Suggestions) SelectedIndex() int { return s.selected }

// scrollStart picks the first visible item so the selection stays visible:
// centered when possible, pinned at the list edges otherwise.
func (s *Suggestions) scrollStart(visible int) int {
	if visible <= 0 || len(s.items) <= visible {
		return 0
	}
	switch {
	case s.selected < visible/2:
		return 0
	case s.selected >= len(s.items)-visible/2:
		return len(s.items) - visible
	default:
		return s.selected - visible/2
	}
}

// Draw renders the popup with a border into area. Nothing is drawn when
// there are no suggestions.
func (s *Suggestions) Draw(screen tcell.Screen, area Rect, theme Theme) {
	if len(s.items) == 0 || area.W < 2 || area.H < 2 {
		return
	}

	border := tcell.StyleDefault.
		Foreground(theme.PopupBorderFg).
		Background(theme.SuggestionBg)
	drawBorder(screen, area, border)

	inner := Rect{X: area.X + 1, Y: area.Y + 1, W: area.W - 2, H: area.H - 2}
	start := s.scrollStart(inner.H)

	for row := 0; row < inner.H; row++ {
		idx := start + row
		y := inner.Y + row

		if idx >= len(s.items) {
			fill := tcell.StyleDefault.Background(theme.SuggestionBg)
			for x := inner.X; x < inner.X+inner.W; x++ {
				screen.SetContent(x, y, ' ', nil, fill)
			}
			continue
		}

		item := s.items[idx]
		style := tcell.StyleDefault.
			Foreground(theme.PopupTextFg).
			Background(theme.SuggestionBg)
		if idx == s.selected {
			style = style.Background(theme.SuggestionSelectedBg)
		}
		if item.Disabled {
			style = style.Foreground(theme.DisabledFg).Dim(true)
		}

		text := "  " + item.Text
		if item.Description != "" {
			text += "  -  " + item.Description
		}
		x := drawText(screen, inner.X, y, inner.X+inner.W, style, text)
		for ; x < inner.X+inner.W; x++ {
			screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func drawBorder(screen tcell.Screen, area Rect, style tcell.Style) {
	x1, y1 := area.X, area.Y
	x2, y2 := area.X+area.W-1, area.Y+area.H-1

	for x := x1 + 1; x < x2; x++ {
		screen.SetContent(x, y1, tcell.RuneHLine, nil, style)
		screen.SetContent(x, y2, tcell.RuneHLine, nil, style)
	}
	for y := y1 + 1; y < y2; y++ {
		screen.SetContent(x1, y, tcell.RuneVLine, nil, style)
		screen.SetContent(x2, y, tcell.RuneVLine, nil, style)
	}
	screen.SetContent(x1, y1, tcell.RuneULCorner, nil, style)
	screen.SetContent(x2, y1, tcell.RuneURCorner, nil, style)
	screen.SetContent(x1, y2, tcell.RuneLLCorner, nil, style)
	screen.SetContent(x2, y2, tcell.RuneLRCorner, nil, style)
}
