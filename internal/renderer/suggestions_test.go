package renderer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hugefile/internal/command"
)

func manySuggestions(n int) []command.Suggestion {
	items := make([]command.Suggestion, n)
	for i := range items {
		items[i] = command.Suggestion{Text: fmt.Sprintf("Command %02d", i)}
	}
	return items
}

func TestSuggestionsMoveClamps(t *testing.T) {
	s := NewSuggestions()
	s.Set(manySuggestions(3))

	s.Move(-1)
	if s.SelectedIndex() != 0 {
		t.Errorf("SelectedIndex = %d after move above top", s.SelectedIndex())
	}
	s.Move(10)
	if s.SelectedIndex() != 2 {
		t.Errorf("SelectedIndex = %d after move past bottom, want 2", s.SelectedIndex())
	}
	sel, ok := s.Selected()
	if !ok || sel.Text != "Command 02" {
		t.Errorf("Selected = %+v (ok=%v)", sel, ok)
	}
}

func TestSuggestionsSetClampsSelection(t *testing.T) {
	s := NewSuggestions()
	s.Set(manySuggestions(10))
	s.Move(9)
	s.Set(manySuggestions(4))
	if s.SelectedIndex() != 0 {
		t.Errorf("SelectedIndex = %d after shrinking list, want 0", s.SelectedIndex())
	}
}

func TestSuggestionsScrollWindow(t *testing.T) {
	s := NewSuggestions()
	s.Set(manySuggestions(10))

	tests := []struct {
		selected int
		visible  int
		want     int
	}{
		{0, 4, 0},
		{1, 4, 0},
		{5, 4, 3},
		{9, 4, 6},
		{8, 4, 6},
		{5, 20, 0},
	}
	for _, tt := range tests {
		s.selected = tt.selected
		if got := s.scrollStart(tt.visible); got != tt.want {
			t.Errorf("scrollStart(visible=%d) with selected=%d = %d, want %d",
				tt.visible, tt.selected, got, tt.want)
		}
	}
}

func TestSuggestionsDrawKeepsSelectionVisible(t *testing.T) {
	s := newSimScreen(t, 40, 8)
	popup := NewSuggestions()
	popup.Set(manySuggestions(10))
	popup.Move(9)

	popup.Draw(s, Rect{X: 0, Y: 0, W: 40, H: 6}, DefaultTheme())
	s.Show()

	// Inner height is 4, so the last page (06..09) is shown.
	var visible []string
	for y := 1; y <= 4; y++ {
		visible = append(visible, rowString(t, s, y))
	}
	joined := strings.Join(visible, "\n")
	if !strings.Contains(joined, "Command 09") {
		t.Errorf("selected suggestion not visible:\n%s", joined)
	}
	if strings.Contains(joined, "Command 05") {
		t.Errorf("scrolled-out suggestion still visible:\n%s", joined)
	}
}

func TestSuggestionsDrawDisabledDimmed(t *testing.T) {
	s := newSimScreen(t, 40, 8)
	popup := NewSuggestions()
	popup.Set([]command.Suggestion{
		{Text: "Enabled", Description: "works here"},
		{Text: "Disabled", Disabled: true},
	})

	popup.Draw(s, Rect{X: 0, Y: 0, W: 40, H: 6}, DefaultTheme())
	s.Show()

	if row := rowString(t, s, 1); !strings.Contains(row, "Enabled  -  works here") {
		t.Errorf("row 1 = %q, want name and description", row)
	}
	_, _, attrs := cellStyle(t, s, 3, 2).Decompose()
	if attrs&tcell.AttrDim == 0 {
		t.Error("disabled suggestion not dimmed")
	}
	_, _, attrs = cellStyle(t, s, 3, 1).Decompose()
	if attrs&tcell.AttrDim != 0 {
		t.Error("enabled suggestion dimmed")
	}
}

func TestSuggestionsDrawEmptyDrawsNothing(t *testing.T) {
	s := newSimScreen(t, 20, 5)
	NewSuggestions().Draw(s, Rect{X: 0, Y: 0, W: 20, H: 5}, DefaultTheme())
	s.Show()

	if row := rowString(t, s, 0); strings.TrimSpace(row) != "" {
		t.Errorf("empty popup drew %q", row)
	}
}
