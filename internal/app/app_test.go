package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newTestApp(t *testing.T, content string) (*App, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	a, err := New(Options{Paths: []string{path}, ChunkSize: 16})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Shutdown)

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(60, 10)
	a.SetScreen(screen)
	return a, path
}

func screenText(t *testing.T, a *App) string {
	t.Helper()
	sim := a.screen.(tcell.SimulationScreen)
	cells, w, h := sim.GetContents()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) > 0 {
				b.WriteRune(c.Runes[0])
			} else {
				b.WriteRune(' ')
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func key(k tcell.Key, r rune) *tcell.EventKey {
	return tcell.NewEventKey(k, r, tcell.ModNone)
}

func TestDrawShowsFileContent(t *testing.T) {
	a, _ := newTestApp(t, "first line\nsecond line\nthird line\n")
	a.draw()

	text := screenText(t, a)
	if !strings.Contains(text, "first line") || !strings.Contains(text, "second line") {
		t.Errorf("screen missing file content:\n%s", text)
	}
	if !strings.Contains(text, "sample.txt") {
		t.Errorf("screen missing tab name:\n%s", text)
	}
}

func TestMoveSelectionAndScroll(t *testing.T) {
	a, _ := newTestApp(t, "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\nk\nl\n")
	buf := a.active()

	if err := a.handleKey(key(tcell.KeyDown, 0)); err != nil {
		t.Fatalf("handleKey: %v", err)
	}
	if buf.row != 1 {
		t.Errorf("row = %d after down, want 1", buf.row)
	}

	// Eight text rows are visible; moving past the bottom scrolls.
	for i := 0; i < 10; i++ {
		a.handleKey(key(tcell.KeyDown, 0))
	}
	if buf.top == 0 {
		t.Error("viewport did not scroll at the bottom edge")
	}

	a.handleKey(key(tcell.KeyHome, 0))
	if buf.top != 0 || buf.row != 0 {
		t.Errorf("Home left top=%d row=%d", buf.top, buf.row)
	}

	a.handleKey(key(tcell.KeyPgDn, 0))
	if buf.top == 0 {
		t.Error("PgDn did not scroll")
	}
	a.handleKey(key(tcell.KeyPgUp, 0))
	if buf.top != 0 {
		t.Errorf("PgUp did not return to start, top=%d", buf.top)
	}
}

func TestInsertDeleteAndSave(t *testing.T) {
	a, path := newTestApp(t, "one\ntwo\n")
	buf := a.active()

	if err := a.handleKey(key(tcell.KeyRune, 'o')); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !buf.cursor.Modified() {
		t.Fatal("buffer not modified after insert")
	}

	if err := a.handleKey(key(tcell.KeyCtrlS, 0)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "one\n\ntwo\n" {
		t.Errorf("file = %q, want %q", data, "one\n\ntwo\n")
	}
	if buf.cursor.Modified() {
		t.Error("buffer still modified after save")
	}

	a.handleKey(key(tcell.KeyRune, 'd'))
	a.handleKey(key(tcell.KeyCtrlS, 0))
	data, _ = os.ReadFile(path)
	if string(data) != "\ntwo\n" {
		t.Errorf("file after delete+save = %q, want %q", data, "\ntwo\n")
	}
}

func TestPaletteExecutesSave(t *testing.T) {
	a, path := newTestApp(t, "one\ntwo\n")

	if err := a.handleKey(key(tcell.KeyRune, 'o')); err != nil {
		t.Fatalf("insert: %v", err)
	}

	a.handleKey(key(tcell.KeyRune, ':'))
	if a.mode != modePalette {
		t.Fatal("palette did not open")
	}
	for _, r := range "save" {
		a.handleKey(key(tcell.KeyRune, r))
	}
	sel, ok := a.popup.Selected()
	if !ok || sel.Text != "Save File" {
		t.Fatalf("selected suggestion = %+v (ok=%v), want Save File", sel, ok)
	}
	if err := a.handleKey(key(tcell.KeyEnter, 0)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if a.mode != modeNormal {
		t.Error("palette still open after execute")
	}

	data, _ := os.ReadFile(path)
	if string(data) != "one\n\ntwo\n" {
		t.Errorf("file = %q after palette save", data)
	}
}

func TestPaletteNumericQueryJumpsToLine(t *testing.T) {
	a, _ := newTestApp(t, "aa\nbb\ncc\ndd\n")
	buf := a.active()

	a.handleKey(key(tcell.KeyRune, ':'))
	a.handleKey(key(tcell.KeyRune, '3'))
	if err := a.handleKey(key(tcell.KeyEnter, 0)); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if buf.top != 6 {
		t.Errorf("top = %d after :3, want 6", buf.top)
	}
}

func TestStatusShowsMessageWhilePaletteOpen(t *testing.T) {
	a, path := newTestApp(t, "old content\n")
	buf := a.active()
	a.screen.(tcell.SimulationScreen).SetSize(200, 10)

	// An external change arriving while the palette is open must still
	// surface its message on the status line.
	a.handleKey(key(tcell.KeyRune, 'o'))
	a.handleKey(key(tcell.KeyRune, ':'))
	if err := os.WriteFile(path, []byte("disk content\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	a.handleFileChanged(buf.id)

	a.draw()
	if text := screenText(t, a); !strings.Contains(text, "changed on disk") {
		t.Errorf("palette status hides the message:\n%s", text)
	}
}

func TestQuitConfirmationWhenModified(t *testing.T) {
	a, _ := newTestApp(t, "one\n")

	if err := a.handleKey(key(tcell.KeyRune, 'q')); !errors.Is(err, ErrQuit) {
		t.Fatalf("quit on clean buffer = %v, want ErrQuit", err)
	}

	a.handleKey(key(tcell.KeyRune, 'o'))
	if err := a.handleKey(key(tcell.KeyRune, 'q')); err != nil {
		t.Fatalf("first quit with edits = %v, want nil", err)
	}
	if a.message == "" {
		t.Error("no warning message on first quit")
	}
	if err := a.handleKey(key(tcell.KeyRune, 'q')); !errors.Is(err, ErrQuit) {
		t.Fatalf("second quit = %v, want ErrQuit", err)
	}
}

func TestExternalChangeReloadsCleanBuffer(t *testing.T) {
	a, path := newTestApp(t, "old content\n")
	buf := a.active()
	a.draw()

	if err := os.WriteFile(path, []byte("new content\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	a.handleFileChanged(buf.id)

	a.draw()
	if text := screenText(t, a); !strings.Contains(text, "new content") {
		t.Errorf("screen not reloaded:\n%s", text)
	}
}

func TestExternalChangeMarksDirtyBufferStale(t *testing.T) {
	a, path := newTestApp(t, "old content\n")
	buf := a.active()

	a.handleKey(key(tcell.KeyRune, 'o'))
	if err := os.WriteFile(path, []byte("disk content\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	a.handleFileChanged(buf.id)

	if !buf.stale {
		t.Error("dirty buffer not marked stale")
	}
	if !buf.cursor.Modified() {
		t.Error("edits were discarded")
	}
}
