package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsondiagram/pkg/diagram"
	"github.com/matzehuels/jsondiagram/pkg/document"
	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/layout"
)

// columnEngine stacks boxes vertically.
type columnEngine struct{}

func (columnEngine) Name() string { return "column" }

func (columnEngine) Place(_ context.Context, req layout.Request) (layout.Placement, error) {
	p := layout.Placement{}
	for i, b := range req.Boxes {
		p[b.ID] = graph.Point{X: 100, Y: 80 * float64(i+1)}
	}
	return p, nil
}

func newTestExplorer(t *testing.T, updates <-chan document.Update) ExplorerModel {
	t.Helper()
	doc, err := document.Parse([]byte(storeDoc))
	if err != nil {
		t.Fatal(err)
	}
	view := diagram.New(diagram.Options{
		Engine:      columnEngine{},
		SearchDelay: time.Millisecond,
		Logger:      log.New(io.Discard),
	})
	view.Load(context.Background(), doc)
	view.TakeViewportRequests()
	return NewExplorerModel(context.Background(), view, "store.json", updates)
}

func press(t *testing.T, m ExplorerModel, keys ...string) ExplorerModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(ExplorerModel)
	}
	return m
}

func update(t *testing.T, m ExplorerModel, msg tea.Msg) (ExplorerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(ExplorerModel), cmd
}

func TestExplorerToggleKeepsCursor(t *testing.T) {
	m := newTestExplorer(t, nil)

	m = press(t, m, "down", "down")
	if m.Cursor != 2 {
		t.Fatalf("Cursor = %d, want 2", m.Cursor)
	}

	m = press(t, m, "enter")
	ids := visibleIDs(m.view.Graph())
	if got := strings.Join(ids, ","); got != "node-0,node-1,node-2" {
		t.Errorf("visible = %s, want node-0,node-1,node-2", got)
	}
	if m.Cursor != 2 {
		t.Errorf("Cursor after toggle = %d, want 2", m.Cursor)
	}
	if !strings.Contains(m.View(), "▸ ") {
		t.Error("View() should mark the collapsed node")
	}

	m = press(t, m, "enter")
	if n := len(visibleIDs(m.view.Graph())); n != 5 {
		t.Errorf("visible after expand = %d, want 5", n)
	}
}

func TestExplorerLevelClampsCursor(t *testing.T) {
	m := newTestExplorer(t, nil)

	m = press(t, m, "down", "down", "down")
	m = press(t, m, "1")

	// Depth-2 nodes collapse but stay visible; their children are hidden.
	if got := strings.Join(visibleIDs(m.view.Graph()), ","); got != "node-0,node-1,node-2" {
		t.Errorf("visible at level 1 = %s, want node-0,node-1,node-2", got)
	}
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", m.Cursor)
	}

	m = press(t, m, "0")
	if n := len(visibleIDs(m.view.Graph())); n != 5 {
		t.Errorf("visible without level limit = %d, want 5", n)
	}
}

func TestExplorerDebouncedSearch(t *testing.T) {
	m := newTestExplorer(t, nil)

	m = press(t, m, "/")
	m, first := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m, second := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("en")})
	if first == nil || second == nil {
		t.Fatal("typing should schedule debounced searches")
	}

	// The first tick was superseded by the second edit.
	m, _ = update(t, m, first())
	if s := m.view.Scene(); s.Search.Term != "" {
		t.Errorf("superseded search ran with term %q", s.Search.Term)
	}

	m, _ = update(t, m, second())
	s := m.view.Scene()
	if s.Search.Term != "pen" || len(s.Search.Results) != 1 {
		t.Fatalf("search = %q with %d results, want pen with 1", s.Search.Term, len(s.Search.Results))
	}
	if s.Focused != "node-3" {
		t.Errorf("Focused = %q, want node-3", s.Focused)
	}
	if m.Cursor != 3 {
		t.Errorf("Cursor = %d, want 3 (moved to the match)", m.Cursor)
	}

	m = press(t, m, "enter", "esc")
	if s := m.view.Scene(); s.Search.Term != "" || s.Focused != "" {
		t.Errorf("esc left search %q focused %q", s.Search.Term, s.Focused)
	}
}

func TestExplorerSelectAndLock(t *testing.T) {
	m := newTestExplorer(t, nil)

	m = press(t, m, "s")
	s := m.view.Scene()
	if s.Selected != "node-0" {
		t.Errorf("Selected = %q, want node-0", s.Selected)
	}
	if !strings.Contains(m.View(), "selected node-0") {
		t.Error("header should name the selection")
	}

	m = press(t, m, "L")
	if !m.view.Scene().Locked {
		t.Error("L should lock the nodes")
	}
	if m.status != "nodes locked" {
		t.Errorf("status = %q, want nodes locked", m.status)
	}
}

func TestExplorerRelayoutKeys(t *testing.T) {
	m := newTestExplorer(t, nil)

	m = press(t, m, "d", "r")
	if got := m.view.Density(); got != layout.Expanded {
		t.Errorf("Density = %s, want %s", got, layout.Expanded)
	}
	if got := m.view.Direction(); got != layout.TopToBottom {
		t.Errorf("Direction = %s, want %s", got, layout.TopToBottom)
	}
}

func TestExplorerReloadsDocument(t *testing.T) {
	updates := make(chan document.Update, 1)
	m := newTestExplorer(t, updates)
	m = press(t, m, "down", "down")

	doc, err := document.Parse([]byte(`{"only": {"x": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	updates <- document.Update{Value: doc}

	m, cmd := update(t, m, m.Init()())
	if cmd == nil {
		t.Error("the explorer should keep waiting for updates")
	}
	if n := m.view.Graph().NodeCount(); n != 2 {
		t.Errorf("NodeCount() after reload = %d, want 2", n)
	}
	if m.Cursor != 0 {
		t.Errorf("Cursor after reload = %d, want 0", m.Cursor)
	}
	if !strings.Contains(m.status, "reloaded") {
		t.Errorf("status = %q, want reload notice", m.status)
	}

	close(updates)
	m, _ = update(t, m, waitForUpdate(updates)())
	if m.updates != nil {
		t.Error("closed watcher should stop the update loop")
	}
}

func TestExplorerQuit(t *testing.T) {
	m := newTestExplorer(t, nil)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}
