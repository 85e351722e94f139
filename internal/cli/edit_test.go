package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/archboard/pkg/diagram"
	"github.com/matzehuels/archboard/pkg/editor"
	"github.com/matzehuels/archboard/pkg/idgen"
)

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press feeds keys to m and returns the resulting model and last command.
func press(m EditModel, keys ...string) (EditModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(EditModel)
	}
	return m, cmd
}

func newEditModel(t *testing.T) EditModel {
	t.Helper()
	ed := editor.New(nil, editor.Options{Generator: idgen.NewSequence(), Logger: log.New(io.Discard)})
	return NewEditModel(context.Background(), ed)
}

func TestEditModelSelect(t *testing.T) {
	m := newEditModel(t)
	m, _ = press(m, "down", "enter")
	if got := m.Editor.SelectedID(); got != "db" {
		t.Errorf("SelectedID() = %q, want db", got)
	}

	m, _ = press(m, "down", " ")
	if ids, _ := m.Editor.Selection(); strings.Join(ids, ",") != "db,ext" {
		t.Errorf("Selection() = %v", ids)
	}

	m, _ = press(m, "up", "up", "up", "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want clamped to 0", m.Cursor)
	}
}

func TestEditModelAdd(t *testing.T) {
	m := newEditModel(t)
	m, _ = press(m, "a", "5")
	nodes := m.Editor.Nodes()
	if len(nodes) != 5 || nodes[4].ID != "worker-1" {
		t.Fatalf("nodes = %d, last = %+v", len(nodes), nodes[len(nodes)-1])
	}
	if m.Cursor != 4 {
		t.Errorf("Cursor = %d, want the new node", m.Cursor)
	}

	m, _ = press(m, "a", "esc")
	if m.mode != modeNormal || len(m.Editor.Nodes()) != 5 {
		t.Error("esc should cancel add mode")
	}
}

func TestEditModelRename(t *testing.T) {
	m := newEditModel(t)

	m, _ = press(m, "r")
	if m.mode != modeNormal || m.Status == "" {
		t.Error("rename without a selection should stay in normal mode with a hint")
	}

	m, _ = press(m, "enter", "r")
	if m.mode != modeRename || m.input != "Service" {
		t.Fatalf("mode = %v, input = %q", m.mode, m.input)
	}
	m, _ = press(m, "backspace", "backspace", "backspace", "backspace", "backspace", "backspace", "backspace", "A", "P", "I", " ", "q", "enter")
	if n, _ := m.Editor.Selected(); n.Name != "API q" {
		t.Errorf("Name = %q, want %q", n.Name, "API q")
	}
	if m.mode != modeNormal {
		t.Error("enter should leave rename mode")
	}
}

func TestEditModelConnectAndDelete(t *testing.T) {
	m := newEditModel(t)
	// connect svc -> q with the second edge type
	m, _ = press(m, "c", "down", "down", "down", "t", "enter")
	edges := m.Editor.Edges()
	if len(edges) != 1 {
		t.Fatalf("edges = %v", edges)
	}
	if e := edges[0]; e.From != "svc" || e.To != "q" || e.Type != diagram.EdgeTypes[2] {
		t.Errorf("edge = %+v", e)
	}

	m, _ = press(m, "c", "enter")
	if !strings.Contains(m.Status, "itself") {
		t.Errorf("Status = %q, want the self-loop error", m.Status)
	}

	m, _ = press(m, "enter", "d")
	if len(m.Editor.Nodes()) != 3 || len(m.Editor.Edges()) != 0 {
		t.Errorf("after delete: %d nodes, %d edges", len(m.Editor.Nodes()), len(m.Editor.Edges()))
	}
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want clamped to 2", m.Cursor)
	}

	m, _ = press(m, "R")
	if len(m.Editor.Nodes()) != 4 || m.Cursor != 0 {
		t.Error("R should reset the diagram and the cursor")
	}
}

func TestEditModelQuit(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		_, cmd := press(newEditModel(t), k)
		if cmd == nil {
			t.Fatalf("%q returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q did not quit", k)
		}
	}

	// q is text while renaming
	m, cmd := press(newEditModel(t), "enter", "r", "q")
	if cmd != nil || !strings.HasSuffix(m.input, "q") {
		t.Error("q should be typed in rename mode")
	}
}

func TestEditModelView(t *testing.T) {
	m := newEditModel(t)
	m, _ = press(m, "enter", "c", "down", "enter")
	view := m.View()
	for _, want := range []string{"Untitled Diagram", "svc", "Database", "svc → db", "◆"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestEditModelDeleteEdge(t *testing.T) {
	m := newEditModel(t)
	// svc -> db, then svc -> ext
	m, _ = press(m, "c", "down", "enter", "up", "c", "down", "down", "enter")
	if len(m.Editor.Edges()) != 2 {
		t.Fatalf("edges = %v", m.Editor.Edges())
	}

	m, _ = press(m, "tab")
	if !m.OnEdges {
		t.Fatal("tab did not focus the edge list")
	}
	m, _ = press(m, "down", "enter")
	if _, edges := m.Editor.Selection(); strings.Join(edges, ",") != "e-svc-ext" {
		t.Errorf("flagged edges = %v, want [e-svc-ext]", edges)
	}
	if !strings.Contains(m.View(), "▸ svc → ext") {
		t.Error("View() does not mark the edge cursor")
	}

	m, _ = press(m, "d")
	edges := m.Editor.Edges()
	if len(edges) != 1 || edges[0].ID != "e-svc-db" {
		t.Errorf("edges after delete = %+v, want only e-svc-db", edges)
	}
	if len(m.Editor.Nodes()) != 4 {
		t.Errorf("nodes = %d, want 4", len(m.Editor.Nodes()))
	}
	if m.EdgeCursor != 0 {
		t.Errorf("EdgeCursor = %d, want clamped to 0", m.EdgeCursor)
	}

	m, _ = press(m, " ", "d")
	if len(m.Editor.Edges()) != 0 || m.OnEdges {
		t.Error("deleting the last edge should empty the list and return focus to the nodes")
	}
}

func TestEditModelTabWithoutEdges(t *testing.T) {
	m, _ := press(newEditModel(t), "tab")
	if m.OnEdges {
		t.Error("tab focused an empty edge list")
	}
}
