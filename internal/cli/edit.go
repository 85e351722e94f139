package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archboard/pkg/diagram"
	"github.com/matzehuels/archboard/pkg/editor"
	errs "github.com/matzehuels/archboard/pkg/errors"
)

// editCommand creates the edit command running the terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the stored diagram in the terminal",
		Long: `Edit the stored diagram in an interactive terminal view. Every change is
saved immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			p := tea.NewProgram(NewEditModel(ctx, sess.Editor), tea.WithContext(ctx), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run editor: %w", err)
			}
			printSuccess(c.Out, "Saved %s", sess.Editor.Snapshot().Name)
			printStats(c.Out, len(sess.Editor.Nodes()), len(sess.Editor.Edges()))
			return nil
		},
	}
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// EditModel - Interactive diagram editor
// =============================================================================

type editMode int

const (
	modeNormal editMode = iota
	modeAdd
	modeRename
	modeConnect
)

// EditModel is the bubbletea model for the terminal editor. Cursor walks
// the node list and EdgeCursor the edge list; tab moves the focus between
// them. The editor holds the diagram and selection.
type EditModel struct {
	ctx    context.Context
	Editor *editor.Editor

	Cursor     int
	EdgeCursor int
	OnEdges    bool
	Height     int
	Offset     int

	mode     editMode
	input    string
	from     string
	edgeType diagram.EdgeType
	Status   string
}

// NewEditModel creates an editor model over ed.
func NewEditModel(ctx context.Context, ed *editor.Editor) EditModel {
	return EditModel{ctx: ctx, Editor: ed, Height: 15, edgeType: diagram.DefaultEdgeType}
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

// cursorNode returns the node under the cursor.
func (m EditModel) cursorNode(nodes []diagram.Node) (diagram.Node, bool) {
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return diagram.Node{}, false
	}
	return nodes[m.Cursor], true
}

func (m *EditModel) moveCursor(delta, count int) {
	m.Cursor = min(max(m.Cursor+delta, 0), max(count-1, 0))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeRename:
			return m.updateRename(msg)
		case modeConnect:
			return m.updateConnect(msg)
		}
		return m.updateNormal(msg)
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m EditModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.OnEdges = !m.OnEdges && len(m.Editor.Edges()) > 0
		return m, nil
	case "q", "esc":
		return m, tea.Quit
	}
	if m.OnEdges {
		return m.updateEdges(msg)
	}

	nodes := m.Editor.Nodes()
	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1, len(nodes))
	case "down", "j":
		m.moveCursor(1, len(nodes))
	case "enter":
		if n, ok := m.cursorNode(nodes); ok {
			m.Editor.Select([]string{n.ID}, nil)
			m.Status = "Selected " + n.ID
		}
	case " ":
		if n, ok := m.cursorNode(nodes); ok {
			ids, edges := m.Editor.Selection()
			if i := slices.Index(ids, n.ID); i >= 0 {
				ids = slices.Delete(ids, i, i+1)
			} else {
				ids = append(ids, n.ID)
			}
			m.Editor.Select(ids, edges)
		}
	case "a":
		m.mode = modeAdd
		m.Status = ""
	case "r":
		n, ok := m.Editor.Selected()
		if !ok {
			m.Status = "Select a node with enter first"
			return m, nil
		}
		m.mode = modeRename
		m.input = n.Name
	case "c":
		if n, ok := m.cursorNode(nodes); ok {
			m.mode = modeConnect
			m.from = n.ID
			m.edgeType = diagram.DefaultEdgeType
		}
	case "d", "x", "delete":
		m.deleteSelected()
	case "R":
		m.Editor.Reset(m.ctx)
		m.Cursor, m.Offset, m.EdgeCursor = 0, 0, 0
		m.Status = "Reset to starter nodes"
	}
	return m, nil
}

// updateEdges handles keys while the edge list has the focus.
func (m EditModel) updateEdges(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	edges := m.Editor.Edges()
	cur, ok := diagram.Edge{}, m.EdgeCursor < len(edges)
	if ok {
		cur = edges[m.EdgeCursor]
	}
	switch msg.String() {
	case "up", "k":
		m.EdgeCursor = max(m.EdgeCursor-1, 0)
	case "down", "j":
		m.EdgeCursor = min(m.EdgeCursor+1, max(len(edges)-1, 0))
	case "enter":
		if ok {
			m.Editor.Select(nil, []string{cur.ID})
			m.Status = "Selected " + cur.ID
		}
	case " ":
		if ok {
			nodeIDs, ids := m.Editor.Selection()
			if i := slices.Index(ids, cur.ID); i >= 0 {
				ids = slices.Delete(ids, i, i+1)
			} else {
				ids = append(ids, cur.ID)
			}
			m.Editor.Select(nodeIDs, ids)
		}
	case "d", "x", "delete":
		m.deleteSelected()
	}
	return m, nil
}

func (m *EditModel) deleteSelected() {
	n, e := m.Editor.DeleteSelected(m.ctx)
	m.Status = fmt.Sprintf("Deleted %d nodes, %d edges", n, e)
	m.moveCursor(0, len(m.Editor.Nodes()))
	edges := len(m.Editor.Edges())
	m.EdgeCursor = min(m.EdgeCursor, max(edges-1, 0))
	if edges == 0 {
		m.OnEdges = false
	}
}

func (m EditModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		m.mode = modeNormal
		return m, nil
	}
	for i, kind := range diagram.NodeTypes {
		if key != fmt.Sprint(i+1) {
			continue
		}
		n, err := m.Editor.AddNode(m.ctx, kind)
		m.mode = modeNormal
		if err != nil {
			m.Status = errs.UserMessage(err)
			return m, nil
		}
		nodes := m.Editor.Nodes()
		m.moveCursor(len(nodes)-1-m.Cursor, len(nodes))
		m.Status = "Added " + n.ID
	}
	return m, nil
}

func (m EditModel) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode, m.input = modeNormal, ""
	case tea.KeyEnter:
		id := m.Editor.SelectedID()
		if m.Editor.Relabel(m.ctx, id, m.input) {
			m.Status = "Renamed " + id
		}
		m.mode, m.input = modeNormal, ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m EditModel) updateConnect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.Editor.Nodes()
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
	case "up", "k":
		m.moveCursor(-1, len(nodes))
	case "down", "j":
		m.moveCursor(1, len(nodes))
	case "t":
		i := slices.Index(diagram.EdgeTypes, m.edgeType)
		m.edgeType = diagram.EdgeTypes[(i+1)%len(diagram.EdgeTypes)]
	case "enter":
		m.mode = modeNormal
		to, ok := m.cursorNode(nodes)
		if !ok {
			return m, nil
		}
		e, err := m.Editor.Connect(m.ctx, editor.Connection{Source: m.from, Target: to.ID, Type: m.edgeType})
		if err != nil {
			m.Status = errs.UserMessage(err)
			return m, nil
		}
		m.Status = "Connected " + e.ID
	}
	return m, nil
}

// =============================================================================
// View
// =============================================================================

func (m EditModel) help() string {
	switch m.mode {
	case modeAdd:
		parts := make([]string, len(diagram.NodeTypes))
		for i, t := range diagram.NodeTypes {
			parts[i] = fmt.Sprintf("%d %s", i+1, t.Label())
		}
		return "add: " + strings.Join(parts, "  ") + "  esc cancel"
	case modeRename:
		return "⏎ save  esc cancel"
	case modeConnect:
		return fmt.Sprintf("connect %s → ?  ↑/↓ target  t type (%s)  ⏎ connect  esc cancel", m.from, m.edgeType)
	}
	if m.OnEdges {
		return "edges: ↑/↓ move  ⏎ select  space multi-select  d delete  tab nodes  q quit"
	}
	return "↑/↓ move  ⏎ select  space multi-select  a add  c connect  r rename  d delete  R reset  tab edges  q quit"
}

func (m EditModel) View() string {
	var b strings.Builder
	d := m.Editor.Snapshot()
	flagged, flaggedEdges := m.Editor.Selection()
	active := m.Editor.SelectedID()

	b.WriteString(StyleTitle.Render(d.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.help()))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(d.Nodes))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := d.Nodes[i]
		cursor := "  "
		if i == m.Cursor && !m.OnEdges {
			cursor = "▸ "
		}
		mark := " "
		switch {
		case n.ID == active:
			mark = "◆"
		case slices.Contains(flagged, n.ID):
			mark = "●"
		}
		rows = append(rows, []string{cursor, mark, n.ID, n.Type.Label(), n.Name})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "ID", "Kind", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(d.Nodes) {
				return lipgloss.NewStyle()
			}
			if col == 3 {
				return kindStyle(d.Nodes[idx].Type)
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	for i, e := range d.Edges {
		arrow := iconArrow
		if e.IsAsync() {
			arrow = iconAsync
		}
		cursor := "  "
		if m.OnEdges && i == m.EdgeCursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%s %s %s  %s", cursor, e.From, arrow, e.To, e.Type)
		if slices.Contains(flaggedEdges, e.ID) {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.mode == modeRename {
		b.WriteString("\n" + StyleHighlight.Render("name: ") + m.input + "▏\n")
	}
	if m.Status != "" {
		b.WriteString("\n" + StyleDim.Render(m.Status) + "\n")
	}
	return b.String()
}
