package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archboard/pkg/diagram"
)

// showCommand creates the show command that prints the stored diagram.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored diagram as tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			d := sess.Editor.Snapshot()
			fmt.Fprintln(c.Out, StyleTitle.Render(d.Name)+" "+StyleDim.Render(sess.Loaded.Outcome.String()))
			printStats(c.Out, len(d.Nodes), len(d.Edges))
			fmt.Fprintln(c.Out)
			fmt.Fprintln(c.Out, nodeTable(d))
			if len(d.Edges) > 0 {
				fmt.Fprintln(c.Out, edgeTable(d))
			}
			return nil
		},
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

// nodeTable renders one row per node with its kind coloured as on the canvas.
func nodeTable(d *diagram.Diagram) string {
	rows := make([][]string, len(d.Nodes))
	for i, n := range d.Nodes {
		rows[i] = []string{
			n.ID,
			string(n.Type),
			n.Name,
			fmt.Sprintf("%g, %g", n.Position.X, n.Position.Y),
			strconv.Itoa(len(d.EdgesTo(n.ID))) + "/" + strconv.Itoa(len(d.EdgesFrom(n.ID))),
			formatProperties(n.Properties),
		}
	}
	return newTable("ID", "Kind", "Name", "Position", "In/Out", "Properties").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 1 && row < len(d.Nodes) {
				return kindStyle(d.Nodes[row].Type)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// edgeTable renders one row per edge, marking asynchronous ones.
func edgeTable(d *diagram.Diagram) string {
	rows := make([][]string, len(d.Edges))
	for i, e := range d.Edges {
		arrow := iconArrow
		if e.IsAsync() {
			arrow = iconAsync
		}
		rows[i] = []string{e.ID, e.From + " " + arrow + " " + e.To, string(e.Type), e.Label}
	}
	return newTable("ID", "Connection", "Type", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if row < len(d.Edges) && d.Edges[row].IsAsync() {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// formatProperties renders properties as sorted key=value pairs.
func formatProperties(p diagram.Properties) string {
	if len(p) == 0 {
		return "—"
	}
	parts := make([]string, 0, len(p))
	for _, k := range p.Keys() {
		parts = append(parts, k+"="+formatValue(p[k]))
	}
	return strings.Join(parts, " ")
}

func formatValue(v diagram.Value) string {
	switch v.Kind() {
	case diagram.KindString:
		s, _ := v.AsString()
		return strconv.Quote(s)
	case diagram.KindNumber:
		f, _ := v.AsNumber()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case diagram.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case diagram.KindList:
		l, _ := v.AsList()
		return fmt.Sprintf("[%d]", len(l))
	case diagram.KindMap:
		m, _ := v.AsMap()
		return fmt.Sprintf("{%d}", len(m))
	}
	return "null"
}
