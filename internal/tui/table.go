package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/registry"
)

// Columns are the headings of the variable table.
var Columns = []string{"name", "vr", "type", "causality", "variability", "initial", "unit", "start", "description"}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// VariableRows flattens vars into table rows in Columns order.
func VariableRows(vars []*registry.Variable) [][]string {
	rows := make([][]string, len(vars))
	for i, v := range vars {
		start := ""
		if s, ok := v.Start(); ok {
			start = s.String()
		}
		rows[i] = []string{
			v.Name(),
			fmt.Sprint(v.Reference()),
			v.Type().String(),
			v.Causality().String(),
			v.Variability().String(),
			v.Initial().String(),
			v.Unit(),
			start,
			v.Description(),
		}
	}
	return rows
}

// FilterCausality keeps the variables with the given causality.
func FilterCausality(vars []*registry.Variable, c fmi.Causality) []*registry.Variable {
	out := make([]*registry.Variable, 0, len(vars))
	for _, v := range vars {
		if v.Causality() == c {
			out = append(out, v)
		}
	}
	return out
}

// WriteTable prints vars as an aligned table. With styled set the header
// and causality column are coloured.
func WriteTable(w io.Writer, vars []*registry.Variable, styled bool) error {
	rows := VariableRows(vars)
	widths := make([]int, len(Columns))
	for i, c := range Columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	pad := func(s string, n int) string {
		return s + strings.Repeat(" ", n-lipgloss.Width(s))
	}
	line := func(cells []string, style func(col int, s string) string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style(i, pad(cell, widths[i]))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}
	plain := func(_ int, s string) string { return s }

	header, body := plain, plain
	if styled {
		header = func(_ int, s string) string { return cyan.Render(s) }
		body = func(col int, s string) string {
			switch Columns[col] {
			case "causality":
				return causalityStyle(strings.TrimSpace(s)).Render(s)
			case "name":
				return white.Render(s)
			default:
				return dim.Render(s)
			}
		}
	}

	var b strings.Builder
	b.WriteString(line(Columns, header) + "\n")
	for _, row := range rows {
		b.WriteString(line(row, body) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
