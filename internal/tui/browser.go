package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fmukit/internal/depgraph"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/registry"
)

type filter struct {
	label     string
	causality fmi.Causality
	all       bool
}

var filters = []filter{
	{label: "all", all: true},
	{label: "parameter", causality: fmi.Parameter},
	{label: "input", causality: fmi.Input},
	{label: "output", causality: fmi.Output},
	{label: "local", causality: fmi.Local},
}

// browserColumns is the subset of Columns shown in the interactive table.
var browserColumns = []table.Column{
	{Title: "name", Width: 16},
	{Title: "vr", Width: 4},
	{Title: "type", Width: 8},
	{Title: "causality", Width: 11},
	{Title: "variability", Width: 11},
	{Title: "unit", Width: 7},
	{Title: "start", Width: 10},
}

// Browser is a bubbletea model listing the variables of one instance. Tab
// cycles the causality filter; enter shows the selected variable in full.
type Browser struct {
	title string
	all   []*registry.Variable
	shown []*registry.Variable
	graph *depgraph.Graph

	filter     int
	table      table.Model
	detail     viewport.Model
	showDetail bool

	width  int
	height int
}

func NewBrowser(title string, vars []*registry.Variable, graph *depgraph.Graph) Browser {
	t := table.New(
		table.WithColumns(browserColumns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Foreground(lipgloss.Color("86")).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238"))
	t.SetStyles(s)

	b := Browser{
		title:  title,
		all:    vars,
		graph:  graph,
		table:  t,
		detail: viewport.New(60, 12),
		width:  80,
		height: 24,
	}
	b.applyFilter()
	return b
}

func (b *Browser) applyFilter() {
	f := filters[b.filter]
	if f.all {
		b.shown = b.all
	} else {
		b.shown = FilterCausality(b.all, f.causality)
	}

	rows := make([]table.Row, len(b.shown))
	for i, r := range VariableRows(b.shown) {
		// name vr type causality variability unit start
		rows[i] = table.Row{r[0], r[1], r[2], r[3], r[4], r[6], r[7]}
	}
	b.table.SetRows(rows)
	b.table.SetCursor(0)
}

// Selected returns the variable under the cursor.
func (b Browser) Selected() (*registry.Variable, bool) {
	i := b.table.Cursor()
	if i < 0 || i >= len(b.shown) {
		return nil, false
	}
	return b.shown[i], true
}

// Shown returns the number of variables passing the current filter.
func (b Browser) Shown() int { return len(b.shown) }

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.table.SetHeight(max(msg.Height-8, 3))
		b.detail.Width = max(msg.Width-4, 20)
		b.detail.Height = max(msg.Height-6, 3)
		return b, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return b, tea.Quit
		case "esc":
			if b.showDetail {
				b.showDetail = false
				return b, nil
			}
			return b, tea.Quit
		case "tab":
			if !b.showDetail {
				b.filter = (b.filter + 1) % len(filters)
				b.applyFilter()
			}
			return b, nil
		case "enter":
			if v, ok := b.Selected(); ok && !b.showDetail {
				b.detail.SetContent(b.describe(v))
				b.detail.GotoTop()
				b.showDetail = true
			} else {
				b.showDetail = false
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	if b.showDetail {
		b.detail, cmd = b.detail.Update(msg)
	} else {
		b.table, cmd = b.table.Update(msg)
	}
	return b, cmd
}

func (b Browser) describe(v *registry.Variable) string {
	var s strings.Builder
	field := func(k, val string) {
		if val == "" {
			return
		}
		s.WriteString(dim.Render(fmt.Sprintf("%-14s", k)) + white.Render(val) + "\n")
	}

	s.WriteString(cyan.Render(v.Name()) + "\n\n")
	field("description", v.Description())
	field("reference", fmt.Sprint(v.Reference()))
	field("type", v.Type().String())
	field("causality", v.Causality().String())
	field("variability", v.Variability().String())
	field("initial", v.Initial().String())
	field("unit", v.Unit())
	if start, ok := v.Start(); ok {
		field("start", start.String())
	}
	field("value", v.Current().String())

	if b.graph != nil {
		if state, ok := b.graph.StateOf(v.Name()); ok {
			field("derivative of", state)
		}
		if deps, ok := b.graph.DependenciesOf(v.Name()); ok {
			list := strings.Join(deps, ", ")
			if list == "" {
				list = "(none)"
			}
			field("dependencies", list)
		}
	}
	return s.String()
}

func (b Browser) View() string {
	var s strings.Builder

	s.WriteString("\n  " + cyan.Render(b.title) + "  ")
	for i, f := range filters {
		if i == b.filter {
			s.WriteString(magenta.Render("[" + f.label + "]"))
		} else {
			s.WriteString(dimmer.Render(" " + f.label + " "))
		}
	}
	s.WriteString("\n\n")

	if b.showDetail {
		s.WriteString(b.detail.View() + "\n\n")
		s.WriteString(dim.Render("  ↑↓ scroll   esc back   q quit") + "\n")
		return s.String()
	}

	s.WriteString(b.table.View() + "\n\n")
	s.WriteString(dim.Render(fmt.Sprintf("  %d variables   ↑↓ select   tab filter   enter details   q quit", len(b.shown))) + "\n")
	return s.String()
}

// RunBrowser starts b full screen and blocks until the user quits.
func RunBrowser(b Browser) error {
	p := tea.NewProgram(b, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
