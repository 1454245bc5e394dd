package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/pathcoef/internal/ksweep"
)

const (
	plotHeight = 12
	plotWidth  = 72
)

// Explorer is an interactive view over a k-sweep table: one predictor's
// curve at a time, with a movable cursor along the k grid showing every
// predictor's direct effect at that correction.
type Explorer struct {
	table    *ksweep.Table
	selected int
	cursor   int
}

func NewExplorer(t *ksweep.Table) Explorer {
	return Explorer{table: t}
}

func (m Explorer) Init() tea.Cmd { return nil }

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.selected = (m.selected + len(m.table.Predictors) - 1) % len(m.table.Predictors)
	case "right", "l":
		m.selected = (m.selected + 1) % len(m.table.Predictors)
	case "up", "k":
		if m.cursor < len(m.table.Points)-1 {
			m.cursor++
		}
	case "down", "j":
		if m.cursor > 0 {
			m.cursor--
		}
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = len(m.table.Points) - 1
	}
	return m, nil
}

func (m Explorer) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("k-sweep explorer"))
	sb.WriteString("\n")
	sb.WriteString(graphStyle.Render(seriesPlot(m.table, m.selected, plotHeight, plotWidth)))
	sb.WriteString("\n\n")

	point := m.table.Points[m.cursor]
	sb.WriteString(labelStyle.Render("cursor k"))
	sb.WriteString(valueStyle.Render(fmt.Sprintf("%.4f", point.K)))
	sb.WriteString("\n")
	for i, name := range m.table.Predictors {
		line := labelStyle.Render(name)
		val := point.Direct[i]
		switch {
		case math.IsNaN(val):
			line += warnStyle.Render("unsolvable")
		case i == m.selected:
			line += activeStyle.Render(fmt.Sprintf("%+.4f", val))
		default:
			line += valueStyle.Render(fmt.Sprintf("%+.4f", val))
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("←/→ predictor · ↑/↓ move cursor along k · q quit"))
	return sb.String()
}

// RunExplorer blocks until the user quits the interactive view.
func RunExplorer(t *ksweep.Table) error {
	_, err := tea.NewProgram(NewExplorer(t), tea.WithAltScreen()).Run()
	return err
}
