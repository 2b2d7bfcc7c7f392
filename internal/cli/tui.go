package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cubeskin/pkg/blocks"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// MergeModeModel - Interactive merge mode selection
// =============================================================================

// MergeModeModel is the bubbletea model for choosing how the pack's own
// blocks.json and the reference table combine.
type MergeModeModel struct {
	Modes     []blocks.MergeMode
	Cursor    int
	Selected  blocks.MergeMode
	Resource  int // entries in the pack's table
	Reference int // entries in the reference table
}

// NewMergeModeModel creates a new merge mode model.
func NewMergeModeModel(resource, reference int) MergeModeModel {
	return MergeModeModel{
		Modes:     blocks.MergeModes,
		Resource:  resource,
		Reference: reference,
	}
}

func (m MergeModeModel) Init() tea.Cmd {
	return nil
}

func (m MergeModeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Modes)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Modes[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MergeModeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Block Definitions"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf(
		"The pack has its own blocks.json (%d blocks) and a reference table is available (%d blocks).",
		m.Resource, m.Reference)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, mode := range m.Modes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-10s %s", cursor, mode, listDimStyle.Render(mode.Description()))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================
// Block table
// =============================================================================

// blockRow is one line of the blocks command output.
type blockRow struct {
	Key    string
	Faces  string // "top, bottom, side" summary, or empty
	Status string // "ok" or a skip reason
	Detail string
	Swatch string // "#rrggbb", or empty
}

// renderBlockTable renders rows as a bordered table. Skipped rows are dimmed.
func renderBlockTable(rows []blockRow) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Key, r.Faces, r.Status, r.Detail, swatch(r.Swatch)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Block", "Faces", "Status", "Detail", "").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			if rows[row].Status != statusOK {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle()
		})

	return t.Render()
}

// swatch renders a two-cell colour chip. An empty hex renders nothing.
func swatch(hex string) string {
	if hex == "" {
		return ""
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}
