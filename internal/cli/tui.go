package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/guregu/null.v3"

	"github.com/matzehuels/heatposter/pkg/stats"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabNormalStyle  = lipgloss.NewStyle().Foreground(colorGray)
	tableHeadStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// statsHeaders are the columns of a statistics table.
var statsHeaders = []string{"Year", "Total", "Days", "Average", "Std Dev", "Max", "Min", "Longest", "Current"}

// =============================================================================
// StatsModel - Interactive statistics browser
// =============================================================================

// StatsModel is the bubbletea model for browsing per-year statistics of
// several types.
type StatsModel struct {
	Types  []string
	Tables map[string]stats.Table
	Unit   string

	TypeIdx int
	Cursor  int
	Height  int
	Offset  int
}

// NewStatsModel creates a browser over tables, showing types in order.
func NewStatsModel(types []string, tables map[string]stats.Table, unit string) StatsModel {
	return StatsModel{
		Types:  types,
		Tables: tables,
		Unit:   unit,
		Height: 15,
	}
}

func (m StatsModel) Init() tea.Cmd {
	return nil
}

func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.years())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "right", "l", "tab":
			if len(m.Types) > 0 {
				m.TypeIdx = (m.TypeIdx + 1) % len(m.Types)
				m.clampCursor()
			}
		case "left", "h", "shift+tab":
			if len(m.Types) > 0 {
				m.TypeIdx = (m.TypeIdx - 1 + len(m.Types)) % len(m.Types)
				m.clampCursor()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m StatsModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Statistics"))
	if m.Unit != "" {
		b.WriteString(listDimStyle.Render(" (" + m.Unit + ")"))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ type  ↑/↓ year  q quit"))
	b.WriteString("\n\n")

	tabs := make([]string, len(m.Types))
	for i, typ := range m.Types {
		if i == m.TypeIdx {
			tabs[i] = tabActiveStyle.Render(typ)
		} else {
			tabs[i] = tabNormalStyle.Render(typ)
		}
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n")

	years := m.years()
	if len(years) == 0 {
		b.WriteString(listDimStyle.Render("  no data"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(years))
	t := m.Tables[m.currentType()]
	rows := make([]stats.YearStatistics, 0, end-m.Offset)
	for _, y := range years[m.Offset:end] {
		rows = append(rows, t[y])
	}
	b.WriteString(statsTable(rows, m.Cursor-m.Offset).Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  total %s", m.Cursor+1, len(years), formatValue(t.Total()))))

	return b.String()
}

func (m StatsModel) currentType() string {
	if len(m.Types) == 0 {
		return ""
	}
	return m.Types[m.TypeIdx]
}

func (m StatsModel) years() []int {
	return m.Tables[m.currentType()].Years()
}

func (m *StatsModel) clampCursor() {
	n := len(m.years())
	if m.Cursor >= n {
		m.Cursor = max(n-1, 0)
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

// =============================================================================
// Table Rendering
// =============================================================================

// statsTable renders rows as a table. The row at cursor is highlighted;
// pass -1 for none. Years without active days are dimmed.
func statsTable(rows []stats.YearStatistics, cursor int) *table.Table {
	data := make([][]string, len(rows))
	for i, s := range rows {
		data[i] = []string{
			strconv.Itoa(s.Year),
			formatValue(s.Total),
			strconv.Itoa(s.Count),
			formatValue(s.Average),
			formatValue(s.StandardDeviation),
			formatNull(s.Max),
			formatNull(s.Min),
			strconv.Itoa(s.LongestStreak),
			strconv.Itoa(s.CurrentStreak),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(statsHeaders...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeadStyle
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col > 0 {
				base = base.Align(lipgloss.Right)
			}
			switch {
			case row == cursor:
				return base.Foreground(colorGreen).Bold(true)
			case !rows[row].HasData():
				return base.Inherit(tableEmptyStyle)
			}
			return base.Foreground(colorWhite)
		})
}

// formatValue prints v without trailing zeros.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatNull prints a nullable value, or a dash when it is null.
func formatNull(v null.Float) string {
	if !v.Valid {
		return "—"
	}
	return formatValue(v.Float64)
}
