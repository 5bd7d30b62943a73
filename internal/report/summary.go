package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sanspareilsmyn/powerlens/internal/pipeline"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")).MarginBottom(1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd700")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	totalsStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87d7af")).Padding(0, 1)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

// Summary renders the rail table of a result for the terminal: the totals row
// first, then rails by average power. Budget violations follow the table.
func Summary(res *pipeline.Result) string {
	totals := res.Totals.Record()
	rows := [][]string{{"Total", totals.Duration, totals.AvgPower, totals.TotalEnergy}}
	for _, r := range res.Rails {
		rec := r.Record()
		rows = append(rows, []string{rec.Label, rec.Duration, rec.AvgPower, rec.TotalPower})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Rail", "Duration", "Avg power (mW)", "Energy (mJ)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return headerStyle
			case 0:
				return totalsStyle
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render("Power rails: " + res.Trace))
	b.WriteString("\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	for _, v := range res.Violations {
		b.WriteString(warningStyle.Render("budget exceeded: " + v.Rail + " " + v.Check +
			" " + pipeline.Fixed3(v.Actual) + " > " + pipeline.Fixed3(v.Limit)))
		b.WriteString("\n")
	}
	return b.String()
}
