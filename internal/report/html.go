package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sanspareilsmyn/powerlens/internal/compare"
	"github.com/sanspareilsmyn/powerlens/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// SeriesEntry is one rail's power points for the chart.
type SeriesEntry struct {
	Label  string                `json:"label"`
	Points []pipeline.PowerPoint `json:"points"`
}

// ViolationView is a budget violation formatted for display.
type ViolationView struct {
	Rail   string
	Check  string
	Actual string
	Limit  string
}

type traceDocument struct {
	Trace       string
	GeneratedAt string
	Battery     []pipeline.BatteryRecord
	Totals      pipeline.TotalsRecord
	Rails       []pipeline.RailRecord
	Frequency   []pipeline.FrequencyRecord
	Series      []SeriesEntry
	Violations  []ViolationView
}

// RenderHTML writes the single-trace report. Rails appear in result order
// (highest average power first) below the totals row; the chart omits rails
// without points.
func RenderHTML(w io.Writer, res *pipeline.Result, generatedAt time.Time) error {
	doc := traceDocument{
		Trace:       res.Trace,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Totals:      res.Totals.Record(),
		Series:      []SeriesEntry{},
	}
	for _, b := range res.Battery {
		doc.Battery = append(doc.Battery, b.Record())
	}
	for _, r := range res.Rails {
		rec := r.Record()
		doc.Rails = append(doc.Rails, rec)
		if len(rec.SeriesPoints) > 0 {
			doc.Series = append(doc.Series, SeriesEntry{Label: rec.Label, Points: rec.SeriesPoints})
		}
	}
	for _, f := range res.Frequency {
		doc.Frequency = append(doc.Frequency, f.Record())
	}
	for _, v := range res.Violations {
		doc.Violations = append(doc.Violations, ViolationView{
			Rail:   v.Rail,
			Check:  v.Check,
			Actual: pipeline.Fixed3(v.Actual),
			Limit:  pipeline.Fixed3(v.Limit),
		})
	}

	if err := templates.ExecuteTemplate(w, "report.html", doc); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return nil
}

type compareRow struct {
	Rail   string
	Values []string
	Chart  template.HTML
}

type compareDocument struct {
	Metric      string
	TraceLabels []string
	Totals      []string
	Rows        []compareRow
}

// RenderCompareHTML writes the cross-trace report for metric: a totals row per
// trace, then rails ranked by their peak value, each with a bar chart.
func RenderCompareHTML(w io.Writer, m *compare.Matrix, metric string) error {
	ranked, err := m.Rank(metric)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	totals, err := m.Totals(metric)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	doc := compareDocument{Metric: metric, TraceLabels: m.TraceLabels}
	for _, l := range m.TraceLabels {
		doc.Totals = append(doc.Totals, pipeline.Fixed3(totals[l]))
	}
	for _, r := range ranked {
		values := m.Values(r.Rail, metric)
		row := compareRow{Rail: r.Rail}
		for _, v := range values {
			row.Values = append(row.Values, pipeline.Fixed3(v))
		}
		// BarChartSVG escapes every label it embeds.
		row.Chart = template.HTML(BarChartSVG(values, m.TraceLabels, 760))
		doc.Rows = append(doc.Rows, row)
	}

	if err := templates.ExecuteTemplate(w, "compare.html", doc); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return nil
}

// WriteFile creates path (and its directory) and fills it with render.
func WriteFile(path string, render func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWriteFailed, cerr)
		}
	}()
	return render(f)
}
