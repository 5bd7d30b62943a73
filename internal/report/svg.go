package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/sanspareilsmyn/powerlens/internal/pipeline"
)

const (
	barHeight   = 22
	barLeftPad  = 10
	barRightPad = 10
)

// BarChartSVG renders one horizontal bar per value. Bar widths are relative to
// the largest value; a non-positive maximum is treated as 1. Value labels sit
// inside bars that fill at least 75% of the width, otherwise just after the bar,
// clamped to the right edge.
func BarChartSVG(values []float64, labels []string, width int) string {
	n := len(values)
	chartH := n*barHeight + 10
	maxV := 1.0
	if n > 0 {
		maxV = values[0]
		for _, v := range values[1:] {
			maxV = max(maxV, v)
		}
		if maxV <= 0 {
			maxV = 1.0
		}
	}
	innerW := width - barLeftPad - barRightPad

	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, width, chartH)
	y := 5
	for i, val := range values {
		barW := int(float64(innerW) * (val / maxV))
		label := ""
		if i < len(labels) {
			label = html.EscapeString(labels[i])
		}
		textY := y + barHeight - 8
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="#4a90e2" rx="3" />`, barLeftPad, y, barW, barHeight-4)
		fmt.Fprintf(&b, `<text x="%d" y="%d" fill="#fff" font-size="12">%s</text>`, barLeftPad+6, textY, label)

		valText := pipeline.Fixed3(val)
		switch {
		case float64(barW) >= float64(innerW)*0.75:
			fmt.Fprintf(&b, `<text x="%d" y="%d" fill="#fff" font-size="12" text-anchor="end">%s</text>`, barLeftPad+barW-6, textY, valText)
		case barLeftPad+barW+6 <= width-barRightPad-4:
			fmt.Fprintf(&b, `<text x="%d" y="%d" fill="#333" font-size="12" text-anchor="start">%s</text>`, barLeftPad+barW+6, textY, valText)
		default:
			fmt.Fprintf(&b, `<text x="%d" y="%d" fill="#333" font-size="12" text-anchor="end">%s</text>`, width-barRightPad-4, textY, valText)
		}
		y += barHeight
	}
	b.WriteString(`</svg>`)
	return b.String()
}
