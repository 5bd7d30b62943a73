package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBarChartSVG(t *testing.T) {
	svg := BarChartSVG([]float64{5, 3}, []string{"idle", "<game>"}, 200)

	assert.True(t, strings.HasPrefix(svg, `<svg width="200" height="54"`))
	assert.True(t, strings.HasSuffix(svg, `</svg>`))
	assert.Equal(t, 2, strings.Count(svg, "<rect "))
	assert.Contains(t, svg, `width="180" height="18"`)
	assert.Contains(t, svg, `width="108" height="18"`)
	assert.Contains(t, svg, `text-anchor="end">5.000</text>`)
	assert.Contains(t, svg, `x="124" y="41" fill="#333" font-size="12" text-anchor="start">3.000</text>`)
	assert.Contains(t, svg, "&lt;game&gt;")
	assert.NotContains(t, svg, "<game>")
}

func TestBarChartSVGNonPositiveMax(t *testing.T) {
	svg := BarChartSVG([]float64{0, -2}, []string{"a", "b"}, 200)

	assert.Contains(t, svg, `width="0" height="18"`)
	assert.Contains(t, svg, ">0.000</text>")
	assert.Contains(t, svg, ">-2.000</text>")
}

func TestBarChartSVGEmpty(t *testing.T) {
	assert.Equal(t, `<svg width="100" height="10" xmlns="http://www.w3.org/2000/svg"></svg>`, BarChartSVG(nil, nil, 100))
}
