package df

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendLine(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{3, 5, 7, 9, 11}

	slope, intercept, e := TrendLine(x, y)
	assert.Nil(t, e)
	assert.InDelta(t, 2, slope, 1e-12)
	assert.InDelta(t, 1, intercept, 1e-12)

	// closed form: slope = cov(x,y)/var(x)
	y = []float64{2, 1, 4, 3, 7}
	slope, intercept, e = TrendLine(x, y)
	assert.Nil(t, e)
	assert.InDelta(t, 1.2, slope, 1e-12)
	assert.InDelta(t, -0.2, intercept, 1e-12)

	_, _, e = TrendLine(x, y[:4])
	assert.NotNil(t, e)
	_, _, e = TrendLine(x[:1], y[:1])
	assert.NotNil(t, e)
	_, _, e = TrendLine([]float64{2, 2, 2}, []float64{1, 2, 3})
	assert.NotNil(t, e)
	_, _, e = TrendLine([]float64{1, math.NaN(), 3}, []float64{1, 2, 3})
	assert.NotNil(t, e)
}

func TestPlot(t *testing.T) {
	p, e := NewPlot(PlotTitle("wages"), PlotXlabel("Employment"), PlotYlabel("Wages"), PlotWidth(400), PlotHeight(300))
	require.Nil(t, e)

	var buf bytes.Buffer
	assert.NotNil(t, p.Render(&buf))

	x := []float64{1, 2, 3, 4, 5, math.NaN()}
	y := []float64{2, 1, 4, 3, 7, 1}
	slope, intercept, e := p.ScatterTrend(x[:5], y[:5], "WAGE", "blue", "red")
	assert.Nil(t, e)
	assert.InDelta(t, 1.2, slope, 1e-12)
	assert.InDelta(t, -0.2, intercept, 1e-12)

	assert.Nil(t, p.Scatter(x, y, "with missing", "#00ff00"))
	assert.NotNil(t, p.Line(x, y, "bad color", "mauve"))

	path := filepath.Join(t.TempDir(), "out", "pl1.png")
	require.Nil(t, p.Save(path))

	f, e := os.Open(path)
	require.Nil(t, e)
	defer func() { _ = f.Close() }()

	cfg, e := png.DecodeConfig(f)
	require.Nil(t, e)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestPlot_Options(t *testing.T) {
	_, e := NewPlot(PlotHeight(10))
	assert.NotNil(t, e)
	_, e = NewPlot(PlotWidth(49))
	assert.NotNil(t, e)

	p, e := NewPlot(PlotLegend(true))
	require.Nil(t, e)
	assert.Nil(t, p.Line([]float64{3, 1, 2}, []float64{1, 2, 3}, "line", ""))
	assert.Equal(t, 1, len(p.Chart().Elements))
}
