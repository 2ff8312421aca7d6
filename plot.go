package df

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/stat"
)

const (
	minPlotSize = 50
	dotWidth    = 3
	lineWidth   = 2
)

// Plot accumulates series and renders them to a PNG.
type Plot struct {
	title  string
	xLabel string
	yLabel string
	width  int
	height int
	legend bool

	series []chart.Series
}

type PlotOpt func(p *Plot) error

func NewPlot(opts ...PlotOpt) (*Plot, error) {
	p := &Plot{width: chart.DefaultChartWidth, height: chart.DefaultChartHeight}
	for _, opt := range opts {
		if e := opt(p); e != nil {
			return nil, e
		}
	}

	return p, nil
}

// *********** Setters ***********

func PlotHeight(h int) PlotOpt {
	return func(p *Plot) error {
		if h < minPlotSize {
			return fmt.Errorf("plot height must be at least %d, got %d", minPlotSize, h)
		}

		p.height = h
		return nil
	}
}

func PlotLegend(show bool) PlotOpt {
	return func(p *Plot) error {
		p.legend = show
		return nil
	}
}

func PlotTitle(title string) PlotOpt {
	return func(p *Plot) error {
		p.title = title
		return nil
	}
}

func PlotWidth(w int) PlotOpt {
	return func(p *Plot) error {
		if w < minPlotSize {
			return fmt.Errorf("plot width must be at least %d, got %d", minPlotSize, w)
		}

		p.width = w
		return nil
	}
}

func PlotXlabel(label string) PlotOpt {
	return func(p *Plot) error {
		p.xLabel = label
		return nil
	}
}

func PlotYlabel(label string) PlotOpt {
	return func(p *Plot) error {
		p.yLabel = label
		return nil
	}
}

// *********** Methods ***********

// Scatter adds x,y as points. Pairs with a non-finite coordinate are skipped.
func (p *Plot) Scatter(x, y []float64, seriesName, color string) error {
	var (
		col    drawing.Color
		xs, ys []float64
		e      error
	)
	if col, e = parseColor(color); e != nil {
		return e
	}

	if xs, ys, e = finitePairs(x, y); e != nil {
		return e
	}

	p.series = append(p.series, chart.ContinuousSeries{
		Name:    seriesName,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: dotWidth, DotColor: col},
	})

	return nil
}

// Line adds x,y as a line, ordered by x.
func (p *Plot) Line(x, y []float64, seriesName, color string) error {
	var (
		col    drawing.Color
		xs, ys []float64
		e      error
	)
	if col, e = parseColor(color); e != nil {
		return e
	}

	if xs, ys, e = finitePairs(x, y); e != nil {
		return e
	}

	ord := make([]int, len(xs))
	for ind := range ord {
		ord[ind] = ind
	}

	sort.SliceStable(ord, func(i, j int) bool { return xs[ord[i]] < xs[ord[j]] })
	xSorted, ySorted := make([]float64, len(xs)), make([]float64, len(xs))
	for ind, o := range ord {
		xSorted[ind], ySorted[ind] = xs[o], ys[o]
	}

	p.series = append(p.series, chart.ContinuousSeries{
		Name:    seriesName,
		XValues: xSorted,
		YValues: ySorted,
		Style:   chart.Style{StrokeWidth: lineWidth, StrokeColor: col},
	})

	return nil
}

// ScatterTrend adds x,y as points plus their least-squares line and returns the line's slope and intercept.
func (p *Plot) ScatterTrend(x, y []float64, seriesName, pointColor, lineColor string) (slope, intercept float64, err error) {
	if slope, intercept, err = TrendLine(x, y); err != nil {
		return 0, 0, err
	}

	if e := p.Scatter(x, y, seriesName, pointColor); e != nil {
		return 0, 0, e
	}

	fit := make([]float64, len(x))
	for ind, xv := range x {
		fit[ind] = intercept + slope*xv
	}

	if e := p.Line(x, fit, "fit", lineColor); e != nil {
		return 0, 0, e
	}

	return slope, intercept, nil
}

func (p *Plot) Chart() chart.Chart {
	graph := chart.Chart{
		Title:  p.title,
		Width:  p.width,
		Height: p.height,
		XAxis:  chart.XAxis{Name: p.xLabel},
		YAxis:  chart.YAxis{Name: p.yLabel},
		Series: p.series,
	}

	if p.legend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	return graph
}

// Render writes the plot as a PNG to w.
func (p *Plot) Render(w io.Writer) error {
	if len(p.series) == 0 {
		return fmt.Errorf("nothing to plot")
	}

	graph := p.Chart()

	return graph.Render(chart.PNG, w)
}

// Save renders the plot to fileName as a PNG, creating the directory if needed.
func (p *Plot) Save(fileName string) error {
	if dir := filepath.Dir(fileName); dir != "" {
		if e := os.MkdirAll(dir, 0o755); e != nil {
			return e
		}
	}

	f, e := os.Create(fileName)
	if e != nil {
		return e
	}

	if ex := p.Render(f); ex != nil {
		_ = f.Close()
		return ex
	}

	return f.Close()
}

// *********** Trend ***********

// TrendLine fits y = intercept + slope*x by least squares, the degree-1 polynomial fit.
func TrendLine(x, y []float64) (slope, intercept float64, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("x has %d values, y has %d", len(x), len(y))
	}

	if len(x) < 2 {
		return 0, 0, fmt.Errorf("need at least 2 points for a trend line")
	}

	for ind := range x {
		if !finite(x[ind]) || !finite(y[ind]) {
			return 0, 0, fmt.Errorf("non-finite value at row %d", ind)
		}
	}

	if stat.Variance(x, nil) == 0 {
		return 0, 0, fmt.Errorf("x has no variation")
	}

	intercept, slope = stat.LinearRegression(x, y, nil, false)

	return slope, intercept, nil
}

// *********** Helpers ***********

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func finitePairs(x, y []float64) (xs, ys []float64, err error) {
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("x has %d values, y has %d", len(x), len(y))
	}

	for ind := range x {
		if finite(x[ind]) && finite(y[ind]) {
			xs = append(xs, x[ind])
			ys = append(ys, y[ind])
		}
	}

	if len(xs) == 0 {
		return nil, nil, fmt.Errorf("no finite points to plot")
	}

	return xs, ys, nil
}

func parseColor(name string) (drawing.Color, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return drawing.ColorFromHex("1f77b4"), nil
	case "blue":
		return drawing.ColorBlue, nil
	case "red":
		return drawing.ColorRed, nil
	case "green":
		return drawing.ColorGreen, nil
	case "black":
		return drawing.ColorBlack, nil
	}

	if hex := strings.TrimPrefix(name, "#"); len(hex) == 6 && hex != name {
		return drawing.ColorFromHex(hex), nil
	}

	return drawing.Color{}, fmt.Errorf("unknown color %s", name)
}
