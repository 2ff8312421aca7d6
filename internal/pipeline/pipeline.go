// Package pipeline runs the wage/employment analysis end to end: load the panel, describe it, plot wages
// against employment and estimate and report four fixed-effects specifications.
package pipeline

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	d "github.com/invertedv/panelfe"
	"github.com/invertedv/panelfe/etable"
	"github.com/invertedv/panelfe/fe"
	"github.com/invertedv/panelfe/internal/config"
	"github.com/invertedv/panelfe/mem"
	"go.uber.org/zap"
)

// Estimation is one named specification and its fitted models.
type Estimation struct {
	Name string
	Fit  *fe.Fixest
}

// Run executes the whole pipeline, writing the overview and tables to w.
func Run(cfg *config.Config, logger *zap.Logger, w io.Writer) error {
	var (
		data *mem.DF
		e    error
	)
	if data, e = Load(cfg.Source, cfg.Columns, logger); e != nil {
		return e
	}

	if e = Describe(data, w); e != nil {
		return e
	}

	var slope, intercept float64
	if slope, intercept, e = Plot(data, cfg.Plot); e != nil {
		return fmt.Errorf("plot: %w", e)
	}

	logger.Info("saved plot", zap.String("path", cfg.Plot.Path), zap.Float64("slope", slope), zap.Float64("intercept", intercept))

	var ests []Estimation
	if ests, e = Estimate(data, cfg.Model, logger); e != nil {
		return e
	}

	return Report(ests, cfg.Report, w)
}

// Describe writes the head of data and its summary statistics.
func Describe(data *mem.DF, w io.Writer) error {
	var (
		desc *mem.DF
		e    error
	)
	if desc, e = data.Describe(); e != nil {
		return e
	}

	heading(w, "Data overview")
	if _, e = fmt.Fprintln(w, data); e != nil {
		return e
	}

	heading(w, "Summary statistics")
	_, e = fmt.Fprintln(w, desc)

	return e
}

// Plot draws the scatter of cfg.Y on cfg.X with its least-squares line and saves it to cfg.Path.
func Plot(data *mem.DF, cfg config.PlotConfig) (slope, intercept float64, err error) {
	var x, y []float64
	for _, c := range []struct {
		name string
		out  *[]float64
	}{{cfg.X, &x}, {cfg.Y, &y}} {
		col := data.Column(c.name)
		if col == nil {
			return 0, 0, fmt.Errorf("column %s not found", c.name)
		}

		if *c.out, err = col.AsFloat(); err != nil {
			return 0, 0, err
		}
	}

	var p *d.Plot
	if p, err = d.NewPlot(d.PlotTitle(cfg.Title), d.PlotXlabel(cfg.XLabel), d.PlotYlabel(cfg.YLabel),
		d.PlotWidth(cfg.Width), d.PlotHeight(cfg.Height)); err != nil {
		return 0, 0, err
	}

	if slope, intercept, err = p.ScatterTrend(x, y, cfg.Y, cfg.PointColor, cfg.LineColor); err != nil {
		return 0, 0, err
	}

	if err = p.Save(cfg.Path); err != nil {
		return 0, 0, err
	}

	return slope, intercept, nil
}

// Estimate fits the baseline formula, its stepwise variant, the baseline split by cfg.Split and the
// baseline on the rows satisfying cfg.Sample. Empty Stepwise, Split or Sample skip that specification.
func Estimate(data *mem.DF, cfg config.ModelConfig, logger *zap.Logger) ([]Estimation, error) {
	opts := []fe.Opt{
		fe.WithTol(cfg.Tol),
		fe.WithMaxIter(cfg.MaxIter),
		fe.WithSSC(fe.SSC{Adj: true, FixefK: cfg.FixefK, ClusterAdj: true}),
		fe.WithLogger(logger),
	}

	if cfg.Vcov != "" {
		v, e := fe.ParseVcov(cfg.Vcov)
		if e != nil {
			return nil, e
		}

		opts = append(opts, fe.WithVcov(v))
	}

	type run struct {
		name string
		fml  string
		data func() (*mem.DF, error)
		opts []fe.Opt
	}

	full := func() (*mem.DF, error) { return data, nil }
	runs := []run{{name: "Baseline", fml: cfg.Formula, data: full}}

	if cfg.Stepwise != "" {
		runs = append(runs, run{name: "Fixed effects specifications", fml: cfg.Stepwise, data: full})
	}

	if cfg.Split != "" {
		runs = append(runs, run{name: "Heterogeneity by " + cfg.Split, fml: cfg.Formula, data: full,
			opts: []fe.Opt{fe.WithSplit(cfg.Split)}})
	}

	if cfg.Sample != "" {
		runs = append(runs, run{name: "Sample " + cfg.Sample, fml: cfg.Formula,
			data: func() (*mem.DF, error) { return data.Query(cfg.Sample) }})
	}

	var ests []Estimation
	for _, s := range runs {
		var (
			sample *mem.DF
			fit    *fe.Fixest
			e      error
		)
		if sample, e = s.data(); e != nil {
			return nil, fmt.Errorf("%s: %w", s.name, e)
		}

		if fit, e = fe.Feols(sample, s.fml, append(append([]fe.Opt{}, opts...), s.opts...)...); e != nil {
			return nil, fmt.Errorf("%s: %w", s.name, e)
		}

		logger.Info("estimated", zap.String("specification", s.name), zap.Int("models", fit.Len()), zap.Int("rows", sample.RowCount()))
		ests = append(ests, Estimation{Name: s.name, Fit: fit})
	}

	return ests, nil
}

// Report writes one regression table per estimation, preceded by the summary of the first when cfg.Summary.
func Report(ests []Estimation, cfg config.ReportConfig, w io.Writer) error {
	var (
		format etable.Format
		e      error
	)
	if format, e = etable.ParseFormat(cfg.Format); e != nil {
		return e
	}

	opts := []etable.Opt{
		etable.SignifCodes(cfg.SignifCodes),
		etable.Labels(cfg.Labels),
		etable.ShowSEType(cfg.ShowSEType),
		etable.Digits(cfg.Digits),
	}

	for ind, est := range ests {
		if ind == 0 && cfg.Summary {
			heading(w, est.Name+": summary")
			if e = etable.Summary(w, est.Fit.Models(), format, opts...); e != nil {
				return e
			}
		}

		var t *etable.Table
		if t, e = etable.New(est.Fit.Models(), opts...); e != nil {
			return fmt.Errorf("%s: %w", est.Name, e)
		}

		heading(w, est.Name)
		if e = t.Render(w, format); e != nil {
			return e
		}
	}

	return nil
}

func heading(w io.Writer, title string) {
	_, _ = color.New(color.FgCyan, color.Bold).Fprintf(w, "\n%s\n\n", title)
}
