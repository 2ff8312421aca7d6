// Package fe estimates linear models with high-dimensional fixed effects.
//
// Fixed effects are absorbed by alternating projections rather than estimated as dummies, so only the
// coefficients of the covariates are reported. A formula may expand to several models through the
// sw, sw0, csw and csw0 operators and a sample may be split by a column; the result is a Fixest
// holding every model.
package fe

import (
	"fmt"
	"math"

	"github.com/invertedv/panelfe/mem"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultTol       = 1e-8
	DefaultMaxIter   = 100000
	DefaultCollinTol = 1e-10

	// Intercept is the name of the constant term, added only to models without fixed effects.
	Intercept = "Intercept"
)

// Fixest holds the models of one call to Feols in estimation order: samples outer, formulas inner.
type Fixest struct {
	models []*Model
}

func (f *Fixest) Models() []*Model {
	return f.models
}

func (f *Fixest) Len() int {
	return len(f.models)
}

// Model returns the indx'th model.
func (f *Fixest) Model(indx int) (*Model, error) {
	if indx < 0 || indx >= len(f.models) {
		return nil, fmt.Errorf("model %d out of range [0, %d)", indx, len(f.models))
	}

	return f.models[indx], nil
}

// ***************** Options *****************

type options struct {
	vcov      *Vcov
	split     string
	fsplit    bool
	tol       float64
	maxIter   int
	collinTol float64
	ssc       SSC
	logger    *zap.Logger
}

type Opt func(o *options) error

func WithVcov(v Vcov) Opt {
	return func(o *options) error {
		if v.Type == VcovCRV1 && v.Cluster == "" {
			return fmt.Errorf("CRV1 needs a cluster variable")
		}

		if v.Type != VcovIID && v.Type != VcovHetero && v.Type != VcovCRV1 {
			return fmt.Errorf("unknown vcov type %s", v.Type)
		}

		o.vcov = &v
		return nil
	}
}

// WithSplit estimates every model separately for each distinct value of colName.
func WithSplit(colName string) Opt {
	return func(o *options) error {
		if o.split != "" {
			return fmt.Errorf("split already set to %s", o.split)
		}

		o.split = colName
		return nil
	}
}

// WithFSplit is WithSplit preceded by the full sample.
func WithFSplit(colName string) Opt {
	return func(o *options) error {
		if e := WithSplit(colName)(o); e != nil {
			return e
		}

		o.fsplit = true
		return nil
	}
}

// WithTol sets the convergence tolerance of the demeaning.
func WithTol(tol float64) Opt {
	return func(o *options) error {
		if tol <= 0 || tol >= 1 {
			return fmt.Errorf("tolerance must be in (0,1), got %v", tol)
		}

		o.tol = tol
		return nil
	}
}

func WithMaxIter(maxIter int) Opt {
	return func(o *options) error {
		if maxIter < 1 {
			return fmt.Errorf("maxIter must be positive, got %d", maxIter)
		}

		o.maxIter = maxIter
		return nil
	}
}

func WithSSC(ssc SSC) Opt {
	return func(o *options) error {
		if e := ssc.Validate(); e != nil {
			return e
		}

		o.ssc = ssc
		return nil
	}
}

func WithLogger(logger *zap.Logger) Opt {
	return func(o *options) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}

		o.logger = logger
		return nil
	}
}

// ***************** Estimation *****************

// Feols fits fml to data by ordinary least squares, absorbing the fixed effects after the "|".
// Without WithVcov, standard errors are clustered by the first fixed effect, or iid if there is none.
func Feols(data *mem.DF, fml string, opts ...Opt) (*Fixest, error) {
	o := &options{
		tol:       DefaultTol,
		maxIter:   DefaultMaxIter,
		collinTol: DefaultCollinTol,
		ssc:       DefaultSSC(),
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		if e := opt(o); e != nil {
			return nil, e
		}
	}

	var (
		fmls []Formula
		e    error
	)
	if fmls, e = ParseFormula(fml); e != nil {
		return nil, e
	}

	type sample struct {
		value string
		data  *mem.DF
	}

	samples := []sample{{data: data}}
	if o.split != "" {
		var (
			values []string
			dfs    []*mem.DF
		)
		if values, dfs, e = data.Split(o.split); e != nil {
			return nil, fmt.Errorf("split: %w", e)
		}

		if !o.fsplit {
			samples = nil
		}

		for ind, v := range values {
			samples = append(samples, sample{value: v, data: dfs[ind]})
		}
	}

	out := &Fixest{}
	for _, s := range samples {
		for _, f := range fmls {
			var m *Model
			if m, e = estimate(s.data, f, o); e != nil {
				if s.value != "" {
					return nil, fmt.Errorf("%s, sample %s = %s: %w", f, o.split, s.value, e)
				}

				return nil, fmt.Errorf("%s: %w", f, e)
			}

			if s.value != "" {
				m.SampleVar, m.SampleValue = o.split, s.value
			}

			o.logger.Debug("estimated model",
				zap.String("formula", f.String()),
				zap.String("sample", m.Sample()),
				zap.Int("n", m.N),
				zap.Int("iterations", m.Iterations))

			out.models = append(out.models, m)
		}
	}

	return out, nil
}

func estimate(data *mem.DF, f Formula, o *options) (*Model, error) {
	v := IID()
	if len(f.Fixef) > 0 {
		v = CRV1(f.Fixef[0])
	}

	if o.vcov != nil {
		v = *o.vcov
	}

	var (
		y       []float64
		xs      [][]float64
		feCodes [][]int
		cluster []int
		e       error
	)

	var floatCols [][]float64
	addFloat := func(name string) ([]float64, error) {
		col := data.Column(name)
		if col == nil {
			return nil, fmt.Errorf("column %s not found", name)
		}

		if !col.DataType().IsNumeric() {
			return nil, fmt.Errorf("column %s must be numeric, is %s", name, col.DataType())
		}

		x, ex := col.AsFloat()
		if ex != nil {
			return nil, ex
		}

		floatCols = append(floatCols, x)
		return x, nil
	}

	if y, e = addFloat(f.Depvar); e != nil {
		return nil, e
	}

	for _, cv := range f.Covars {
		var x []float64
		if x, e = addFloat(cv); e != nil {
			return nil, e
		}

		xs = append(xs, x)
	}

	factor := func(name string) ([]int, error) {
		col := data.Column(name)
		if col == nil {
			return nil, fmt.Errorf("column %s not found", name)
		}

		codes, _, ex := col.Copy().Factor()
		return codes, ex
	}

	for _, fe := range f.Fixef {
		var codes []int
		if codes, e = factor(fe); e != nil {
			return nil, e
		}

		feCodes = append(feCodes, codes)
	}

	if v.Type == VcovCRV1 {
		if cluster, e = factor(v.Cluster); e != nil {
			return nil, fmt.Errorf("cluster: %w", e)
		}
	}

	intCols := feCodes
	if cluster != nil {
		intCols = append(append([][]int{}, feCodes...), cluster)
	}

	keep := make([]bool, data.RowCount())
	nKeep := 0
	for i := range keep {
		keep[i] = true
		for _, x := range floatCols {
			keep[i] = keep[i] && !math.IsNaN(x[i])
		}

		for _, codes := range intCols {
			keep[i] = keep[i] && codes[i] >= 0
		}

		if keep[i] {
			nKeep++
		}
	}

	if dropped := len(keep) - nKeep; dropped > 0 {
		o.logger.Info("dropped rows with missing values", zap.String("formula", f.String()), zap.Int("dropped", dropped))
	}

	y = subset(y, keep)
	for ind := range xs {
		xs[ind] = subset(xs[ind], keep)
	}

	for ind := range feCodes {
		feCodes[ind] = recode(subset(feCodes[ind], keep))
	}

	if cluster != nil {
		cluster = recode(subset(cluster, keep))
	}

	names := append([]string{}, f.Covars...)
	if len(f.Fixef) == 0 {
		ones := make([]float64, nKeep)
		for ind := range ones {
			ones[ind] = 1
		}

		xs = append([][]float64{ones}, xs...)
		names = append([]string{Intercept}, names...)
	}

	if len(xs) == 0 {
		return nil, fmt.Errorf("no covariates to estimate")
	}

	if nKeep == 0 {
		return nil, fmt.Errorf("no observations")
	}

	// absorb
	ab := newAbsorber(feCodes, o.tol, o.maxIter)
	var (
		yd    []float64
		iters int
	)
	if yd, iters, e = ab.demean(y); e != nil {
		return nil, e
	}

	xd := mat.NewDense(nKeep, len(xs), nil)
	for j, x := range xs {
		var (
			dm []float64
			it int
		)
		if dm, it, e = ab.demean(x); e != nil {
			return nil, e
		}

		iters = max(iters, it)
		xd.SetCol(j, dm)
	}

	// drop collinear columns
	var xtx mat.SymDense
	xtx.SymOuterK(1, xd.T())

	excl := collinear(&xtx, o.collinTol)
	var (
		keptNames []string
		collin    []string
		keptCols  []int
	)
	for j, ex := range excl {
		if ex {
			collin = append(collin, names[j])
			continue
		}

		keptNames = append(keptNames, names[j])
		keptCols = append(keptCols, j)
	}

	if len(collin) > 0 {
		o.logger.Warn("dropping collinear variables", zap.String("formula", f.String()), zap.Strings("variables", collin))
	}

	if len(keptCols) == 0 {
		return nil, fmt.Errorf("all variables are collinear with the fixed effects")
	}

	x := xd
	if len(keptCols) < len(names) {
		x = mat.NewDense(nKeep, len(keptCols), nil)
		for j, src := range keptCols {
			x.SetCol(j, mat.Col(nil, src, xd))
		}

		xtx.Reset()
		xtx.SymOuterK(1, x.T())
	}

	k := len(keptCols)
	dofK := o.ssc.dofK(k, feCodes, cluster)
	if nKeep <= dofK {
		return nil, fmt.Errorf("%d observations for %d parameters", nKeep, dofK)
	}

	// solve the normal equations
	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, fmt.Errorf("X'X is not positive definite")
	}

	yv := mat.NewVecDense(nKeep, yd)
	var xty, beta, fit mat.VecDense
	xty.MulVec(x.T(), yv)
	if e = chol.SolveVecTo(&beta, &xty); e != nil {
		return nil, e
	}

	fit.MulVec(x, &beta)
	u := make([]float64, nKeep)
	floats.SubTo(u, yd, fit.RawVector().Data)

	var bread mat.SymDense
	if e = chol.InverseTo(&bread); e != nil {
		return nil, e
	}

	vc, g := o.ssc.vcov(v, &bread, x, u, dofK, cluster)

	m := &Model{
		Formula:      f,
		Depvar:       f.Depvar,
		Coefnames:    keptNames,
		FixedEffects: append([]string(nil), f.Fixef...),
		Coef:         mat.Col(nil, 0, &beta),
		Vcov:         vc,
		VcovType:     v.Type,
		ClusterVar:   v.Cluster,
		N:            nKeep,
		K:            k,
		G:            g,
		DofK:         dofK,
		DofT:         nKeep - dofK,
		Collinear:    collin,
		Iterations:   iters,
	}

	if v.Type == VcovCRV1 {
		m.DofT = g - 1
	}

	ssr := floats.Dot(u, u)
	m.RMSE = math.Sqrt(ssr / float64(nKeep))
	m.R2 = 1 - ssr/centeredSS(y)
	m.R2Within = math.NaN()
	if len(f.Fixef) > 0 {
		m.R2Within = 1 - ssr/centeredSS(yd)
	}

	m.infer()

	return m, nil
}

// ***************** Helpers *****************

func centeredSS(x []float64) float64 {
	mean := floats.Sum(x) / float64(len(x))
	ss := 0.0
	for _, xv := range x {
		ss += (xv - mean) * (xv - mean)
	}

	return ss
}

func subset[T any](x []T, keep []bool) []T {
	var out []T
	for ind, k := range keep {
		if k {
			out = append(out, x[ind])
		}
	}

	return out
}

// recode maps codes onto 0,1,... preserving their order, so that levels absent after dropping rows vanish.
func recode(codes []int) []int {
	used := make([]bool, levels(codes))
	for _, c := range codes {
		used[c] = true
	}

	newCode := make([]int, len(used))
	next := 0
	for c, u := range used {
		newCode[c] = next
		if u {
			next++
		}
	}

	out := make([]int, len(codes))
	for ind, c := range codes {
		out[ind] = newCode[c]
	}

	return out
}
