package fe

import (
	"fmt"
	"math"

	d "github.com/invertedv/panelfe"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model is one fitted regression.
type Model struct {
	Formula      Formula
	Depvar       string
	Coefnames    []string
	FixedEffects []string

	Coef     []float64
	SE       []float64
	TStat    []float64
	PValue   []float64
	ConfLow  []float64
	ConfHigh []float64
	Vcov     *mat.SymDense

	VcovType   VcovType
	ClusterVar string

	N    int // observations used
	K    int // coefficients estimated
	G    int // clusters, 0 unless clustered
	DofK int // parameters counted by the small sample correction
	DofT int // degrees of freedom of the t distribution

	R2       float64
	R2Within float64 // NaN without fixed effects
	RMSE     float64

	// SampleVar and SampleValue identify the split sample, both empty for the full sample.
	SampleVar   string
	SampleValue string

	Collinear  []string
	Iterations int
}

// Coefficient returns the estimate and standard error of name.
func (m *Model) Coefficient(name string) (est, se float64, ok bool) {
	for ind, cn := range m.Coefnames {
		if cn == name {
			return m.Coef[ind], m.SE[ind], true
		}
	}

	return math.NaN(), math.NaN(), false
}

func (m *Model) HasFixef(name string) bool {
	return d.Has(name, m.FixedEffects)
}

// VcovLabel describes the standard errors, e.g. "by: ID".
func (m *Model) VcovLabel() string {
	return Vcov{Type: m.VcovType, Cluster: m.ClusterVar}.Label()
}

// Sample describes the estimation sample, e.g. "IND = 2" or "all".
func (m *Model) Sample() string {
	if m.SampleVar == "" {
		return "all"
	}

	return fmt.Sprintf("%s = %s", m.SampleVar, m.SampleValue)
}

// infer fills the t statistics, p-values and 95% intervals from Coef and Vcov.
func (m *Model) infer() {
	k := len(m.Coef)
	m.SE = make([]float64, k)
	m.TStat = make([]float64, k)
	m.PValue = make([]float64, k)
	m.ConfLow = make([]float64, k)
	m.ConfHigh = make([]float64, k)

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(m.DofT)}
	q := t.Quantile(0.975)
	for ind, b := range m.Coef {
		se := math.Sqrt(m.Vcov.At(ind, ind))
		m.SE[ind] = se
		m.TStat[ind] = b / se
		m.PValue[ind] = 2 * (1 - t.CDF(math.Abs(b/se)))
		m.ConfLow[ind] = b - q*se
		m.ConfHigh[ind] = b + q*se
	}
}
