package fe

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type VcovType string

const (
	VcovIID    VcovType = "iid"
	VcovHetero VcovType = "hetero"
	VcovCRV1   VcovType = "CRV1"
)

// Vcov selects the variance-covariance estimator.
type Vcov struct {
	Type    VcovType
	Cluster string
}

func IID() Vcov {
	return Vcov{Type: VcovIID}
}

// Hetero is the HC1 heteroskedasticity-robust estimator.
func Hetero() Vcov {
	return Vcov{Type: VcovHetero}
}

// CRV1 clusters by the column cluster.
func CRV1(cluster string) Vcov {
	return Vcov{Type: VcovCRV1, Cluster: cluster}
}

// ParseVcov accepts "iid", "hetero" (or "HC1") and "CRV1:<cluster>".
func ParseVcov(s string) (Vcov, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "iid":
		return IID(), nil
	case "hetero", "hc1":
		return Hetero(), nil
	}

	if name, cluster, ok := strings.Cut(s, ":"); ok && strings.EqualFold(name, "crv1") {
		cluster = strings.TrimSpace(cluster)
		if e := checkName(cluster); e != nil {
			return Vcov{}, fmt.Errorf("cluster: %w", e)
		}

		return CRV1(cluster), nil
	}

	return Vcov{}, fmt.Errorf("unknown vcov %q", s)
}

// Label is the short description used in regression tables.
func (v Vcov) Label() string {
	if v.Type == VcovCRV1 {
		return "by: " + v.Cluster
	}

	return string(v.Type)
}

// SSC controls the small sample corrections.
//
// FixefK sets how fixed effects count toward k:
//
//	none   - not at all
//	nested - every level except those of fixed effects nested in the cluster variable
//	full   - every level, less one per additional fixed effect
type SSC struct {
	Adj        bool
	FixefK     string
	ClusterAdj bool
}

// DefaultSSC is pyfixest's long-standing default, ssc(adj=True, fixef_k="none", cluster_adj=True):
// absorbed fixed effects are not counted in k. Releases that count non-nested fixed effects by default
// give slightly larger clustered errors; SSC{FixefK: "nested"} reproduces those.
func DefaultSSC() SSC {
	return SSC{Adj: true, FixefK: "none", ClusterAdj: true}
}

// Validate checks FixefK.
func (s SSC) Validate() error {
	switch s.FixefK {
	case "none", "nested", "full":
		return nil
	}

	return fmt.Errorf("unknown FixefK %q, must be none, nested or full", s.FixefK)
}

// dofK is the number of estimated parameters used in the small sample correction. feCodes are the
// fixed-effect codes, cluster the cluster codes (nil unless clustering).
func (s SSC) dofK(k int, feCodes [][]int, cluster []int) int {
	if s.FixefK == "none" || len(feCodes) == 0 {
		return k
	}

	add, nonNested := 0, 0
	for _, codes := range feCodes {
		if s.FixefK == "nested" && cluster != nil && nestedIn(codes, cluster) {
			continue
		}

		add += levels(codes)
		nonNested++
	}

	if nonNested > 0 {
		add -= len(feCodes) - 1
	}

	return k + add
}

// nestedIn returns true if every level of inner falls in exactly one level of outer.
func nestedIn(inner, outer []int) bool {
	owner := make(map[int]int)
	for i, lvl := range inner {
		if o, ok := owner[lvl]; ok && o != outer[i] {
			return false
		}

		owner[lvl] = outer[i]
	}

	return true
}

// vcov computes the variance matrix of the coefficients. bread is (X'X)^-1, x the (demeaned) design, u the
// residuals. It returns the matrix and the number of clusters (0 if not clustering).
func (s SSC) vcov(v Vcov, bread *mat.SymDense, x *mat.Dense, u []float64, dofK int, cluster []int) (*mat.SymDense, int) {
	n, k := x.Dims()
	nf, kf := float64(n), float64(dofK)

	adj := 1.0
	if s.Adj {
		adj = (nf - 1) / (nf - kf)
	}

	switch v.Type {
	case VcovHetero:
		meat := mat.NewSymDense(k, nil)
		for i := 0; i < n; i++ {
			meat.SymRankOne(meat, u[i]*u[i], x.RowView(i))
		}

		if s.Adj {
			adj = nf / (nf - kf)
		}

		return sandwich(bread, meat, adj), 0
	case VcovCRV1:
		g := levels(cluster)
		scores := mat.NewDense(g, k, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < k; j++ {
				scores.Set(cluster[i], j, scores.At(cluster[i], j)+u[i]*x.At(i, j))
			}
		}

		meat := mat.NewSymDense(k, nil)
		meat.SymOuterK(1, scores.T())

		if s.ClusterAdj && g > 1 {
			adj *= float64(g) / float64(g-1)
		}

		return sandwich(bread, meat, adj), g
	}

	ssr := 0.0
	for _, uv := range u {
		ssr += uv * uv
	}

	sigma2 := ssr / (nf - 1)
	out := mat.NewSymDense(k, nil)
	out.ScaleSym(sigma2*adj, bread)

	return out, 0
}

func sandwich(bread, meat *mat.SymDense, adj float64) *mat.SymDense {
	k := bread.SymmetricDim()
	var tmp, v mat.Dense
	tmp.Mul(bread, meat)
	v.Mul(&tmp, bread)

	out := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			out.SetSym(i, j, adj*(v.At(i, j)+v.At(j, i))/2)
		}
	}

	return out
}
