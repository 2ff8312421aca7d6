package fe

import (
	"fmt"
	"math"
)

// absorber holds the fixed-effect group structure of one estimation sample.
type absorber struct {
	codes  [][]int // codes[j][i] is the level of fixed effect j for row i
	counts [][]float64

	tol     float64
	maxIter int
}

func newAbsorber(codes [][]int, tol float64, maxIter int) *absorber {
	a := &absorber{codes: codes, tol: tol, maxIter: maxIter}
	for _, c := range codes {
		cnt := make([]float64, levels(c))
		for _, lvl := range c {
			cnt[lvl]++
		}

		a.counts = append(a.counts, cnt)
	}

	return a
}

// demean removes the fixed effects from x by alternating projections. It returns the demeaned copy of x and
// the number of sweeps needed.
func (a *absorber) demean(x []float64) ([]float64, int, error) {
	out := make([]float64, len(x))
	copy(out, x)

	if len(a.codes) == 0 {
		return out, 0, nil
	}

	// a single fixed effect is a one-shot projection
	if len(a.codes) == 1 {
		a.sweep(out, 0)
		return out, 1, nil
	}

	for iter := 1; iter <= a.maxIter; iter++ {
		change := 0.0
		for j := range a.codes {
			change = math.Max(change, a.sweep(out, j))
		}

		if change < a.tol {
			return out, iter, nil
		}
	}

	return nil, a.maxIter, fmt.Errorf("demeaning did not converge in %d iterations", a.maxIter)
}

// sweep subtracts the group means of fixed effect j from x in place and returns the largest absolute mean removed.
func (a *absorber) sweep(x []float64, j int) float64 {
	means := make([]float64, len(a.counts[j]))
	for i, lvl := range a.codes[j] {
		means[lvl] += x[i]
	}

	change := 0.0
	for lvl := range means {
		means[lvl] /= a.counts[j][lvl]
		change = math.Max(change, math.Abs(means[lvl]))
	}

	for i, lvl := range a.codes[j] {
		x[i] -= means[lvl]
	}

	return change
}

func levels(codes []int) int {
	mx := -1
	for _, c := range codes {
		mx = max(mx, c)
	}

	return mx + 1
}
