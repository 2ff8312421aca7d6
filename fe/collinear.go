package fe

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// collinear runs a Cholesky decomposition of the cross-product matrix xtx that skips columns whose remaining
// pivot is below tol. It returns, per column, whether the column is a linear combination of those before it.
func collinear(xtx mat.Symmetric, tol float64) []bool {
	k := xtx.SymmetricDim()
	r := mat.NewDense(k, k, nil)
	excl := make([]bool, k)

	for j := 0; j < k; j++ {
		pivot := xtx.At(j, j)
		for m := 0; m < j; m++ {
			if !excl[m] {
				pivot -= r.At(m, j) * r.At(m, j)
			}
		}

		if pivot < tol {
			excl[j] = true
			continue
		}

		pivot = math.Sqrt(pivot)
		r.Set(j, j, pivot)
		for i := j + 1; i < k; i++ {
			val := xtx.At(i, j)
			for m := 0; m < j; m++ {
				if !excl[m] {
					val -= r.At(m, i) * r.At(m, j)
				}
			}

			r.Set(j, i, val/pivot)
		}
	}

	return excl
}
