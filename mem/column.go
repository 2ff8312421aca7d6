package mem

import (
	"fmt"
	"math"
	"sort"

	d "github.com/invertedv/panelfe"
	"gonum.org/v1/gonum/stat"
)

// Col is an in-memory column: the data plus its metadata.
type Col struct {
	*d.Vector

	*d.ColCore
}

// ***************** Col - Create *****************

func NewCol(data any, dt d.DataTypes, opts ...d.ColOpt) (*Col, error) {
	var (
		v *d.Vector
		e error
	)

	if vx, ok := data.(*d.Vector); ok {
		v, dt = vx, vx.VectorType()
	} else if v, e = d.NewVector(data, dt); e != nil {
		return nil, e
	}

	cc, _ := d.NewColCore(dt)
	col := &Col{
		Vector:  v,
		ColCore: cc,
	}

	for _, opt := range opts {
		if e := opt(col); e != nil {
			return nil, e
		}
	}

	return col, nil
}

// ***************** Col - Methods *****************

func (c *Col) Copy() *Col {
	return &Col{
		Vector:  c.Vector.Copy(),
		ColCore: c.ColCore.Copy(),
	}
}

// Core resolves the ambiguity between the embedded types.
func (c *Col) Core() *d.ColCore {
	return c.ColCore
}

// Factor codes the distinct values of the column 0,1,... in sorted order. Missing values get code -1.
// The returned CategoryMap maps each value to its code.
func (c *Col) Factor() (codes []int, cm d.CategoryMap, err error) {
	codes = make([]int, c.Len())
	cm = make(d.CategoryMap)

	switch c.DataType() {
	case d.DTint:
		x, _ := c.AsInt()
		levels := distinct(x)
		for ind, lvl := range levels {
			cm[lvl] = ind
		}

		for ind, xv := range x {
			codes[ind] = cm[xv]
		}
	case d.DTstring:
		x, _ := c.AsString()
		levels := distinct(x)
		for ind, lvl := range levels {
			cm[lvl] = ind
		}

		for ind, xv := range x {
			codes[ind] = cm[xv]
		}
	case d.DTfloat:
		x, _ := c.AsFloat()
		levels := distinct(nonMissing(x))
		for ind, lvl := range levels {
			cm[lvl] = ind
		}

		for ind, xv := range x {
			if math.IsNaN(xv) {
				codes[ind] = -1
				continue
			}

			codes[ind] = cm[xv]
		}
	default:
		return nil, nil, fmt.Errorf("cannot factor column %s of type %s", c.Name(), c.DataType())
	}

	_ = d.ColCatMap(cm)(c)

	return codes, cm, nil
}

// Levels returns the sorted distinct values of the column formatted as strings.
func (c *Col) Levels() []string {
	var out []string
	switch c.DataType() {
	case d.DTint:
		x, _ := c.AsInt()
		for _, lvl := range distinct(x) {
			out = append(out, fmt.Sprintf("%d", lvl))
		}
	case d.DTfloat:
		x, _ := c.AsFloat()
		for _, lvl := range distinct(nonMissing(x)) {
			out = append(out, fmt.Sprintf("%v", lvl))
		}
	case d.DTstring:
		x, _ := c.AsString()
		out = distinct(x)
	}

	return out
}

func (c *Col) String() string {
	name := c.Name()
	if name == "" {
		name = "unnamed"
	}

	t := fmt.Sprintf("column: %s\ntype: %s\n", name, c.DataType())

	if c.DataType() == d.DTstring {
		levels := c.Levels()
		header := []string{"level"}
		return t + prettyPrint(header, levels)
	}

	x, _ := c.AsFloat()
	s := summarize(x)
	cats := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	header := []string{"metric", "value"}

	return t + prettyPrint(header, cats, s)
}

// ***************** Helpers *****************

// summarize returns count, mean, std, min, 25%, 50%, 75%, max of the non-missing values of x.
func summarize(x []float64) []float64 {
	xs := nonMissing(x)
	n := float64(len(xs))
	if len(xs) == 0 {
		nan := math.NaN()
		return []float64{0, nan, nan, nan, nan, nan, nan, nan}
	}

	sort.Float64s(xs)
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = math.NaN()
	}

	return []float64{n, mean, std, xs[0], quantile(0.25, xs), quantile(0.5, xs), quantile(0.75, xs), xs[len(xs)-1]}
}

func distinct[T float64 | int | string](x []T) []T {
	seen := make(map[T]bool)
	var out []T
	for _, xv := range x {
		if !seen[xv] {
			seen[xv] = true
			out = append(out, xv)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

func nonMissing(x []float64) []float64 {
	var xs []float64
	for _, xv := range x {
		if !math.IsNaN(xv) {
			xs = append(xs, xv)
		}
	}

	return xs
}
