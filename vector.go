package df

import (
	"fmt"
	"math"
)

// Vector is a typed slice. The underlying data is one of []float64, []int or []string.
type Vector struct {
	dt DataTypes

	data any
}

// NewVector creates a Vector of type dt from data, converting elements as needed.
func NewVector(data any, dt DataTypes) (*Vector, error) {
	var (
		v  any
		ok bool
	)
	if v, ok = toSlc(data, dt); !ok {
		return nil, fmt.Errorf("cannot make vector of type %s", dt)
	}

	return &Vector{dt: dt, data: v}, nil
}

func MakeVector(dt DataTypes, n int) *Vector {
	switch dt {
	case DTfloat:
		return &Vector{dt: dt, data: make([]float64, n)}
	case DTint:
		return &Vector{dt: dt, data: make([]int, n)}
	case DTstring:
		return &Vector{dt: dt, data: make([]string, n)}
	default:
		panic(fmt.Errorf("cannot make Vector with data type %s", dt))
	}
}

// ***************** Vector - Methods *****************

func (v *Vector) VectorType() DataTypes {
	return v.dt
}

func (v *Vector) AsAny() any {
	return v.data
}

func (v *Vector) AsFloat() ([]float64, error) {
	switch v.dt {
	case DTfloat:
		return v.data.([]float64), nil
	case DTint:
		xOut := make([]float64, v.Len())
		for ind, xx := range v.data.([]int) {
			xOut[ind] = float64(xx)
		}

		return xOut, nil
	}

	x, ok := toSlc(v.data, DTfloat)
	if !ok {
		return nil, fmt.Errorf("cannot convert %s vector to float", v.dt)
	}

	return x.([]float64), nil
}

func (v *Vector) AsInt() ([]int, error) {
	if v.dt == DTint {
		return v.data.([]int), nil
	}

	x, ok := toSlc(v.data, DTint)
	if !ok {
		return nil, fmt.Errorf("cannot convert %s vector to int", v.dt)
	}

	return x.([]int), nil
}

func (v *Vector) AsString() ([]string, error) {
	if v.dt == DTstring {
		return v.data.([]string), nil
	}

	x, ok := toSlc(v.data, DTstring)
	if !ok {
		return nil, fmt.Errorf("cannot convert %s vector to string", v.dt)
	}

	return x.([]string), nil
}

func (v *Vector) Element(indx int) any {
	if indx < 0 || indx >= v.Len() {
		panic(fmt.Errorf("index out of range"))
	}

	switch v.dt {
	case DTfloat:
		return v.data.([]float64)[indx]
	case DTint:
		return v.data.([]int)[indx]
	case DTstring:
		return v.data.([]string)[indx]
	default:
		panic(fmt.Errorf("error in Element"))
	}
}

func (v *Vector) ElementFloat(indx int) (float64, error) {
	if v.dt == DTfloat {
		return v.data.([]float64)[indx], nil
	}

	if val, ok := toFloat(v.Element(indx)); ok {
		return val.(float64), nil
	}

	return 0, fmt.Errorf("element is not float-able")
}

func (v *Vector) SetFloat(val float64, indx int) error {
	if v.dt != DTfloat {
		return fmt.Errorf("vector isn't DTfloat")
	}

	if indx < 0 || indx >= v.Len() {
		return fmt.Errorf("index out of range")
	}

	v.data.([]float64)[indx] = val

	return nil
}

func (v *Vector) SetInt(val, indx int) error {
	if v.dt != DTint {
		return fmt.Errorf("vector isn't DTint")
	}

	if indx < 0 || indx >= v.Len() {
		return fmt.Errorf("index out of range")
	}

	v.data.([]int)[indx] = val

	return nil
}

func (v *Vector) SetString(val string, indx int) error {
	if v.dt != DTstring {
		return fmt.Errorf("vector isn't DTstring")
	}

	if indx < 0 || indx >= v.Len() {
		return fmt.Errorf("index out of range")
	}

	v.data.([]string)[indx] = val

	return nil
}

func (v *Vector) Len() int {
	switch v.dt {
	case DTfloat:
		return len(v.data.([]float64))
	case DTint:
		return len(v.data.([]int))
	case DTstring:
		return len(v.data.([]string))
	default:
		panic(fmt.Errorf("unexpected error in Vector.Len"))
	}
}

// IsMissing returns true if element indx is missing. Only float vectors carry missing values (NaN).
func (v *Vector) IsMissing(indx int) bool {
	if v.dt != DTfloat {
		return false
	}

	return math.IsNaN(v.data.([]float64)[indx])
}

func (v *Vector) AppendVector(vAdd *Vector) error {
	if v.VectorType() != vAdd.VectorType() {
		return fmt.Errorf("appending different vector types")
	}

	switch v.dt {
	case DTfloat:
		v.data = append(v.data.([]float64), vAdd.data.([]float64)...)
	case DTint:
		v.data = append(v.data.([]int), vAdd.data.([]int)...)
	case DTstring:
		v.data = append(v.data.([]string), vAdd.data.([]string)...)
	default:
		return fmt.Errorf("unknown type in Vector.Append")
	}

	return nil
}

func (v *Vector) Copy() *Vector {
	vCopy := &Vector{dt: v.dt}
	switch v.dt {
	case DTfloat:
		x := make([]float64, v.Len())
		copy(x, v.data.([]float64))
		vCopy.data = x
	case DTint:
		x := make([]int, v.Len())
		copy(x, v.data.([]int))
		vCopy.data = x
	case DTstring:
		x := make([]string, v.Len())
		copy(x, v.data.([]string))
		vCopy.data = x
	default:
		panic(fmt.Errorf("unexpected error in Vector.Copy"))
	}

	return vCopy
}

// Where returns a new Vector holding the elements for which indic is true.
func (v *Vector) Where(indic []bool) (*Vector, error) {
	if len(indic) != v.Len() {
		return nil, fmt.Errorf("indicator length %d does not match vector length %d", len(indic), v.Len())
	}

	switch v.dt {
	case DTfloat:
		return &Vector{dt: v.dt, data: where(v.data.([]float64), indic)}, nil
	case DTint:
		return &Vector{dt: v.dt, data: where(v.data.([]int), indic)}, nil
	case DTstring:
		return &Vector{dt: v.dt, data: where(v.data.([]string), indic)}, nil
	default:
		return nil, fmt.Errorf("unsupported type in Vector.Where")
	}
}

func where[T float64 | int | string](x []T, indic []bool) []T {
	out := make([]T, 0, len(x))
	for ind, keep := range indic {
		if keep {
			out = append(out, x[ind])
		}
	}

	return out
}
