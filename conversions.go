package df

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// *********** Conversions ***********

func toFloat(x any) (any, bool) {
	if f, ok := x.(float64); ok {
		return f, true
	}

	if s, ok := x.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return math.NaN(), true
		}

		if f, e := strconv.ParseFloat(s, 64); e == nil {
			return f, true
		}

		return nil, false
	}

	xv := reflect.ValueOf(x)
	if xv.CanFloat() {
		return xv.Float(), true
	}

	if xv.CanInt() {
		return float64(xv.Int()), true
	}

	if xv.CanUint() {
		return float64(xv.Uint()), true
	}

	return nil, false
}

func toInt(x any) (any, bool) {
	if i, ok := x.(int); ok {
		return i, true
	}

	if s, ok := x.(string); ok {
		if i, e := strconv.ParseInt(strings.TrimSpace(s), 10, 64); e == nil {
			return int(i), true
		}

		return nil, false
	}

	xv := reflect.ValueOf(x)
	if xv.CanInt() {
		return int(xv.Int()), true
	}

	if xv.CanUint() {
		return int(xv.Uint()), true
	}

	// only whole numbers convert
	if xv.CanFloat() {
		f := xv.Float()
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int(f), true
		}
	}

	return nil, false
}

func toString(x any) (any, bool) {
	if s, ok := x.(string); ok {
		return s, true
	}

	if f, ok := x.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}

	if i, ok := x.(int); ok {
		return fmt.Sprintf("%d", i), true
	}

	return nil, false
}

func toDataType(x any, dt DataTypes) (any, bool) {
	switch dt {
	case DTfloat:
		return toFloat(x)
	case DTint:
		return toInt(x)
	case DTstring:
		return toString(x)
	}

	return nil, false
}

// WhatAmI returns the DataTypes of val, which may be a scalar or a slice.
func WhatAmI(val any) DataTypes {
	switch val.(type) {
	case float64, []float64:
		return DTfloat
	case int, []int:
		return DTint
	case string, []string:
		return DTstring
	default:
		return DTunknown
	}
}

// toSlc converts xIn, a slice or a scalar, to a slice of type target.
func toSlc(xIn any, target DataTypes) (any, bool) {
	typSlc := map[DataTypes]reflect.Type{
		DTfloat:  reflect.TypeOf([]float64{}),
		DTint:    reflect.TypeOf([]int{}),
		DTstring: reflect.TypeOf([]string{}),
	}

	var (
		outType reflect.Type
		ok      bool
	)
	if outType, ok = typSlc[target]; !ok {
		return nil, false
	}

	x := reflect.ValueOf(xIn)
	if !x.IsValid() {
		return nil, false
	}

	// nothing to do
	if x.Type() == outType {
		return xIn, true
	}

	if x.Kind() != reflect.Slice {
		val, okx := toDataType(xIn, target)
		if !okx {
			return nil, false
		}

		xOut := reflect.MakeSlice(outType, 1, 1)
		xOut.Index(0).Set(reflect.ValueOf(val))
		return xOut.Interface(), true
	}

	xOut := reflect.MakeSlice(outType, x.Len(), x.Len())
	for ind := 0; ind < x.Len(); ind++ {
		val, okx := toDataType(x.Index(ind).Interface(), target)
		if !okx {
			return nil, false
		}

		xOut.Index(ind).Set(reflect.ValueOf(val))
	}

	return xOut.Interface(), true
}
