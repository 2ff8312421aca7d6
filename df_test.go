package df

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataTypes(t *testing.T) {
	assert.Equal(t, DTfloat, DTFromString("DTfloat"))
	assert.Equal(t, DTint, DTFromString("DTint"))
	assert.Equal(t, DTunknown, DTFromString("DTdate"))
	assert.Equal(t, "DTstring", DTstring.String())
	assert.True(t, DTint.IsNumeric())
	assert.False(t, DTstring.IsNumeric())

	assert.Equal(t, DTfloat, WhatAmI([]float64{1}))
	assert.Equal(t, DTint, WhatAmI(3))
	assert.Equal(t, DTunknown, WhatAmI(int32(3)))
}

func TestCategoryMap(t *testing.T) {
	cm := CategoryMap{"a": 0, "b": 2, "c": 1}
	assert.Equal(t, 3, cm.Levels())
	assert.Equal(t, 2, cm.Max())
	assert.Equal(t, -1, CategoryMap{}.Max())
}

func TestColCore(t *testing.T) {
	cc, e := NewColCore(DTint, ColName("ID"))
	assert.Nil(t, e)
	assert.Equal(t, "ID", cc.Name())
	assert.Equal(t, DTint, cc.DataType())

	assert.Nil(t, cc.Rename("Firm"))
	assert.Equal(t, "Firm", cc.Name())
	assert.NotNil(t, cc.Rename("Firm id"))
	assert.NotNil(t, ColName("again")(cc))

	cp := cc.Copy()
	assert.Nil(t, cp.Rename("other"))
	assert.Equal(t, "Firm", cc.Name())

	_, e = NewColCore(DTfloat, ColName("a-b"))
	assert.NotNil(t, e)
}

func TestConversions(t *testing.T) {
	x, ok := toSlc([]string{"1", "2.5", ""}, DTfloat)
	assert.True(t, ok)
	xf := x.([]float64)
	assert.Equal(t, []float64{1, 2.5}, xf[:2])
	assert.True(t, math.IsNaN(xf[2]))

	_, ok = toSlc([]float64{1, 2.5}, DTint)
	assert.False(t, ok)

	x, ok = toSlc([]float64{1, 2}, DTint)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, x)

	x, ok = toSlc(3, DTstring)
	assert.True(t, ok)
	assert.Equal(t, []string{"3"}, x)

	_, ok = toSlc([]string{"a"}, DTfloat)
	assert.False(t, ok)
}

func TestHelpers(t *testing.T) {
	assert.True(t, Has("b", []string{"a", "b"}))
	assert.Equal(t, -1, position(3, []int{1, 2}))
	assert.Equal(t, 8, len(RandomLetters(8)))
	assert.NotNil(t, validName(""))
	assert.NotNil(t, validName("Log wage"))
	assert.Nil(t, validName("LOG_WAGE"))
}
