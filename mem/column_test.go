package mem

import (
	"math"
	"testing"

	d "github.com/invertedv/panelfe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCol_Factor(t *testing.T) {
	c, e := NewCol([]int{1980, 1978, 1980, 1979}, d.DTint, d.ColName("YEAR"))
	require.Nil(t, e)

	codes, cm, e := c.Factor()
	require.Nil(t, e)
	assert.Equal(t, []int{2, 0, 2, 1}, codes)
	assert.Equal(t, 3, cm.Levels())
	assert.Equal(t, 0, cm[1978])
	assert.Equal(t, cm, c.CategoryMap())
	assert.Equal(t, []string{"1978", "1979", "1980"}, c.Levels())

	f, _ := NewCol([]float64{2.5, math.NaN(), 1}, d.DTfloat, d.ColName("f"))
	codes, _, e = f.Factor()
	require.Nil(t, e)
	assert.Equal(t, []int{1, -1, 0}, codes)
	assert.Equal(t, []string{"1", "2.5"}, f.Levels())

	s, _ := NewCol([]string{"mfg", "agr", "mfg"}, d.DTstring, d.ColName("sector"))
	codes, _, e = s.Factor()
	require.Nil(t, e)
	assert.Equal(t, []int{1, 0, 1}, codes)
}

func TestCol_Basics(t *testing.T) {
	v, _ := d.NewVector([]float64{1, 2}, d.DTfloat)
	c, e := NewCol(v, d.DTint, d.ColName("W"))
	require.Nil(t, e)
	assert.Equal(t, d.DTfloat, c.DataType())
	assert.Equal(t, "W", c.Name())
	assert.Equal(t, c.ColCore, c.Core())

	cp := c.Copy()
	assert.Nil(t, cp.Rename("W2"))
	assert.Equal(t, "W", c.Name())

	_, e = NewCol([]string{"x"}, d.DTfloat)
	assert.NotNil(t, e)
	_, e = NewCol([]float64{1}, d.DTfloat, d.ColName("bad name"))
	assert.NotNil(t, e)

	assert.Contains(t, c.String(), "column: W")
	assert.Contains(t, c.String(), "mean")
}

func TestSummarize(t *testing.T) {
	s := summarize([]float64{4, math.NaN(), 1, 3, 2})
	assert.InDeltaSlice(t, []float64{4, 2.5, math.Sqrt(5.0 / 3.0), 1, 1.75, 2.5, 3.25, 4}, s, 1e-12)

	s = summarize([]float64{math.NaN()})
	assert.Equal(t, 0.0, s[0])
	assert.True(t, math.IsNaN(s[1]))

	assert.Equal(t, 2.0, quantile(0.5, []float64{1, 2, 3}))
	assert.Equal(t, 3.0, quantile(1, []float64{1, 2, 3}))
}
