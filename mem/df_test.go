package mem

import (
	"math"
	"testing"

	d "github.com/invertedv/panelfe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = "../data/ab_sample.csv"

var abColumns = []string{"EMP", "WAGE", "W", "N", "K", "YS", "ID", "YEAR", "IND"}

func testDF() *DF {
	x, _ := NewCol([]float64{1, -2, 3, 0, 2, math.NaN()}, d.DTfloat, d.ColName("x"))
	y, _ := NewCol([]int{1, -5, 6, 1, 4, 5}, d.DTint, d.ColName("y"))
	z, _ := NewCol([]string{"b", "a", "c", "a", "b", "b"}, d.DTstring, d.ColName("z"))
	dfx, e := NewDFcol([]*Col{x, y, z})
	if e != nil {
		panic(e)
	}

	return dfx
}

func loadSample(t *testing.T) *DF {
	f, e := d.NewFiles(d.FileFieldNames(abColumns...))
	require.Nil(t, e)
	require.Nil(t, f.Open(sampleFile))

	df, e := FileLoad(f)
	require.Nil(t, e)

	return df
}

func TestFileLoad(t *testing.T) {
	df := loadSample(t)
	assert.Equal(t, abColumns, df.ColumnNames())
	assert.Equal(t, 312, df.RowCount())
	assert.Equal(t, 9, df.ColumnCount())
	assert.Equal(t, sampleFile, df.Source())
	assert.Equal(t, d.DTint, df.Column("YEAR").DataType())
	assert.Nil(t, df.Column("CAP"))
}

func TestDF_Query(t *testing.T) {
	df := loadSample(t)

	sub, e := df.Query("YEAR >= 1980")
	require.Nil(t, e)
	assert.Equal(t, 192, sub.RowCount())
	assert.True(t, sub.RowCount() < df.RowCount())
	assert.Equal(t, df.ColumnNames(), sub.ColumnNames())

	years, _ := sub.Column("YEAR").AsInt()
	for _, yr := range years {
		assert.True(t, yr >= 1980)
	}

	sub, e = df.Query("YEAR >= 1980 and IND == 2")
	require.Nil(t, e)
	inds, _ := sub.Column("IND").AsInt()
	for _, ind := range inds {
		assert.Equal(t, 2, ind)
	}

	// the source is untouched
	assert.Equal(t, 312, df.RowCount())

	dfx := testDF()
	sub, e = dfx.Query("x > -5")
	require.Nil(t, e)
	assert.Equal(t, 5, sub.RowCount())

	sub, e = dfx.Query(`z == "b" & y != 5`)
	require.Nil(t, e)
	assert.Equal(t, []int{1, 4}, sub.Column("y").AsAny())

	sub, e = dfx.Query("z <= 'a'")
	require.Nil(t, e)
	assert.Equal(t, 2, sub.RowCount())

	// operators inside a quoted value are part of the value
	sub, e = dfx.Query(`z == 'a<=b'`)
	require.Nil(t, e)
	assert.Equal(t, 0, sub.RowCount())

	sub, e = dfx.Query(`z != "a>b"`)
	require.Nil(t, e)
	assert.Equal(t, 6, sub.RowCount())

	for _, bad := range []string{"w > 1", "x > ", "x ~ 3", "x > three", "x > 1 and"} {
		_, e = dfx.Query(bad)
		assert.NotNil(t, e, bad)
	}
}

func TestDF_Split(t *testing.T) {
	df := loadSample(t)

	values, dfs, e := df.Split("IND")
	require.Nil(t, e)
	assert.Equal(t, []string{"1", "2", "3", "4"}, values)
	assert.Equal(t, 4, len(dfs))

	n := 0
	for ind, sub := range dfs {
		inds, _ := sub.Column("IND").AsInt()
		for _, v := range inds {
			assert.Equal(t, ind+1, v)
		}

		n += sub.RowCount()
	}
	assert.Equal(t, df.RowCount(), n)

	values, dfs, e = testDF().Split("z")
	require.Nil(t, e)
	assert.Equal(t, []string{"a", "b", "c"}, values)
	assert.Equal(t, 3, dfs[1].RowCount())

	_, _, e = df.Split("SECTOR")
	assert.NotNil(t, e)

	// splitting leaves the input columns alone
	_, _, e = df.Split("YEAR")
	require.Nil(t, e)
	assert.Nil(t, df.Column("YEAR").CategoryMap())
}

func TestDF_Describe(t *testing.T) {
	desc, e := testDF().Describe()
	require.Nil(t, e)
	assert.Equal(t, []string{"statistic", "x", "y"}, desc.ColumnNames())

	x, _ := desc.Column("x").AsFloat()
	// count, mean, std, min, 25%, 50%, 75%, max of 1, -2, 3, 0, 2
	exp := []float64{5, 0.8, math.Sqrt(3.7), -2, 0, 1, 2, 3}
	assert.InDeltaSlice(t, exp, x, 1e-12)

	y, _ := desc.Column("y").AsFloat()
	assert.Equal(t, 6.0, y[0])
	assert.Equal(t, 2.5, y[5])

	only, _ := testDF().KeepColumns("z")
	_, e = only.Describe()
	assert.NotNil(t, e)
}

func TestDF_Columns(t *testing.T) {
	dfx := testDF()
	assert.True(t, dfx.HasColumns("x", "z"))
	assert.False(t, dfx.HasColumns("x", "w"))

	keep, e := dfx.KeepColumns("z", "x")
	require.Nil(t, e)
	assert.Equal(t, []string{"z", "x"}, keep.ColumnNames())
	assert.Nil(t, keep.Column("x").SetFloat(100, 0))
	assert.Equal(t, 1.0, dfx.Column("x").Element(0))
	_, e = dfx.KeepColumns("w")
	assert.NotNil(t, e)

	short, _ := NewCol([]int{1}, d.DTint, d.ColName("s"))
	assert.NotNil(t, dfx.AppendColumn(short, false))

	dup, _ := NewCol([]int{1, 2, 3, 4, 5, 6}, d.DTint, d.ColName("y"))
	assert.NotNil(t, dfx.AppendColumn(dup, false))
	assert.Nil(t, dfx.AppendColumn(dup, true))
	assert.Equal(t, 3, dfx.ColumnCount())
	assert.Equal(t, 2, dfx.Column("y").Element(1))

	noName, _ := NewCol([]int{1, 2, 3, 4, 5, 6}, d.DTint)
	assert.NotNil(t, dfx.AppendColumn(noName, false))

	assert.Nil(t, dfx.DropColumns("y"))
	assert.Equal(t, []string{"x", "z"}, dfx.ColumnNames())
	assert.NotNil(t, dfx.DropColumns("y"))

	_, e = NewDFcol(nil)
	assert.NotNil(t, e)
}

func TestDF_Where(t *testing.T) {
	dfx := testDF()
	sub, e := dfx.Where([]bool{true, false, false, false, false, true})
	require.Nil(t, e)
	assert.Equal(t, []int{1, 5}, sub.Column("y").AsAny())
	assert.Equal(t, []string{"b", "b"}, sub.Column("z").AsAny())

	_, e = dfx.Where([]bool{true})
	assert.NotNil(t, e)

	cp := dfx.Copy()
	assert.Nil(t, cp.Column("y").SetInt(50, 0))
	assert.Equal(t, 1, dfx.Column("y").Element(0))
}

func TestDF_String(t *testing.T) {
	s := loadSample(t).String()
	assert.Contains(t, s, "EMP")
	assert.Contains(t, s, "... 302 more rows")
	assert.Contains(t, s, "312 rows x 9 columns")
}
