// Package mem is the in-memory data frame: columns held as Go slices.
package mem

import (
	"fmt"
	"math"
	"strconv"

	d "github.com/invertedv/panelfe"
)

const maxPrintRows = 10

// DF is an ordered collection of equal-length columns.
type DF struct {
	cols []*Col

	source string
}

// ***************** DF - Create *****************

func NewDFcol(cols []*Col) (*DF, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns in NewDFcol")
	}

	df := &DF{}
	for _, col := range cols {
		if e := df.AppendColumn(col, false); e != nil {
			return nil, e
		}
	}

	return df, nil
}

// FileLoad reads the open file f into a DF and closes it.
func FileLoad(f *d.Files) (*DF, error) {
	defer func() { _ = f.Close() }()

	var (
		vecs  []*d.Vector
		names []string
		e     error
	)
	if vecs, names, e = f.Read(); e != nil {
		return nil, e
	}

	var df *DF
	if df, e = fromVectors(vecs, names); e != nil {
		return nil, e
	}

	df.source = f.FileName()

	return df, nil
}

// DBLoad runs qry against the database behind dialect and returns the result as a DF.
func DBLoad(qry string, dialect *d.Dialect) (*DF, error) {
	var (
		vecs  []*d.Vector
		names []string
		e     error
	)
	if vecs, names, e = dialect.Load(qry); e != nil {
		return nil, e
	}

	var df *DF
	if df, e = fromVectors(vecs, names); e != nil {
		return nil, e
	}

	df.source = qry

	return df, nil
}

func fromVectors(vecs []*d.Vector, names []string) (*DF, error) {
	var cols []*Col
	for ind, v := range vecs {
		var (
			col *Col
			e   error
		)
		if col, e = NewCol(v, v.VectorType(), d.ColName(names[ind])); e != nil {
			return nil, e
		}

		cols = append(cols, col)
	}

	return NewDFcol(cols)
}

// ***************** DF - Methods *****************

func (df *DF) AppendColumn(col *Col, replace bool) error {
	if col == nil {
		return fmt.Errorf("nil column in AppendColumn")
	}

	if col.Name() == "" {
		return fmt.Errorf("column must have a name to append")
	}

	if len(df.cols) > 0 && col.Len() != df.RowCount() {
		return fmt.Errorf("length mismatch: DF - %d, append col - %d", df.RowCount(), col.Len())
	}

	for ind, c := range df.cols {
		if c.Name() != col.Name() {
			continue
		}

		if !replace {
			return fmt.Errorf("duplicate column name: %s", col.Name())
		}

		df.cols[ind] = col
		return nil
	}

	df.cols = append(df.cols, col)

	return nil
}

func (df *DF) Column(colName string) *Col {
	for _, c := range df.cols {
		if c.Name() == colName {
			return c
		}
	}

	return nil
}

func (df *DF) ColumnCount() int {
	return len(df.cols)
}

func (df *DF) ColumnNames() []string {
	var names []string
	for _, c := range df.cols {
		names = append(names, c.Name())
	}

	return names
}

func (df *DF) Copy() *DF {
	out := &DF{source: df.source}
	for _, c := range df.cols {
		out.cols = append(out.cols, c.Copy())
	}

	return out
}

// Describe returns count, mean, std, min, quartiles and max for each numeric column.
func (df *DF) Describe() (*DF, error) {
	stats, _ := NewCol([]string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}, d.DTstring, d.ColName("statistic"))
	cols := []*Col{stats}

	for _, c := range df.cols {
		if !c.DataType().IsNumeric() {
			continue
		}

		x, _ := c.AsFloat()
		col, e := NewCol(summarize(x), d.DTfloat, d.ColName(c.Name()))
		if e != nil {
			return nil, e
		}

		cols = append(cols, col)
	}

	if len(cols) == 1 {
		return nil, fmt.Errorf("no numeric columns to describe")
	}

	return NewDFcol(cols)
}

func (df *DF) DropColumns(colNames ...string) error {
	for _, cName := range colNames {
		pos := -1
		for ind, c := range df.cols {
			if c.Name() == cName {
				pos = ind
				break
			}
		}

		if pos < 0 {
			return fmt.Errorf("column %s not found", cName)
		}

		df.cols = append(df.cols[:pos], df.cols[pos+1:]...)
	}

	if len(df.cols) == 0 {
		return fmt.Errorf("no columns left")
	}

	return nil
}

func (df *DF) HasColumns(colNames ...string) bool {
	for _, cn := range colNames {
		if df.Column(cn) == nil {
			return false
		}
	}

	return true
}

// KeepColumns returns a new DF with copies of the named columns, in the order given.
func (df *DF) KeepColumns(colNames ...string) (*DF, error) {
	var cols []*Col
	for _, cn := range colNames {
		var c *Col
		if c = df.Column(cn); c == nil {
			return nil, fmt.Errorf("column %s not found", cn)
		}

		cols = append(cols, c.Copy())
	}

	out, e := NewDFcol(cols)
	if e != nil {
		return nil, e
	}

	out.source = df.source

	return out, nil
}

// Query returns the rows satisfying qry, a set of "<column> <op> <value>" clauses joined by "and" or "&".
// For example: "YEAR >= 1980".
func (df *DF) Query(qry string) (*DF, error) {
	var (
		conds []condition
		e     error
	)
	if conds, e = parseConditions(qry); e != nil {
		return nil, e
	}

	indic := make([]bool, df.RowCount())
	for ind := range indic {
		indic[ind] = true
	}

	for _, cond := range conds {
		var col *Col
		if col = df.Column(cond.colName); col == nil {
			return nil, fmt.Errorf("column %s not found in query %q", cond.colName, qry)
		}

		if ex := col.applyCondition(cond, indic); ex != nil {
			return nil, ex
		}
	}

	return df.Where(indic)
}

func (c *Col) applyCondition(cond condition, indic []bool) error {
	if c.DataType() == d.DTstring || cond.quoted {
		fn, e := comparer[string](cond.op)
		if e != nil {
			return e
		}

		x, ex := c.AsString()
		if ex != nil {
			return ex
		}

		for ind, xv := range x {
			indic[ind] = indic[ind] && fn(xv, cond.value)
		}

		return nil
	}

	fn, e := comparer[float64](cond.op)
	if e != nil {
		return e
	}

	var val float64
	if val, e = strconv.ParseFloat(cond.value, 64); e != nil {
		return fmt.Errorf("cannot compare %s to %q", c.Name(), cond.value)
	}

	x, _ := c.AsFloat()
	for ind, xv := range x {
		// missing values never satisfy a comparison
		indic[ind] = indic[ind] && !math.IsNaN(xv) && fn(xv, val)
	}

	return nil
}

func (df *DF) RowCount() int {
	if len(df.cols) == 0 {
		return 0
	}

	return df.cols[0].Len()
}

// Source is the file name or query the DF was loaded from.
func (df *DF) Source() string {
	return df.source
}

// Split returns the sorted distinct values of colName and, for each, the DF of rows with that value.
func (df *DF) Split(colName string) ([]string, []*DF, error) {
	var col *Col
	if col = df.Column(colName); col == nil {
		return nil, nil, fmt.Errorf("column %s not found", colName)
	}

	var (
		codes []int
		e     error
	)
	if codes, _, e = col.Copy().Factor(); e != nil {
		return nil, nil, e
	}

	levels := col.Levels()
	var dfs []*DF
	for lvl := range levels {
		indic := make([]bool, len(codes))
		for ind, code := range codes {
			indic[ind] = code == lvl
		}

		var sub *DF
		if sub, e = df.Where(indic); e != nil {
			return nil, nil, e
		}

		dfs = append(dfs, sub)
	}

	return levels, dfs, nil
}

// Where returns a new DF with the rows for which indic is true.
func (df *DF) Where(indic []bool) (*DF, error) {
	if len(indic) != df.RowCount() {
		return nil, fmt.Errorf("indicator has %d rows, DF has %d", len(indic), df.RowCount())
	}

	out := &DF{source: df.source}
	for _, c := range df.cols {
		v, e := c.Vector.Where(indic)
		if e != nil {
			return nil, e
		}

		col := &Col{Vector: v, ColCore: c.ColCore.Copy()}
		out.cols = append(out.cols, col)
	}

	return out, nil
}

func (df *DF) String() string {
	n := df.RowCount()
	show := min(n, maxPrintRows)
	indic := make([]bool, n)
	for ind := 0; ind < show; ind++ {
		indic[ind] = true
	}

	head, _ := df.Where(indic)

	var (
		header []string
		cols   []any
	)
	for _, c := range head.cols {
		header = append(header, c.Name())
		cols = append(cols, c.AsAny())
	}

	out := prettyPrint(header, cols...)
	if n > show {
		out += fmt.Sprintf("... %d more rows\n", n-show)
	}

	return out + fmt.Sprintf("%d rows x %d columns\n", n, df.ColumnCount())
}
