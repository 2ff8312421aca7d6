package df

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"
)

// All code interacting with a database is here. Data sources are read only.

const (
	ch = "clickhouse"
	pg = "postgres"
)

// Dialect wraps a database connection and the SQL needed to pull a query into Vectors.
type Dialect struct {
	db      *sql.DB
	dialect string
}

func NewDialect(dialect string, db *sql.DB) (*Dialect, error) {
	dialect = strings.ToLower(dialect)
	if dialect != ch && dialect != pg {
		return nil, fmt.Errorf("unsupported database %s", dialect)
	}

	if db == nil {
		return nil, fmt.Errorf("nil database in NewDialect")
	}

	return &Dialect{db: db, dialect: dialect}, nil
}

// ***************** Methods *****************

func (d *Dialect) Close() error {
	return d.db.Close()
}

func (d *Dialect) DB() *sql.DB {
	return d.db
}

func (d *Dialect) DialectName() string {
	return d.dialect
}

// Load runs qry and returns the result as one Vector per field. NULLs become NaN for floats;
// a NULL in any other field is an error.
func (d *Dialect) Load(qry string) ([]*Vector, []string, error) {
	fieldNames, fieldTypes, row2read, e1 := d.Types(qry)
	if e1 != nil {
		return nil, nil, e1
	}

	var (
		n       int
		e2      error
		memData []*Vector
	)
	if n, e2 = d.RowCount(qry); e2 != nil {
		return nil, nil, e2
	}

	for ind := 0; ind < len(fieldTypes); ind++ {
		memData = append(memData, MakeVector(fieldTypes[ind], n))
	}

	var (
		rows *sql.Rows
		e3   error
	)
	if rows, e3 = d.db.Query(qry); e3 != nil {
		return nil, nil, e3
	}
	defer func() { _ = rows.Close() }()

	indx := 0
	for rows.Next() {
		if indx >= n {
			return nil, nil, fmt.Errorf("query returned more than %d rows", n)
		}

		if e4 := rows.Scan(row2read...); e4 != nil {
			return nil, nil, e4
		}

		for ind := 0; ind < len(memData); ind++ {
			var z = *row2read[ind].(*any)
			if z == nil {
				if memData[ind].VectorType() != DTfloat {
					return nil, nil, fmt.Errorf("NULL in non-float field %s", fieldNames[ind])
				}

				z = math.NaN()
			}

			if e5 := assign(memData[ind], z, indx); e5 != nil {
				return nil, nil, fmt.Errorf("field %s: %w", fieldNames[ind], e5)
			}
		}

		indx++
	}

	if e6 := rows.Err(); e6 != nil {
		return nil, nil, e6
	}

	return memData, fieldNames, nil
}

func (d *Dialect) RowCount(qry string) (int, error) {
	const skeleton = "WITH %s AS (%s) SELECT count(*) AS n FROM %s"
	var n int

	sig := d.withName()
	q := fmt.Sprintf(skeleton, sig, qry, sig)
	row := d.db.QueryRow(q)
	if e := row.Scan(&n); e != nil {
		return 0, e
	}

	return n, nil
}

// Types returns the field names and types of qry along with a slice suitable for rows.Scan.
func (d *Dialect) Types(qry string) (fieldNames []string, fieldTypes []DataTypes, row2read []any, err error) {
	const skeleton = "WITH %s AS (%s) SELECT * FROM %s LIMIT 1"

	sig := d.withName()
	q := fmt.Sprintf(skeleton, sig, qry, sig)

	var (
		r      *sql.Rows
		ct     []*sql.ColumnType
		e0, e1 error
	)
	if r, e0 = d.db.Query(q); e0 != nil {
		return nil, nil, nil, e0
	}
	defer func() { _ = r.Close() }()

	if ct, e1 = r.ColumnTypes(); e1 != nil {
		return nil, nil, nil, e1
	}

	var ry []any
	for ind := 0; ind < len(ct); ind++ {
		var x any
		ry = append(ry, &x)
	}

	if !r.Next() {
		return nil, nil, nil, fmt.Errorf("query returned no rows: %s", qry)
	}

	if e2 := r.Scan(ry...); e2 != nil {
		return nil, nil, nil, e2
	}

	for ind := 0; ind < len(ry); ind++ {
		fieldNames = append(fieldNames, ct[ind].Name())

		var dt DataTypes
		switch z := (*ry[ind].(*any)).(type) {
		case int, int8, int16, int32, int64, *int, *int8, *int16, *int32, *int64,
			uint, uint8, uint16, uint32, uint64, *uint, *uint8, *uint16, *uint32, *uint64:
			dt = DTint
		case float32, float64, *float32, *float64, nil:
			dt = DTfloat
		case string, *string, []byte, time.Time, *time.Time:
			dt = DTstring
		default:
			return nil, nil, nil, fmt.Errorf("unsupported type %T for field %s", z, ct[ind].Name())
		}

		fieldTypes = append(fieldTypes, dt)
	}

	return fieldNames, fieldTypes, ry, nil
}

func (d *Dialect) withName() string {
	const wLen = 4
	return RandomLetters(wLen)
}

// assign assigns the indx element of v to be val
func assign(v *Vector, val any, indx int) error {
	switch x := val.(type) {
	case float32:
		return v.SetFloat(float64(x), indx)
	case float64:
		return v.SetFloat(x, indx)
	case *float32:
		return v.SetFloat(float64(*x), indx)
	case *float64:
		return v.SetFloat(*x, indx)
	case string:
		return v.SetString(x, indx)
	case *string:
		return v.SetString(*x, indx)
	case []byte:
		return v.SetString(string(x), indx)
	case time.Time:
		return v.SetString(x.Format(time.DateOnly), indx)
	case *time.Time:
		return v.SetString(x.Format(time.DateOnly), indx)
	}

	if i, ok := toInt(derefInt(val)); ok {
		if v.VectorType() == DTfloat {
			return v.SetFloat(float64(i.(int)), indx)
		}

		return v.SetInt(i.(int), indx)
	}

	return fmt.Errorf("unsupported data type %T in Dialect.Load", val)
}

func derefInt(val any) any {
	switch x := val.(type) {
	case *int:
		return *x
	case *int8:
		return *x
	case *int16:
		return *x
	case *int32:
		return *x
	case *int64:
		return *x
	case *uint:
		return *x
	case *uint8:
		return *x
	case *uint16:
		return *x
	case *uint32:
		return *x
	case *uint64:
		return *x
	}

	return val
}
