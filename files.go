package df

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// All code interacting with files is here

const (
	Sep    = ','
	Header = true
	Peek   = 1000
)

// Files reads delimited text files into Vectors.
type Files struct {
	FieldNames []string // if set, only these fields are returned, in this order
	Sep        rune
	Header     bool
	Peek       int  // rows used to impute field types, 0 means all rows
	Strict     bool // if true, a value that doesn't fit the imputed type is an error

	file     *os.File
	fileName string
}

type FileOpt func(f *Files) error

func NewFiles(opts ...FileOpt) (*Files, error) {
	f := &Files{
		Sep:    Sep,
		Header: Header,
		Peek:   Peek,
	}

	for _, opt := range opts {
		if e := opt(f); e != nil {
			return nil, e
		}
	}

	return f, nil
}

// *********** Setters ***********

// FileFieldNames sets the fields to keep. If the file has no header, these name every field in the file.
func FileFieldNames(names ...string) FileOpt {
	return func(f *Files) error {
		for _, nm := range names {
			if e := validName(nm); e != nil {
				return e
			}
		}

		f.FieldNames = names
		return nil
	}
}

func FileHeader(header bool) FileOpt {
	return func(f *Files) error {
		f.Header = header
		return nil
	}
}

func FilePeek(n int) FileOpt {
	return func(f *Files) error {
		if n < 0 {
			return fmt.Errorf("peek must be non-negative, got %d", n)
		}

		f.Peek = n
		return nil
	}
}

func FileSep(sep rune) FileOpt {
	return func(f *Files) error {
		if sep == '\n' || sep == '"' || sep == '\r' {
			return fmt.Errorf("invalid separator %q", sep)
		}

		f.Sep = sep
		return nil
	}
}

func FileStrict(strict bool) FileOpt {
	return func(f *Files) error {
		f.Strict = strict
		return nil
	}
}

// *********** Methods ***********

func (f *Files) Open(fileName string) error {
	var e error
	f.fileName = fileName
	f.file, e = os.Open(fileName)

	return e
}

func (f *Files) FileName() string {
	return f.fileName
}

func (f *Files) Close() error {
	if f.file != nil {
		e := f.file.Close()
		f.file = nil
		return e
	}

	return fmt.Errorf("no open files")
}

// Read reads the open file to the end and returns one Vector per field along with the field names.
func (f *Files) Read() ([]*Vector, []string, error) {
	if f.file == nil {
		return nil, nil, fmt.Errorf("no open file in Files.Read")
	}

	rdr := csv.NewReader(f.file)
	rdr.Comma = f.Sep

	var (
		records [][]string
		e       error
	)
	if records, e = rdr.ReadAll(); e != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", f.fileName, e)
	}

	var header []string
	switch {
	case f.Header:
		if len(records) == 0 {
			return nil, nil, fmt.Errorf("%s is empty", f.fileName)
		}

		for _, h := range records[0] {
			header = append(header, strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		}

		records = records[1:]
	default:
		if f.FieldNames == nil {
			return nil, nil, fmt.Errorf("no header and no field names for %s", f.fileName)
		}

		header = f.FieldNames
		if len(records) > 0 && len(records[0]) != len(header) {
			return nil, nil, fmt.Errorf("got %d field names for %d fields", len(header), len(records[0]))
		}
	}

	keep := header
	if f.FieldNames != nil {
		keep = f.FieldNames
	}

	var vecs []*Vector
	for _, fieldName := range keep {
		var pos int
		if pos = position(fieldName, header); pos < 0 {
			return nil, nil, fmt.Errorf("field %s not in %s", fieldName, f.fileName)
		}

		raw := make([]string, len(records))
		for row, rec := range records {
			raw[row] = rec[pos]
		}

		var (
			v  *Vector
			ex error
		)
		if v, ex = f.toVector(raw); ex != nil {
			return nil, nil, fmt.Errorf("field %s: %w", fieldName, ex)
		}

		vecs = append(vecs, v)
	}

	return vecs, keep, nil
}

// toVector converts raw to the narrowest type that fits the peeked rows. Rows past the peek that don't
// fit promote the vector (int -> float -> string) unless Strict is set.
func (f *Files) toVector(raw []string) (*Vector, error) {
	peek := len(raw)
	if f.Peek > 0 && f.Peek < peek {
		peek = f.Peek
	}

	dt := impute(raw[:peek])
	for {
		v, bad := parseAs(raw, dt)
		if bad < 0 {
			return v, nil
		}

		if f.Strict {
			return nil, fmt.Errorf("row %d value %q is not %s", bad, raw[bad], dt)
		}

		switch dt {
		case DTint:
			dt = DTfloat
		default:
			dt = DTstring
		}
	}
}

func impute(vals []string) DataTypes {
	isInt, isFloat, missing := true, true, false
	for _, val := range vals {
		val = strings.TrimSpace(val)
		if val == "" {
			missing = true
			continue
		}

		if _, e := strconv.ParseInt(val, 10, 64); e != nil {
			isInt = false
		}

		if _, e := strconv.ParseFloat(val, 64); e != nil {
			isFloat = false
		}
	}

	switch {
	case isInt && !missing:
		return DTint
	case isFloat:
		return DTfloat
	default:
		return DTstring
	}
}

// parseAs returns the converted vector and -1, or nil and the first row that doesn't convert.
func parseAs(raw []string, dt DataTypes) (*Vector, int) {
	switch dt {
	case DTint:
		x := make([]int, len(raw))
		for ind, val := range raw {
			i, e := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if e != nil {
				return nil, ind
			}

			x[ind] = int(i)
		}

		return &Vector{dt: DTint, data: x}, -1
	case DTfloat:
		x := make([]float64, len(raw))
		for ind, val := range raw {
			val = strings.TrimSpace(val)
			if val == "" {
				x[ind] = math.NaN()
				continue
			}

			fl, e := strconv.ParseFloat(val, 64)
			if e != nil {
				return nil, ind
			}

			x[ind] = fl
		}

		return &Vector{dt: DTfloat, data: x}, -1
	default:
		x := make([]string, len(raw))
		copy(x, raw)

		return &Vector{dt: DTstring, data: x}, -1
	}
}
