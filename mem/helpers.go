package mem

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ***************** Comparisons *****************

var compOps = []string{">=", "<=", "==", "!=", ">", "<"}

// comparer returns the comparison function for op.
func comparer[T float64 | string](op string) (func(a, b T) bool, error) {
	switch op {
	case ">":
		return func(a, b T) bool { return a > b }, nil
	case "<":
		return func(a, b T) bool { return a < b }, nil
	case ">=":
		return func(a, b T) bool { return a >= b }, nil
	case "<=":
		return func(a, b T) bool { return a <= b }, nil
	case "==":
		return func(a, b T) bool { return a == b }, nil
	case "!=":
		return func(a, b T) bool { return a != b }, nil
	}

	return nil, fmt.Errorf("unknown comparison: %s", op)
}

// condition is a parsed "<column> <op> <value>" clause.
type condition struct {
	colName string
	op      string
	value   string
	quoted  bool
}

// parseConditions splits a query into clauses joined by "and" or "&".
func parseConditions(qry string) ([]condition, error) {
	qry = strings.ReplaceAll(qry, "&&", "&")
	var clauses []string
	for _, part := range strings.Split(qry, "&") {
		clauses = append(clauses, splitAnd(part)...)
	}

	var conds []condition
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			return nil, fmt.Errorf("empty clause in query %q", qry)
		}

		// the operator sits before any quoted value
		lhs := clause
		if q := strings.IndexAny(clause, `"'`); q >= 0 {
			lhs = clause[:q]
		}

		var c *condition
		for _, op := range compOps {
			if pos := strings.Index(lhs, op); pos > 0 {
				c = &condition{
					colName: strings.TrimSpace(clause[:pos]),
					op:      op,
					value:   strings.TrimSpace(clause[pos+len(op):]),
				}
				break
			}
		}

		if c == nil || c.colName == "" || c.value == "" {
			return nil, fmt.Errorf("cannot parse clause %q", clause)
		}

		if unq, e := strconv.Unquote(c.value); e == nil {
			c.value, c.quoted = unq, true
		} else if len(c.value) >= 2 && c.value[0] == '\'' && c.value[len(c.value)-1] == '\'' {
			c.value, c.quoted = c.value[1:len(c.value)-1], true
		}

		conds = append(conds, *c)
	}

	return conds, nil
}

func splitAnd(s string) []string {
	var out []string
	fields := strings.Fields(s)
	start := 0
	for ind, f := range fields {
		if strings.EqualFold(f, "and") {
			out = append(out, strings.Join(fields[start:ind], " "))
			start = ind + 1
		}
	}

	return append(out, strings.Join(fields[start:], " "))
}

// ***************** Statistics *****************

// quantile returns the p quantile of sorted x by linear interpolation between closest ranks.
func quantile(p float64, x []float64) float64 {
	h := p * float64(len(x)-1)
	lo := math.Floor(h)
	ind := int(lo)
	if ind+1 >= len(x) {
		return x[len(x)-1]
	}

	return x[ind] + (h-lo)*(x[ind+1]-x[ind])
}

// ***************** Printing *****************

func prettyPrint(header []string, cols ...any) string {
	var colsS [][]string

	for ind := 0; ind < len(cols); ind++ {
		colsS = append(colsS, stringSlice(header[ind], cols[ind]))
	}

	out := ""
	for row := 0; row < len(colsS[0]); row++ {
		for c := 0; c < len(colsS); c++ {
			out += colsS[c][row]
		}
		out += "\n"
	}

	return out
}

func stringSlice(header string, inVal any) []string {
	const pad = 3
	c := []string{header}

	var (
		n       int
		numeric bool
	)
	switch x := inVal.(type) {
	case []float64:
		format := selectFormat(x)
		for _, xv := range x {
			c = append(c, fmt.Sprintf(format, xv))
		}
		n, numeric = len(x), true
	case []int:
		for _, xv := range x {
			c = append(c, fmt.Sprintf("%d", xv))
		}
		n, numeric = len(x), true
	case []string:
		c = append(c, x...)
		n = len(x)
	default:
		panic(fmt.Errorf("unsupported data type"))
	}

	maxLen := len(header)
	for ind := 0; ind <= n; ind++ {
		if l := len(c[ind]); l > maxLen {
			maxLen = l
		}
	}

	for ind, cx := range c {
		padded := cx + strings.Repeat(" ", maxLen-len(cx)+pad)
		if numeric {
			padded = strings.Repeat(" ", maxLen-len(cx)+pad) + cx
		}
		c[ind] = padded
	}

	return c
}

func selectFormat(x []float64) string {
	var finite []float64
	for _, xv := range x {
		if !math.IsNaN(xv) && !math.IsInf(xv, 0) {
			finite = append(finite, math.Abs(xv))
		}
	}

	if len(finite) == 0 {
		return "%.1f"
	}

	minX, maxX := finite[0], finite[0]
	for _, xva := range finite {
		if xva < minX {
			minX = xva
		}

		if xva > maxX {
			maxX = xva
		}
	}

	rangeX := maxX - minX
	l := math.Log10(rangeX)
	var dp int
	switch {
	case rangeX == 0:
		dp = 2
	case l < -1:
		dp = int(math.Abs(l)+0.5) + 1
	case l > 1:
		dp = 0
	default:
		dp = 3
	}

	return "%." + fmt.Sprintf("%d", dp) + "f"
}
