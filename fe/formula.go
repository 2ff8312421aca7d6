package fe

import (
	"fmt"
	"strings"
	"unicode"

	d "github.com/invertedv/panelfe"
)

// Formula is a single model: Depvar regressed on Covars, absorbing Fixef.
type Formula struct {
	Depvar string
	Covars []string
	Fixef  []string
}

func (f Formula) String() string {
	s := f.Depvar + " ~ " + strings.Join(f.Covars, " + ")
	if len(f.Covars) == 0 {
		s = f.Depvar + " ~ 1"
	}

	if len(f.Fixef) > 0 {
		s += " | " + strings.Join(f.Fixef, " + ")
	}

	return s
}

// ParseFormula parses "Y ~ X1 + X2 | FE1 + FE2" and expands the multiple estimation operators
// sw, sw0, csw and csw0, returning one Formula per model. Each side may hold at most one operator.
//
//	csw0(ID, YEAR) -> no fixed effects, ID, ID + YEAR
//	csw(ID, YEAR)  -> ID, ID + YEAR
//	sw0(ID, YEAR)  -> no fixed effects, ID, YEAR
//	sw(ID, YEAR)   -> ID, YEAR
//
// The fixed-effect part is the outer loop.
func ParseFormula(fml string) ([]Formula, error) {
	lhsRhs := strings.Split(fml, "~")
	if len(lhsRhs) != 2 {
		return nil, fmt.Errorf("formula must have exactly one ~: %s", fml)
	}

	depvar := strings.TrimSpace(lhsRhs[0])
	if e := checkName(depvar); e != nil {
		return nil, fmt.Errorf("dependent variable: %w", e)
	}

	parts := strings.Split(lhsRhs[1], "|")
	if len(parts) > 2 {
		return nil, fmt.Errorf("formula may have at most one |: %s", fml)
	}

	var (
		covSets [][]string
		e       error
	)
	if covSets, e = expand(parts[0]); e != nil {
		return nil, fmt.Errorf("covariates: %w", e)
	}

	feSets := [][]string{nil}
	if len(parts) == 2 {
		if feSets, e = expand(parts[1]); e != nil {
			return nil, fmt.Errorf("fixed effects: %w", e)
		}
	}

	var out []Formula
	for _, fes := range feSets {
		for _, covs := range covSets {
			for _, cv := range covs {
				if cv == depvar {
					return nil, fmt.Errorf("%s is both dependent variable and covariate", depvar)
				}
			}

			out = append(out, Formula{Depvar: depvar, Covars: covs, Fixef: fes})
		}
	}

	return out, nil
}

// expand splits one side of a formula into terms and expands any operator into a list of term sets.
func expand(side string) ([][]string, error) {
	var (
		terms []string
		e     error
	)
	if terms, e = splitTerms(side); e != nil {
		return nil, e
	}

	var (
		base    []string
		opName  string
		opTerms []string
	)
	for _, term := range terms {
		if pos := strings.Index(term, "("); pos > 0 {
			if opName != "" {
				return nil, fmt.Errorf("only one multiple estimation operator allowed: %s", side)
			}

			opName = strings.TrimSpace(term[:pos])
			if !strings.HasSuffix(term, ")") {
				return nil, fmt.Errorf("unbalanced parentheses in %s", term)
			}

			if opTerms, e = splitArgs(term[pos+1 : len(term)-1]); e != nil {
				return nil, e
			}

			continue
		}

		// "0" and "1" are placeholders for "nothing"
		if term == "0" || term == "1" {
			continue
		}

		if ex := checkName(term); ex != nil {
			return nil, ex
		}

		if d.Has(term, base) {
			return nil, fmt.Errorf("%s appears twice", term)
		}

		base = append(base, term)
	}

	if opName == "" {
		return [][]string{base}, nil
	}

	withBase := func(add ...string) []string {
		var out []string
		out = append(out, base...)
		return append(out, add...)
	}

	var sets [][]string
	switch opName {
	case "sw0":
		sets = append(sets, withBase())
		fallthrough
	case "sw":
		for _, t := range opTerms {
			sets = append(sets, withBase(t))
		}
	case "csw0":
		sets = append(sets, withBase())
		fallthrough
	case "csw":
		for ind := range opTerms {
			sets = append(sets, withBase(opTerms[:ind+1]...))
		}
	default:
		return nil, fmt.Errorf("unknown operator %s", opName)
	}

	return sets, nil
}

func splitTerms(side string) ([]string, error) {
	var (
		terms []string
		depth int
		cur   strings.Builder
	)

	for _, r := range side {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in %s", side)
			}
		case '+':
			if depth == 0 {
				terms = append(terms, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
		}

		if !unicode.IsSpace(r) {
			cur.WriteRune(r)
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in %s", side)
	}

	terms = append(terms, strings.TrimSpace(cur.String()))
	for _, t := range terms {
		if t == "" {
			return nil, fmt.Errorf("empty term in %q", side)
		}
	}

	return terms, nil
}

func splitArgs(args string) ([]string, error) {
	var out []string
	for _, a := range strings.Split(args, ",") {
		a = strings.TrimSpace(a)
		if e := checkName(a); e != nil {
			return nil, e
		}

		out = append(out, a)
	}

	return out, nil
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("empty variable name")
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return fmt.Errorf("illegal variable name %q", name)
		}
	}

	return nil
}
