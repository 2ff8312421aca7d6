package etable

import (
	"fmt"
	"io"
	"strings"

	"github.com/invertedv/panelfe/fe"
)

// TidyHeader names the columns of a tidy row.
var TidyHeader = []string{"Coefficient", "Estimate", "Std. Error", "t value", "Pr(>|t|)", "2.5%", "97.5%"}

// TidyRow is the inference for one coefficient.
type TidyRow struct {
	Coefficient string
	Estimate    float64
	StdError    float64
	TValue      float64
	PValue      float64
	ConfLow     float64
	ConfHigh    float64
}

// Tidy returns one row per coefficient of m.
func Tidy(m *fe.Model) []TidyRow {
	var rows []TidyRow
	for ind, cn := range m.Coefnames {
		rows = append(rows, TidyRow{
			Coefficient: cn,
			Estimate:    m.Coef[ind],
			StdError:    m.SE[ind],
			TValue:      m.TStat[ind],
			PValue:      m.PValue[ind],
			ConfLow:     m.ConfLow[ind],
			ConfHigh:    m.ConfHigh[ind],
		})
	}

	return rows
}

// Summary writes an estimation header, the tidy table and fit statistics for each model.
// Of the options, Labels, Digits and SignifCodes apply.
func Summary(w io.Writer, models []*fe.Model, format Format, opts ...Opt) error {
	var (
		t *Table
		e error
	)
	if t, e = New(models, opts...); e != nil {
		return e
	}

	for _, m := range models {
		fixef := "none"
		if len(m.FixedEffects) > 0 {
			var fl []string
			for _, fx := range m.FixedEffects {
				fl = append(fl, t.label(fx))
			}

			fixef = strings.Join(fl, "+")
		}

		inference := string(m.VcovType)
		if m.VcovType == fe.VcovCRV1 {
			inference += " by " + t.label(m.ClusterVar)
		}

		head := fmt.Sprintf("###\n\nEstimation:  OLS\nDep. var.: %s, Fixed effects: %s\nInference:  %s\nObservations:  %d\n",
			t.label(m.Depvar), fixef, inference, m.N)
		if m.SampleVar != "" {
			head += fmt.Sprintf("Sample:  %s = %s\n", t.label(m.SampleVar), m.SampleValue)
		}

		if _, e = fmt.Fprintln(w, head); e != nil {
			return e
		}

		var rows [][]string
		for _, r := range Tidy(m) {
			rows = append(rows, []string{
				t.label(r.Coefficient),
				t.num(r.Estimate) + t.stars(r.PValue),
				t.num(r.StdError),
				t.num(r.TValue),
				t.num(r.PValue),
				t.num(r.ConfLow),
				t.num(r.ConfHigh),
			})
		}

		if format == HTML {
			if e = writeHTML(w, TidyHeader, rows, t.Note()); e != nil {
				return e
			}
		} else {
			tw := newWriter(w, format)
			tw.SetHeader(TidyHeader)
			tw.AppendBulk(rows)
			tw.Render()
		}

		foot := "---\nRMSE: " + t.num(m.RMSE) + "   R2: " + t.num(m.R2)
		if len(m.FixedEffects) > 0 {
			foot += "   R2 Within: " + t.num(m.R2Within)
		}

		if len(m.Collinear) > 0 {
			foot += "\nDropped as collinear: " + strings.Join(m.Collinear, ", ")
		}

		if _, e = fmt.Fprintln(w, foot+"\n"); e != nil {
			return e
		}
	}

	return nil
}
