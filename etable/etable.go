// Package etable formats fitted fixed-effects models as regression tables.
package etable

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/invertedv/panelfe/fe"
	"github.com/olekukonko/tablewriter"
)

type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	HTML     Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, Markdown, HTML:
		return f, nil
	}

	return "", fmt.Errorf("unknown table format %q, must be text, markdown or html", s)
}

// Table is a side-by-side regression table of one or more models.
type Table struct {
	models []*fe.Model

	signif []float64
	labels map[string]string
	showSE bool
	digits int
}

type Opt func(t *Table) error

// SignifCodes sets the p-value thresholds for ***, ** and *. Default: 0.01, 0.05, 0.1.
func SignifCodes(codes []float64) Opt {
	return func(t *Table) error {
		if len(codes) != 3 {
			return fmt.Errorf("need 3 significance codes, got %d", len(codes))
		}

		for ind, c := range codes {
			if c <= 0 || c >= 1 {
				return fmt.Errorf("significance code %v not in (0,1)", c)
			}

			if ind > 0 && c <= codes[ind-1] {
				return fmt.Errorf("significance codes must increase: %v", codes)
			}
		}

		t.signif = append([]float64{}, codes...)
		return nil
	}
}

// Labels maps variable names to the text shown in the table. Unmapped names are shown as is.
func Labels(labels map[string]string) Opt {
	return func(t *Table) error {
		for k, v := range labels {
			t.labels[k] = v
		}

		return nil
	}
}

func ShowSEType(show bool) Opt {
	return func(t *Table) error {
		t.showSE = show
		return nil
	}
}

// Digits sets the number of decimals.
func Digits(digits int) Opt {
	return func(t *Table) error {
		if digits < 0 || digits > 10 {
			return fmt.Errorf("digits must be in [0,10], got %d", digits)
		}

		t.digits = digits
		return nil
	}
}

// ***************** Table - Create *****************

func New(models []*fe.Model, opts ...Opt) (*Table, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("no models for table")
	}

	for ind, m := range models {
		if m == nil {
			return nil, fmt.Errorf("model %d is nil", ind)
		}
	}

	t := &Table{
		models: models,
		signif: []float64{0.01, 0.05, 0.1},
		labels: make(map[string]string),
		showSE: true,
		digits: 3,
	}

	for _, opt := range opts {
		if e := opt(t); e != nil {
			return nil, e
		}
	}

	return t, nil
}

// ***************** Table - Methods *****************

// Grid returns the table as a header and rows of cells.
func (t *Table) Grid() (header []string, rows [][]string) {
	header = []string{""}
	for ind := range t.models {
		header = append(header, fmt.Sprintf("(%d)", ind+1))
	}

	row := func(name string, cell func(m *fe.Model) string) {
		r := []string{name}
		for _, m := range t.models {
			r = append(r, cell(m))
		}

		rows = append(rows, r)
	}

	row("Dep. var.", func(m *fe.Model) string { return t.label(m.Depvar) })

	split := false
	for _, m := range t.models {
		split = split || m.SampleVar != ""
	}

	if split {
		row("Sample", func(m *fe.Model) string {
			if m.SampleVar == "" {
				return "all"
			}

			return t.label(m.SampleVar) + " = " + m.SampleValue
		})
	}

	for _, cn := range t.coefNames() {
		row(t.label(cn), func(m *fe.Model) string {
			b, _, ok := m.Coefficient(cn)
			if !ok {
				return ""
			}

			return t.num(b) + t.stars(m.PValue[index(cn, m.Coefnames)])
		})
		row("", func(m *fe.Model) string {
			_, se, ok := m.Coefficient(cn)
			if !ok {
				return ""
			}

			return "(" + t.num(se) + ")"
		})
	}

	for _, fx := range t.fixefNames() {
		row(t.label(fx), func(m *fe.Model) string {
			if m.HasFixef(fx) {
				return "x"
			}

			return "-"
		})
	}

	row("Observations", func(m *fe.Model) string { return strconv.Itoa(m.N) })

	if t.showSE {
		row("S.E. type", func(m *fe.Model) string {
			if m.VcovType == fe.VcovCRV1 {
				return "by: " + t.label(m.ClusterVar)
			}

			return m.VcovLabel()
		})
	}

	row("R2", func(m *fe.Model) string { return t.num(m.R2) })

	if len(t.fixefNames()) > 0 {
		row("R2 Within", func(m *fe.Model) string { return t.num(m.R2Within) })
	}

	return header, rows
}

// Note describes the significance codes and the cell layout.
func (t *Table) Note() string {
	return fmt.Sprintf("Significance levels: * p < %v, ** p < %v, *** p < %v. Format of coefficient cell: Coefficient (Std. Error)",
		t.signif[2], t.signif[1], t.signif[0])
}

// Render writes the table to w in the given format.
func (t *Table) Render(w io.Writer, format Format) error {
	header, rows := t.Grid()

	switch format {
	case Text, Markdown:
		tw := newWriter(w, format)
		tw.SetHeader(header)
		tw.AppendBulk(rows)
		tw.Render()

		_, e := fmt.Fprintln(w, t.Note())
		return e
	case HTML:
		return writeHTML(w, header, rows, t.Note())
	}

	return fmt.Errorf("unknown table format %q", format)
}

func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb, Text)

	return sb.String()
}

func (t *Table) label(name string) string {
	if l, ok := t.labels[name]; ok {
		return l
	}

	return name
}

func (t *Table) num(x float64) string {
	if math.IsNaN(x) {
		return "-"
	}

	return strconv.FormatFloat(x, 'f', t.digits, 64)
}

func (t *Table) stars(p float64) string {
	switch {
	case p < t.signif[0]:
		return "***"
	case p < t.signif[1]:
		return "**"
	case p < t.signif[2]:
		return "*"
	}

	return ""
}

// coefNames is the union of the coefficients of the models in order of first appearance.
func (t *Table) coefNames() []string {
	var names []string
	for _, m := range t.models {
		for _, cn := range m.Coefnames {
			if index(cn, names) < 0 {
				names = append(names, cn)
			}
		}
	}

	return names
}

func (t *Table) fixefNames() []string {
	var names []string
	for _, m := range t.models {
		for _, fx := range m.FixedEffects {
			if index(fx, names) < 0 {
				names = append(names, fx)
			}
		}
	}

	return names
}

// ***************** Helpers *****************

func newWriter(w io.Writer, format Format) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)
	tw.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)

	if format == Markdown {
		tw.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		tw.SetCenterSeparator("|")
	}

	return tw
}

func writeHTML(w io.Writer, header []string, rows [][]string, note string) error {
	var sb strings.Builder
	sb.WriteString("<table>\n<thead>\n<tr>")
	for _, h := range header {
		sb.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}

	sb.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, r := range rows {
		sb.WriteString("<tr>")
		for _, c := range r {
			sb.WriteString("<td>" + html.EscapeString(c) + "</td>")
		}

		sb.WriteString("</tr>\n")
	}

	sb.WriteString("</tbody>\n")
	fmt.Fprintf(&sb, "<caption>%s</caption>\n</table>\n", html.EscapeString(note))

	_, e := io.WriteString(w, sb.String())

	return e
}

func index(needle string, haystack []string) int {
	for ind, straw := range haystack {
		if straw == needle {
			return ind
		}
	}

	return -1
}
