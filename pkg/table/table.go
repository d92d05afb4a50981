/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: table.go
Description: Probability tables for discrete Bayesian networks. A table is either flat
(every variable is a plain field) or keyed (some variables are addressed by lookup
rather than read as fields). The variant is explicit so the join preconditions are
structural checks.
*/

package table

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// ProbField is the conventional name of the probability column.
	ProbField = "prob"
	// Tolerance bounds the rounding error allowed when probabilities must sum to 1.
	Tolerance = 1e-6
)

// Variable is a named discrete variable with an ordered domain.
// Domain order is significant: probability rows align to it.
type Variable struct {
	Name   string   `json:"name" yaml:"name"`
	Domain []string `json:"domain" yaml:"domain"`
}

// Index returns the position of value in the domain, or -1.
func (v Variable) Index(value string) int {
	for i, d := range v.Domain {
		if d == value {
			return i
		}
	}
	return -1
}

// Contains reports whether value belongs to the domain.
func (v Variable) Contains(value string) bool {
	return v.Index(value) >= 0
}

// Assignment maps variable names to values.
type Assignment map[string]string

// Row is a single table row. Key is aligned with the table's key
// variables, Values with its plain fields.
type Row struct {
	Key    []string
	Values []string
	Prob   float64
}

func (r Row) clone() Row {
	return Row{
		Key:    append([]string(nil), r.Key...),
		Values: append([]string(nil), r.Values...),
		Prob:   r.Prob,
	}
}

// Table is an immutable probability table.
type Table struct {
	fields  []string
	key     []string
	hasProb bool
	rows    []Row
}

// New creates a flat table carrying a prob field. Rows are copied.
func New(fields []string, rows []Row) *Table {
	t := &Table{
		fields:  append([]string(nil), fields...),
		hasProb: true,
		rows:    make([]Row, len(rows)),
	}
	for i, r := range rows {
		t.rows[i] = Row{Values: append([]string(nil), r.Values...), Prob: r.Prob}
	}
	return t
}

// NewKeyed creates a table keyed by the given variables. Each row's Key
// holds the values of the key variables, in key order.
func NewKeyed(key, fields []string, rows []Row) *Table {
	t := &Table{
		fields:  append([]string(nil), fields...),
		key:     append([]string(nil), key...),
		hasProb: true,
		rows:    make([]Row, len(rows)),
	}
	for i, r := range rows {
		t.rows[i] = r.clone()
	}
	return t
}

// FromVariable builds the marginal table of a single variable from
// probabilities listed in domain order.
func FromVariable(v Variable, probs []float64) (*Table, error) {
	if len(probs) != len(v.Domain) {
		return nil, schemaf("variable %s: %d probabilities for a domain of %d", v.Name, len(probs), len(v.Domain))
	}
	rows := make([]Row, len(probs))
	for i, p := range probs {
		rows[i] = Row{Values: []string{v.Domain[i]}, Prob: p}
	}
	return New([]string{v.Name}, rows), nil
}

// Fields returns the plain fields in order.
func (t *Table) Fields() []string { return append([]string(nil), t.fields...) }

// Key returns the key variables, empty for a flat table.
func (t *Table) Key() []string { return append([]string(nil), t.key...) }

// IsKeyed reports whether the table is the keyed variant.
func (t *Table) IsKeyed() bool { return len(t.key) > 0 }

// HasProb reports whether the table carries a prob field.
func (t *Table) HasProb() bool { return t.hasProb }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of the i-th row.
func (t *Table) Row(i int) Row { return t.rows[i].clone() }

// Rows returns a copy of all rows.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out
}

// HasField reports whether name is a plain field.
func (t *Table) HasField(name string) bool { return t.fieldIndex(name) >= 0 }

func (t *Table) fieldIndex(name string) int {
	for i, f := range t.fields {
		if f == name {
			return i
		}
	}
	return -1
}

func (t *Table) keyIndex(name string) int {
	for i, k := range t.key {
		if k == name {
			return i
		}
	}
	return -1
}

// Value returns the value of a plain field or key variable in row i.
func (t *Table) Value(i int, name string) (string, bool) {
	if j := t.fieldIndex(name); j >= 0 {
		return t.rows[i].Values[j], true
	}
	if j := t.keyIndex(name); j >= 0 {
		return t.rows[i].Key[j], true
	}
	return "", false
}

// Prob returns the probability of row i.
func (t *Table) Prob(i int) float64 { return t.rows[i].Prob }

// Sum returns the total probability mass.
func (t *Table) Sum() float64 {
	var s float64
	for _, r := range t.rows {
		s += r.Prob
	}
	return s
}

// SetKey moves the named plain fields into the key. Any existing key
// variables stay in front of the new ones.
func (t *Table) SetKey(fields ...string) (*Table, error) {
	idx := make([]int, len(fields))
	moving := make(map[int]bool, len(fields))
	for i, f := range fields {
		j := t.fieldIndex(f)
		if j < 0 {
			return nil, schemaf("cannot key by %q: not a plain field", f)
		}
		idx[i] = j
		moving[j] = true
	}
	out := &Table{
		key:     append(append([]string(nil), t.key...), fields...),
		hasProb: t.hasProb,
		rows:    make([]Row, len(t.rows)),
	}
	for j, f := range t.fields {
		if !moving[j] {
			out.fields = append(out.fields, f)
		}
	}
	for i, r := range t.rows {
		nr := Row{Key: append([]string(nil), r.Key...), Prob: r.Prob}
		for _, j := range idx {
			nr.Key = append(nr.Key, r.Values[j])
		}
		for j, v := range r.Values {
			if !moving[j] {
				nr.Values = append(nr.Values, v)
			}
		}
		out.rows[i] = nr
	}
	return out, nil
}

// ResetKey returns the flat variant: key variables become the leading plain fields.
func (t *Table) ResetKey() *Table {
	if !t.IsKeyed() {
		return t
	}
	out := &Table{
		fields:  append(append([]string(nil), t.key...), t.fields...),
		hasProb: t.hasProb,
		rows:    make([]Row, len(t.rows)),
	}
	for i, r := range t.rows {
		out.rows[i] = Row{
			Values: append(append([]string(nil), r.Key...), r.Values...),
			Prob:   r.Prob,
		}
	}
	return out
}

// WithoutProb returns a copy lacking the prob field.
func (t *Table) WithoutProb() *Table {
	out := t.copy()
	out.hasProb = false
	for i := range out.rows {
		out.rows[i].Prob = 0
	}
	return out
}

// WithoutField returns a copy with a plain field dropped.
func (t *Table) WithoutField(name string) (*Table, error) {
	j := t.fieldIndex(name)
	if j < 0 {
		return nil, schemaf("cannot drop %q: not a plain field", name)
	}
	out := t.copy()
	out.fields = append(out.fields[:j:j], out.fields[j+1:]...)
	for i := range out.rows {
		v := out.rows[i].Values
		out.rows[i].Values = append(v[:j:j], v[j+1:]...)
	}
	return out, nil
}

// Reorder returns a flat copy whose plain fields follow the given order.
// The order must name exactly the table's variables.
func (t *Table) Reorder(fields []string) (*Table, error) {
	flat := t.ResetKey()
	if len(fields) != len(flat.fields) {
		return nil, schemaf("reorder: %d fields given for a table of %d", len(fields), len(flat.fields))
	}
	idx := make([]int, len(fields))
	for i, f := range fields {
		j := flat.fieldIndex(f)
		if j < 0 {
			return nil, schemaf("reorder: unknown field %q", f)
		}
		idx[i] = j
	}
	out := &Table{
		fields:  append([]string(nil), fields...),
		hasProb: flat.hasProb,
		rows:    make([]Row, len(flat.rows)),
	}
	for i, r := range flat.rows {
		vals := make([]string, len(idx))
		for k, j := range idx {
			vals[k] = r.Values[j]
		}
		out.rows[i] = Row{Values: vals, Prob: r.Prob}
	}
	return out, nil
}

func (t *Table) copy() *Table {
	return &Table{
		fields:  append([]string(nil), t.fields...),
		key:     append([]string(nil), t.key...),
		hasProb: t.hasProb,
		rows:    t.Rows(),
	}
}

// String renders the table as aligned text, mostly for debugging and the CLI.
func (t *Table) String() string {
	var b strings.Builder
	cols := append(append([]string(nil), t.key...), t.fields...)
	for i, c := range cols {
		if i < len(t.key) {
			c = "[" + c + "]"
		}
		b.WriteString(fmt.Sprintf("%-10s", c))
	}
	if t.hasProb {
		b.WriteString(ProbField)
	}
	b.WriteString("\n")
	for _, r := range t.rows {
		for _, v := range append(append([]string(nil), r.Key...), r.Values...) {
			b.WriteString(fmt.Sprintf("%-10s", v))
		}
		if t.hasProb {
			b.WriteString(strconv.FormatFloat(r.Prob, 'g', 6, 64))
		}
		b.WriteString("\n")
	}
	return b.String()
}
