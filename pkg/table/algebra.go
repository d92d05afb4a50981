/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: algebra.go
Description: Marginalisation, evidence filtering and normalisation over probability
tables. These are the reductions the query engine applies after the joint table has
been assembled.
*/

package table

import (
	"fmt"
	"sort"
)

// Marginalize sums out every variable not listed in fields. The result is
// flat, ordered by first appearance of each assignment.
func Marginalize(t *Table, fields ...string) (*Table, error) {
	if !t.HasProb() {
		return nil, schemaf("marginalize: table has no %s field", ProbField)
	}
	flat := t.ResetKey()
	idx := make([]int, len(fields))
	for i, f := range fields {
		j := flat.fieldIndex(f)
		if j < 0 {
			return nil, schemaf("marginalize: unknown field %q", f)
		}
		idx[i] = j
	}

	out := &Table{fields: append([]string(nil), fields...), hasProb: true}
	pos := make(map[string]int)
	for _, r := range flat.rows {
		vals := make([]string, len(idx))
		for i, j := range idx {
			vals[i] = r.Values[j]
		}
		k := joinKey(vals)
		if p, ok := pos[k]; ok {
			out.rows[p].Prob += r.Prob
			continue
		}
		pos[k] = len(out.rows)
		out.rows = append(out.rows, Row{Values: vals, Prob: r.Prob})
	}
	return out, nil
}

// Filter keeps the rows consistent with every pair in the assignment.
// Every assigned variable must be a field or key variable of t.
func Filter(t *Table, a Assignment) (*Table, error) {
	flat := t.ResetKey()
	names := sortedNames(a)
	idx := make([]int, len(names))
	for i, n := range names {
		j := flat.fieldIndex(n)
		if j < 0 {
			return nil, schemaf("filter: unknown field %q", n)
		}
		idx[i] = j
	}

	out := &Table{fields: append([]string(nil), flat.fields...), hasProb: flat.hasProb}
	for _, r := range flat.rows {
		keep := true
		for i, j := range idx {
			if r.Values[j] != a[names[i]] {
				keep = false
				break
			}
		}
		if keep {
			out.rows = append(out.rows, r.clone())
		}
	}
	return out, nil
}

// Normalize rescales probabilities so they sum to 1.
func Normalize(t *Table) (*Table, error) {
	if !t.HasProb() {
		return nil, schemaf("normalize: table has no %s field", ProbField)
	}
	total := t.Sum()
	if total <= 0 {
		return nil, fmt.Errorf("%w: cannot normalize %d rows", ErrZeroMass, t.Len())
	}
	out := t.copy()
	for i := range out.rows {
		out.rows[i].Prob /= total
	}
	return out, nil
}

// Lookup returns the summed probability of all rows consistent with the assignment.
func Lookup(t *Table, a Assignment) (float64, error) {
	f, err := Filter(t, a)
	if err != nil {
		return 0, err
	}
	return f.Sum(), nil
}

func sortedNames(a Assignment) []string {
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
