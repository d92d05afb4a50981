/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: join.go
Description: Join primitives used to assemble a joint distribution. JoinIndependent
takes the Cartesian product of two tables; JoinDependent folds a conditional table,
keyed by its parents, into a table that carries those parents as plain fields.
*/

package table

import "strings"

// JoinIndependent returns the product distribution of a and b.
// Both tables must carry prob and share no variable. Keyed inputs are
// flattened first. Rows are emitted a-major.
func JoinIndependent(a, b *Table) (*Table, error) {
	if !a.HasProb() {
		return nil, schemaf("independent join: left table has no %s field", ProbField)
	}
	if !b.HasProb() {
		return nil, schemaf("independent join: right table has no %s field", ProbField)
	}
	a, b = a.ResetKey(), b.ResetKey()
	for _, f := range b.fields {
		if a.HasField(f) {
			return nil, schemaf("independent join: both tables carry %q", f)
		}
	}

	out := &Table{
		fields:  append(append([]string(nil), a.fields...), b.fields...),
		hasProb: true,
		rows:    make([]Row, 0, len(a.rows)*len(b.rows)),
	}
	for _, ra := range a.rows {
		for _, rb := range b.rows {
			vals := make([]string, 0, len(ra.Values)+len(rb.Values))
			vals = append(append(vals, ra.Values...), rb.Values...)
			out.rows = append(out.rows, Row{Values: vals, Prob: ra.Prob * rb.Prob})
		}
	}
	return out, nil
}

// JoinDependent folds a conditional table into a marginal one.
//
// parent must be flat, carry prob and hold every key variable of child as a
// plain field. child must carry prob and be keyed. For each parent row the
// matching child block is crossed with it and probabilities multiply. The
// result is flat: the shared variables stay plain fields of the parent side.
func JoinDependent(parent, child *Table) (*Table, error) {
	if !parent.HasProb() {
		return nil, schemaf("dependent join: parent table has no %s field", ProbField)
	}
	if !child.HasProb() {
		return nil, schemaf("dependent join: child table has no %s field", ProbField)
	}
	if parent.IsKeyed() {
		return nil, schemaf("dependent join: parent table must be flat, keyed by %v", parent.key)
	}
	if !child.IsKeyed() {
		return nil, schemaf("dependent join: child table is not keyed")
	}

	idx := make([]int, len(child.key))
	for i, k := range child.key {
		j := parent.fieldIndex(k)
		if j < 0 {
			return nil, schemaf("dependent join: parent table has no plain field %q", k)
		}
		idx[i] = j
	}
	for _, f := range child.fields {
		if parent.HasField(f) {
			return nil, schemaf("dependent join: both tables carry %q", f)
		}
	}

	blocks := make(map[string][]Row)
	for _, r := range child.rows {
		k := joinKey(r.Key)
		blocks[k] = append(blocks[k], r)
	}

	out := &Table{
		fields:  append(append([]string(nil), parent.fields...), child.fields...),
		hasProb: true,
	}
	parentKey := make([]string, len(idx))
	for _, pr := range parent.rows {
		for i, j := range idx {
			parentKey[i] = pr.Values[j]
		}
		for _, cr := range blocks[joinKey(parentKey)] {
			vals := make([]string, 0, len(pr.Values)+len(cr.Values))
			vals = append(append(vals, pr.Values...), cr.Values...)
			out.rows = append(out.rows, Row{Values: vals, Prob: pr.Prob * cr.Prob})
		}
	}
	return out, nil
}

func joinKey(values []string) string {
	return strings.Join(values, "\x00")
}
