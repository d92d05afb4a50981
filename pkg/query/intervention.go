/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: intervention.go
Description: Graph surgery for interventions. Intervened variables are cut from their
parents and fixed; every other variable keeps its conditional distribution given its
parents, estimated from the DAG's joint. The post-intervention joint is the product of
those conditionals (the truncated factorization).
*/

package query

import (
	"strings"

	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/table"
)

// factor is P(name | parents) read off the joint.
type factor struct {
	name    string
	domain  []string
	parents []string
	family  map[string]float64 // P(parents, name)
	margin  map[string]float64 // P(parents)
}

func newFactor(dag *graph.DAG, name string) (*factor, error) {
	f := &factor{name: name, domain: dag.Domain(name), parents: dag.Parents(name)}
	var err error
	if f.family, err = probabilities(dag.Joint(), append(append([]string(nil), f.parents...), name)); err != nil {
		return nil, err
	}
	if f.margin, err = probabilities(dag.Joint(), f.parents); err != nil {
		return nil, err
	}
	return f, nil
}

// conditional returns P(value | parent values). A parent combination with
// no mass leaves the conditional undefined and it counts as zero.
func (f *factor) conditional(parentValues []string, value string) float64 {
	den := f.margin[key(parentValues)]
	if den <= 0 {
		return 0
	}
	return f.family[key(append(parentValues, value))] / den
}

// intervene returns the joint over every variable after fixing the
// intervened ones. Assignments are enumerated in topological order and
// zero-probability branches are pruned.
func intervene(dag *graph.DAG, do Assignment) (*table.Table, error) {
	var factors []*factor
	for _, name := range dag.TopologicalOrder() {
		if _, fixed := do[name]; fixed {
			continue
		}
		f, err := newFactor(dag, name)
		if err != nil {
			return nil, err
		}
		factors = append(factors, f)
	}

	names := dag.Names()
	current := clone(do)
	var rows []table.Row

	var walk func(i int, p float64)
	walk = func(i int, p float64) {
		if i == len(factors) {
			vals := make([]string, len(names))
			for j, n := range names {
				vals[j] = current[n]
			}
			rows = append(rows, table.Row{Values: vals, Prob: p})
			return
		}
		f := factors[i]
		pv := make([]string, len(f.parents), len(f.parents)+1)
		for j, parent := range f.parents {
			pv[j] = current[parent]
		}
		for _, v := range f.domain {
			c := f.conditional(pv, v)
			if c == 0 {
				continue
			}
			current[f.name] = v
			walk(i+1, p*c)
		}
		delete(current, f.name)
	}
	walk(0, 1)

	return table.New(names, rows), nil
}

// probabilities indexes the marginal over fields by joined assignment.
func probabilities(joint *table.Table, fields []string) (map[string]float64, error) {
	m, err := table.Marginalize(joint, fields...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, m.Len())
	for i := 0; i < m.Len(); i++ {
		r := m.Row(i)
		out[key(r.Values)] += r.Prob
	}
	return out, nil
}

func key(values []string) string { return strings.Join(values, "\x00") }
