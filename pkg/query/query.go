/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: query.go
Description: Causal queries over a DAG. A query records interventions (do) and evidence
(given), validating every assignment as it is made, and computes posterior
distributions of the remaining variables by exact enumeration.
*/

package query

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/table"
)

// ErrValidation reports an invalid do or given assignment.
var ErrValidation = errors.New("query validation failed")

// Assignment maps variable names to values.
type Assignment = table.Assignment

// Query is a builder over a DAG. It is not safe for concurrent use; the
// DAG it reads may be shared by any number of queries.
type Query struct {
	dag   *graph.DAG
	do    Assignment
	given Assignment
	err   error
}

// New starts a query against dag. A DAG carrying an edge error makes the
// query invalid from the start.
func New(dag *graph.DAG) *Query {
	q := &Query{dag: dag, do: Assignment{}, given: Assignment{}}
	switch {
	case dag == nil:
		q.err = fmt.Errorf("%w: nil DAG", ErrValidation)
	case dag.Err() != nil:
		q.err = fmt.Errorf("%w: %w", ErrValidation, dag.Err())
	}
	return q
}

// Do records interventions. Pairs are validated in variable name order;
// the first invalid pair is not stored and makes later calls no-ops.
func (q *Query) Do(a Assignment) *Query {
	q.assign("do", q.do, q.given, a)
	return q
}

// Given records evidence, validated like Do against the interventions.
func (q *Query) Given(a Assignment) *Query {
	q.assign("given", q.given, q.do, a)
	return q
}

func (q *Query) assign(kind string, into, other, a Assignment) {
	if q.err != nil {
		return
	}
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		value := a[name]
		v, ok := q.dag.Variable(name)
		if !ok {
			q.err = fmt.Errorf("%w: %s: unknown variable %q", ErrValidation, kind, name)
			return
		}
		if !v.Contains(value) {
			q.err = fmt.Errorf("%w: %s: value %q outside the domain %v of %s", ErrValidation, kind, value, v.Domain, name)
			return
		}
		if _, clash := other[name]; clash {
			q.err = fmt.Errorf("%w: %s: %q is assigned by both do and given", ErrValidation, kind, name)
			return
		}
		into[name] = value
	}
}

// DoAssignments returns a copy of the recorded interventions.
func (q *Query) DoAssignments() Assignment { return clone(q.do) }

// GivenAssignments returns a copy of the recorded evidence.
func (q *Query) GivenAssignments() Assignment { return clone(q.given) }

// Err returns the first validation failure, if any.
func (q *Query) Err() error { return q.err }

// Targets returns the variables the posterior covers: every variable
// neither intervened on nor observed, in construction order.
func (q *Query) Targets() []string {
	var out []string
	for _, n := range q.dag.Names() {
		_, fixed := q.do[n]
		_, seen := q.given[n]
		if !fixed && !seen {
			out = append(out, n)
		}
	}
	return out
}

// InferJoint returns the normalized joint distribution of the target
// variables under the recorded interventions and evidence.
func (q *Query) InferJoint() (*table.Table, error) {
	if q.err != nil {
		return nil, q.err
	}

	dist := q.dag.Joint()
	if len(q.do) > 0 {
		var err error
		if dist, err = intervene(q.dag, q.do); err != nil {
			return nil, err
		}
	}

	evidence := clone(q.given)
	for n, v := range q.do {
		evidence[n] = v
	}
	filtered, err := table.Filter(dist, evidence)
	if err != nil {
		return nil, err
	}
	reduced, err := table.Marginalize(filtered, q.Targets()...)
	if err != nil {
		return nil, err
	}
	return table.Normalize(reduced)
}

// Infer returns the posterior distribution of every target variable.
// Evidence with zero probability fails with table.ErrZeroMass.
func (q *Query) Infer() (Posterior, error) {
	joint, err := q.InferJoint()
	if err != nil {
		return nil, err
	}
	post := make(Posterior, len(joint.Fields()))
	for _, name := range joint.Fields() {
		m, err := table.Marginalize(joint, name)
		if err != nil {
			return nil, err
		}
		domain := q.dag.Domain(name)
		d := Distribution{Variable: name, Values: domain, Probs: make([]float64, len(domain))}
		for r := 0; r < m.Len(); r++ {
			row := m.Row(r)
			if i := indexOf(domain, row.Values[0]); i >= 0 {
				d.Probs[i] += row.Prob
			}
		}
		post[name] = d
	}
	return post, nil
}

func (q *Query) String() string {
	return fmt.Sprintf("Query(do=%v, given=%v)", q.do, q.given)
}

func clone(a Assignment) Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func indexOf(values []string, v string) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return -1
}
