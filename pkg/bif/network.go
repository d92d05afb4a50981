/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: network.go
Description: Assembles a parsed BIF document into a joint probability table and its
edge list. Root variables are combined with independent joins, then every conditional
table is folded into the running joint with a dependent join.
*/

package bif

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/table"
)

// Network is a fully assembled Bayesian network.
type Network struct {
	Name      string
	Variables []table.Variable
	Joint     *table.Table
	Edges     []graph.Edge
}

// Parse returns the joint probability table and the edge list of a BIF
// document. Nothing partial is returned on failure.
func Parse(text string) (*table.Table, []graph.Edge, error) {
	n, err := ParseNetwork(text)
	if err != nil {
		return nil, nil, err
	}
	return n.Joint, n.Edges, nil
}

// ParseNetwork parses and validates a BIF document and assembles its joint
// distribution. Joint fields follow variable declaration order.
func ParseNetwork(text string) (*Network, error) {
	blocks, err := scanBlocks(text)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		switch b.kind {
		case "network", "variable", "probability":
		default:
			return nil, parseErrorf(b.header, b.line, "unknown block type %q", b.kind)
		}
	}

	name, err := ParseNetworkType(text)
	if err != nil {
		return nil, err
	}
	vars, err := collect(ParseVariables(text))
	if err != nil {
		return nil, err
	}
	roots, err := collect(ParseUnconditionalProbabilities(text))
	if err != nil {
		return nil, err
	}
	conds, err := collect(ParseConditionalProbabilities(text))
	if err != nil {
		return nil, err
	}

	byName := make(map[string]table.Variable, len(vars))
	for _, v := range vars {
		if _, ok := byName[v.Name]; ok {
			return nil, parseErrorf("variable "+v.Name, 0, "duplicate variable")
		}
		byName[v.Name] = v
	}
	if err := validate(byName, vars, roots, conds); err != nil {
		return nil, err
	}

	joint, err := assemble(byName, vars, roots, conds)
	if err != nil {
		return nil, err
	}
	return &Network{
		Name:      name,
		Variables: vars,
		Joint:     joint,
		Edges:     Edges(conds),
	}, nil
}

// Edges derives the deduplicated parent -> child edges of the conditional
// tables, in first-seen order.
func Edges(conds []Conditional) []graph.Edge {
	seen := make(map[graph.Edge]bool)
	var edges []graph.Edge
	for _, c := range conds {
		for _, p := range c.Parents {
			e := graph.Edge{Parent: p, Child: c.Child}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}

func validate(byName map[string]table.Variable, vars []table.Variable, roots []Unconditional, conds []Conditional) error {
	defined := make(map[string]bool, len(vars))
	define := func(child string) error {
		block := "probability ( " + child + " )"
		if _, ok := byName[child]; !ok {
			return parseErrorf(block, 0, "undeclared variable %q", child)
		}
		if defined[child] {
			return parseErrorf(block, 0, "more than one probability block for %q", child)
		}
		defined[child] = true
		return nil
	}

	for _, u := range roots {
		if err := define(u.Variable); err != nil {
			return err
		}
		v := byName[u.Variable]
		if err := checkDistribution("probability ( "+u.Variable+" )", v, u.Probs); err != nil {
			return err
		}
	}

	for _, c := range conds {
		if err := define(c.Child); err != nil {
			return err
		}
		if err := checkConditional(byName, c); err != nil {
			return err
		}
	}

	for _, v := range vars {
		if !defined[v.Name] {
			return parseErrorf("variable "+v.Name, 0, "no probability block")
		}
	}
	if len(roots) == 0 {
		return parseErrorf("", 0, "network has no unconditional variable")
	}
	return nil
}

func checkConditional(byName map[string]table.Variable, c Conditional) error {
	block := fmt.Sprintf("probability ( %s | %s )", c.Child, strings.Join(c.Parents, ", "))
	child := byName[c.Child]

	size := 1
	parents := make([]table.Variable, len(c.Parents))
	for i, p := range c.Parents {
		v, ok := byName[p]
		if !ok {
			return parseErrorf(block, 0, "undeclared parent %q", p)
		}
		if p == c.Child {
			return parseErrorf(block, 0, "%q is its own parent", p)
		}
		for _, q := range c.Parents[:i] {
			if q == p {
				return parseErrorf(block, 0, "parent %q listed twice", p)
			}
		}
		parents[i] = v
		size *= len(v.Domain)
	}
	if len(c.Rows) != size {
		return parseErrorf(block, 0, "%d rows for %d parent combinations", len(c.Rows), size)
	}

	seen := make(map[string]bool, len(c.Rows))
	for _, r := range c.Rows {
		for i, val := range r.Parents {
			if !parents[i].Contains(val) {
				return parseErrorf(block, 0, "value %q outside the domain of %s", val, parents[i].Name)
			}
		}
		k := strings.Join(r.Parents, "\x00")
		if seen[k] {
			return parseErrorf(block, 0, "duplicate parent combination (%s)", strings.Join(r.Parents, ", "))
		}
		seen[k] = true
		if err := checkDistribution(block, child, r.Probs); err != nil {
			return err
		}
	}
	return nil
}

// checkDistribution validates one distribution over a variable's domain.
func checkDistribution(block string, v table.Variable, probs []float64) error {
	if len(probs) != len(v.Domain) {
		return parseErrorf(block, 0, "%d probabilities for the %d values of %s", len(probs), len(v.Domain), v.Name)
	}
	var sum float64
	for _, p := range probs {
		if p < 0 {
			return parseErrorf(block, 0, "negative probability %g", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > table.Tolerance {
		return parseErrorf(block, 0, "probabilities of %s sum to %g", v.Name, sum)
	}
	return nil
}

func assemble(byName map[string]table.Variable, vars []table.Variable, roots []Unconditional, conds []Conditional) (*table.Table, error) {
	var joint *table.Table
	for _, u := range roots {
		t, err := table.FromVariable(byName[u.Variable], u.Probs)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if joint == nil {
			joint = t
			continue
		}
		if joint, err = table.JoinIndependent(joint, t); err != nil {
			return nil, fmt.Errorf("%w: joining %s: %w", ErrParse, u.Variable, err)
		}
	}

	// A conditional waits until every parent is in the joint.
	pending := conds
	for len(pending) > 0 {
		var deferred []Conditional
		for _, c := range pending {
			if !hasFields(joint, c.Parents) {
				deferred = append(deferred, c)
				continue
			}
			var err error
			if joint, err = table.JoinDependent(joint, conditionalTable(byName[c.Child], c)); err != nil {
				return nil, fmt.Errorf("%w: joining %s: %w", ErrParse, c.Child, err)
			}
		}
		if len(deferred) == len(pending) {
			names := make([]string, len(deferred))
			for i, c := range deferred {
				names[i] = c.Child
			}
			return nil, parseErrorf("", 0, "unresolvable dependencies for %s", strings.Join(names, ", "))
		}
		pending = deferred
	}

	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	ordered, err := joint.Reorder(names)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return ordered, nil
}

// conditionalTable keys a conditional declaration by its parent combination.
func conditionalTable(child table.Variable, c Conditional) *table.Table {
	rows := make([]table.Row, 0, len(c.Rows)*len(child.Domain))
	for _, r := range c.Rows {
		for i, p := range r.Probs {
			rows = append(rows, table.Row{
				Key:    r.Parents,
				Values: []string{child.Domain[i]},
				Prob:   p,
			})
		}
	}
	return table.NewKeyed(c.Parents, []string{c.Child}, rows)
}

func hasFields(t *table.Table, names []string) bool {
	for _, n := range names {
		if !t.HasField(n) {
			return false
		}
	}
	return true
}

// collect drains a sequence, stopping at the first error.
func collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
