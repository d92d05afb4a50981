/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dag.go
Description: Directed acyclic graph over discrete variables together with their joint
distribution. The joint is either supplied directly or estimated as empirical relative
frequencies from a sample of realizations. Edges are added one at a time and every
addition is validated before it is accepted.
*/

package graph

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kleascm/causalnet/pkg/dataset"
	"github.com/kleascm/causalnet/pkg/table"
)

// Edge is a direct causal influence of Parent on Child.
type Edge struct {
	Parent string `json:"parent" yaml:"parent"`
	Child  string `json:"child" yaml:"child"`
}

func (e Edge) String() string { return e.Parent + " -> " + e.Child }

// DAG holds a fixed variable set, an acyclic edge set and a joint distribution.
//
// Construction is not safe for concurrent use. Once edges are in place the
// DAG is only read, and concurrent queries need no synchronisation.
type DAG struct {
	variables []table.Variable
	index     map[string]int
	edges     []Edge
	parents   map[string][]string
	children  map[string][]string
	joint     *table.Table

	err error
}

// New derives a DAG from a sample of realizations. Variables are the
// sample's columns except prob. Without a prob column every observation
// weighs 1 and the joint holds empirical relative frequencies; with one,
// its values are the row weights.
func New(data *dataset.Realizations) (*DAG, error) {
	if data == nil || data.Len() == 0 {
		return nil, invalidf("empty realizations sample")
	}
	probCol := data.Index(table.ProbField)

	var names []string
	var cols []int
	for j, c := range data.Columns {
		if j == probCol {
			continue
		}
		names = append(names, c)
		cols = append(cols, j)
	}
	if len(names) == 0 {
		return nil, invalidf("realizations sample has no variable columns")
	}

	vars := make([]table.Variable, len(names))
	for i, name := range names {
		domain, ok := data.Domains[name]
		if !ok {
			domain = observedDomain(data, cols[i])
		}
		vars[i] = table.Variable{Name: name, Domain: append([]string(nil), domain...)}
	}

	var rows []table.Row
	pos := make(map[string]int)
	var total float64
	for r, obs := range data.Rows {
		if len(obs) != len(data.Columns) {
			return nil, invalidf("row %d has %d values, want %d", r, len(obs), len(data.Columns))
		}
		weight := 1.0
		if probCol >= 0 {
			w, err := strconv.ParseFloat(strings.TrimSpace(obs[probCol]), 64)
			if err != nil || w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, invalidf("row %d: invalid %s value %q", r, table.ProbField, obs[probCol])
			}
			weight = w
		}
		vals := make([]string, len(cols))
		for i, j := range cols {
			vals[i] = obs[j]
			if !vars[i].Contains(vals[i]) {
				return nil, invalidf("row %d: value %q outside the domain of %s", r, vals[i], names[i])
			}
		}
		total += weight
		k := strings.Join(vals, "\x00")
		if p, ok := pos[k]; ok {
			rows[p].Prob += weight
			continue
		}
		pos[k] = len(rows)
		rows = append(rows, table.Row{Values: vals, Prob: weight})
	}
	if total <= 0 {
		return nil, invalidf("realizations sample has no probability mass")
	}
	for i := range rows {
		rows[i].Prob /= total
	}

	return newDAG(vars, table.New(names, rows)), nil
}

// NewFromJoint builds a DAG over the given variables whose distribution is
// the supplied joint table. The joint must be flat, carry prob and cover
// exactly the given variables.
func NewFromJoint(vars []table.Variable, joint *table.Table) (*DAG, error) {
	if len(vars) == 0 {
		return nil, invalidf("no variables")
	}
	if joint == nil || !joint.HasProb() || joint.IsKeyed() {
		return nil, invalidf("joint distribution must be a flat table with a %s field", table.ProbField)
	}
	names := make([]string, len(vars))
	seen := make(map[string]bool, len(vars))
	for i, v := range vars {
		if seen[v.Name] {
			return nil, invalidf("duplicate variable %q", v.Name)
		}
		if len(v.Domain) == 0 {
			return nil, invalidf("variable %q has an empty domain", v.Name)
		}
		seen[v.Name] = true
		names[i] = v.Name
	}
	ordered, err := joint.Reorder(names)
	if err != nil {
		return nil, invalidf("joint does not cover the variables: %v", err)
	}
	for r := 0; r < ordered.Len(); r++ {
		row := ordered.Row(r)
		for i, v := range row.Values {
			if !vars[i].Contains(v) {
				return nil, invalidf("joint row %d: value %q outside the domain of %s", r, v, names[i])
			}
		}
	}

	copied := make([]table.Variable, len(vars))
	for i, v := range vars {
		copied[i] = table.Variable{Name: v.Name, Domain: append([]string(nil), v.Domain...)}
	}
	return newDAG(copied, ordered), nil
}

// Must panics if err is non-nil. Intended for fixtures and examples.
func Must(d *DAG, err error) *DAG {
	if err != nil {
		panic(err)
	}
	return d
}

func newDAG(vars []table.Variable, joint *table.Table) *DAG {
	d := &DAG{
		variables: vars,
		index:     make(map[string]int, len(vars)),
		parents:   make(map[string][]string),
		children:  make(map[string][]string),
		joint:     joint,
	}
	for i, v := range vars {
		d.index[v.Name] = i
	}
	return d
}

// AddEdge adds parent -> child and returns the DAG for chaining.
//
// An edge naming an unknown variable, a self-loop, a duplicate or an edge
// that would close a cycle is rejected and not added. The first rejection
// is recorded, later calls become no-ops, and Err reports it.
func (d *DAG) AddEdge(parent, child string) *DAG {
	if d.err != nil {
		return d
	}
	if err := d.checkEdge(parent, child); err != nil {
		d.err = err
		return d
	}
	d.edges = append(d.edges, Edge{Parent: parent, Child: child})
	d.parents[child] = append(d.parents[child], parent)
	d.children[parent] = append(d.children[parent], child)
	return d
}

// WithEdges adds every edge in order, stopping at the first rejection.
func (d *DAG) WithEdges(edges []Edge) *DAG {
	for _, e := range edges {
		d.AddEdge(e.Parent, e.Child)
	}
	return d
}

func (d *DAG) checkEdge(parent, child string) error {
	if !d.HasVariable(parent) {
		return invalidf("edge references unknown variable (parent): %q", parent)
	}
	if !d.HasVariable(child) {
		return invalidf("edge references unknown variable (child): %q", child)
	}
	if parent == child {
		return invalidf("self-loop: %q -> %q", parent, child)
	}
	for _, c := range d.children[parent] {
		if c == child {
			return invalidf("duplicate edge: %q -> %q", parent, child)
		}
	}
	if path := d.path(child, parent); path != nil {
		return cycleError(append([]string{parent}, path...))
	}
	return nil
}

// path returns a directed path from -> ... -> to, or nil.
func (d *DAG) path(from, to string) []string {
	visited := make(map[string]bool)
	var walk func(n string) []string
	walk = func(n string) []string {
		if n == to {
			return []string{n}
		}
		visited[n] = true
		for _, c := range d.children[n] {
			if visited[c] {
				continue
			}
			if rest := walk(c); rest != nil {
				return append([]string{n}, rest...)
			}
		}
		return nil
	}
	return walk(from)
}

// Err returns the first edge rejection, if any.
func (d *DAG) Err() error { return d.err }

// Variables returns the variables in construction order.
func (d *DAG) Variables() []table.Variable {
	out := make([]table.Variable, len(d.variables))
	for i, v := range d.variables {
		out[i] = table.Variable{Name: v.Name, Domain: append([]string(nil), v.Domain...)}
	}
	return out
}

// Names returns the variable names in construction order.
func (d *DAG) Names() []string {
	out := make([]string, len(d.variables))
	for i, v := range d.variables {
		out[i] = v.Name
	}
	return out
}

// Variable looks up a variable by name.
func (d *DAG) Variable(name string) (table.Variable, bool) {
	i, ok := d.index[name]
	if !ok {
		return table.Variable{}, false
	}
	return d.variables[i], true
}

// HasVariable reports whether name is in the variable set.
func (d *DAG) HasVariable(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Domain returns the ordered domain of a variable, or nil.
func (d *DAG) Domain(name string) []string {
	v, ok := d.Variable(name)
	if !ok {
		return nil
	}
	return append([]string(nil), v.Domain...)
}

// Edges returns the accepted edges in insertion order.
func (d *DAG) Edges() []Edge { return append([]Edge(nil), d.edges...) }

// Parents returns the direct causes of a variable.
func (d *DAG) Parents(name string) []string { return append([]string(nil), d.parents[name]...) }

// Children returns the direct effects of a variable.
func (d *DAG) Children(name string) []string { return append([]string(nil), d.children[name]...) }

// TopologicalOrder returns the variables so that every parent precedes its
// children. Ties keep construction order.
func (d *DAG) TopologicalOrder() []string {
	indeg := make([]int, len(d.variables))
	for _, e := range d.edges {
		indeg[d.index[e.Child]]++
	}
	done := make([]bool, len(d.variables))
	out := make([]string, 0, len(d.variables))
	for len(out) < len(d.variables) {
		progressed := false
		for i, v := range d.variables {
			if done[i] || indeg[i] > 0 {
				continue
			}
			done[i] = true
			progressed = true
			out = append(out, v.Name)
			for _, c := range d.children[v.Name] {
				indeg[d.index[c]]--
			}
			break
		}
		if !progressed {
			// unreachable while AddEdge keeps the graph acyclic
			break
		}
	}
	return out
}

// Joint returns the joint distribution over every variable.
func (d *DAG) Joint() *table.Table { return d.joint }

// Marginal returns the joint distribution of a subset of variables.
func (d *DAG) Marginal(names ...string) (*table.Table, error) {
	for _, n := range names {
		if !d.HasVariable(n) {
			return nil, invalidf("unknown variable %q", n)
		}
	}
	return table.Marginalize(d.joint, names...)
}

func (d *DAG) String() string {
	return fmt.Sprintf("DAG(%d variables, %d edges)", len(d.variables), len(d.edges))
}

// observedDomain collects the distinct values of a column, ordered
// numerically when every label is a number and lexicographically otherwise.
func observedDomain(data *dataset.Realizations, col int) []string {
	seen := make(map[string]bool)
	var domain []string
	for _, row := range data.Rows {
		if !seen[row[col]] {
			seen[row[col]] = true
			domain = append(domain, row[col])
		}
	}
	numeric := make(map[string]float64, len(domain))
	for _, v := range domain {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			sort.Strings(domain)
			return domain
		}
		numeric[v] = f
	}
	sort.Slice(domain, func(i, j int) bool { return numeric[domain[i]] < numeric[domain[j]] })
	return domain
}
