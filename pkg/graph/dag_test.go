/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dag_test.go
Description: Tests for the DAG: variable derivation from realizations, empirical and
supplied joint distributions, edge validation and cycle rejection.
*/

package graph_test

import (
	"errors"
	"testing"

	"github.com/kleascm/causalnet/pkg/dataset"
	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleSample(t *testing.T) *dataset.Realizations {
	data, err := dataset.FromColumns([]string{"a", "b", "c"},
		[]string{"0", "0", "0", "0", "1", "1", "1", "1"},
		[]string{"0", "1", "0", "1", "1", "1", "1", "0"},
		[]string{"0", "0", "1", "0", "0", "1", "0", "1"},
	)
	require.NoError(t, err)
	return data
}

// TestNewFromRealizations tests variable and domain derivation and the empirical joint
func TestNewFromRealizations(t *testing.T) {
	dag, err := graph.New(simpleSample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, dag.Names())
	assert.Equal(t, []string{"0", "1"}, dag.Domain("b"))
	assert.Nil(t, dag.Domain("q"))

	joint := dag.Joint()
	assert.InDelta(t, 1.0, joint.Sum(), 1e-12)

	// (a=0, b=1, c=0) is observed twice out of eight
	p, err := table.Lookup(joint, table.Assignment{"a": "0", "b": "1", "c": "0"})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, p, 1e-12)

	pb, err := dag.Marginal("b")
	require.NoError(t, err)
	p, err = table.Lookup(pb, table.Assignment{"b": "0"})
	require.NoError(t, err)
	assert.InDelta(t, 0.375, p, 1e-12)

	_, err = dag.Marginal("q")
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}

// TestNewWithProbColumn tests that a prob column is treated as row weights, not a variable
func TestNewWithProbColumn(t *testing.T) {
	data, err := dataset.FromColumns([]string{"x", "prob"},
		[]string{"lo", "hi"},
		[]string{"0.2", "0.6"},
	)
	require.NoError(t, err)

	dag, err := graph.New(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, dag.Names())
	assert.Equal(t, []string{"hi", "lo"}, dag.Domain("x"))

	p, err := table.Lookup(dag.Joint(), table.Assignment{"x": "hi"})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-12)
}

// TestNewRejectsBadSamples tests sample validation
func TestNewRejectsBadSamples(t *testing.T) {
	_, err := graph.New(nil)
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)

	data, err := dataset.FromColumns([]string{"x", "prob"}, []string{"lo"}, []string{"-1"})
	require.NoError(t, err)
	_, err = graph.New(data)
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)

	ragged := &dataset.Realizations{Columns: []string{"a", "b"}, Rows: [][]string{{"0", "1"}, {"0"}}}
	_, err = graph.New(ragged)
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)

	data, err = dataset.FromColumns([]string{"x"}, []string{"2"})
	require.NoError(t, err)
	data.Domains = map[string][]string{"x": {"0", "1"}}
	_, err = graph.New(data)
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}

// TestObservedDomainOrdering tests numeric and lexicographic domain ordering
func TestObservedDomainOrdering(t *testing.T) {
	data, err := dataset.FromColumns([]string{"n", "s"},
		[]string{"10", "9", "2"},
		[]string{"low", "high", "mid"},
	)
	require.NoError(t, err)
	dag, err := graph.New(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "9", "10"}, dag.Domain("n"))
	assert.Equal(t, []string{"high", "low", "mid"}, dag.Domain("s"))
}

// TestAddEdgeChaining tests chained edge construction and the read accessors
func TestAddEdgeChaining(t *testing.T) {
	dag, err := graph.New(simpleSample(t))
	require.NoError(t, err)

	dag.AddEdge("a", "b").AddEdge("a", "c").AddEdge("c", "b")
	require.NoError(t, dag.Err())

	assert.Equal(t, []graph.Edge{
		{Parent: "a", Child: "b"},
		{Parent: "a", Child: "c"},
		{Parent: "c", Child: "b"},
	}, dag.Edges())
	assert.Equal(t, []string{"a", "c"}, dag.Parents("b"))
	assert.Equal(t, []string{"b", "c"}, dag.Children("a"))
	assert.Equal(t, []string{"a", "c", "b"}, dag.TopologicalOrder())
	assert.Equal(t, []string{"a", "b", "c"}, dag.Names(), "edges never alter the variable set")
}

// TestAddEdgeRejectsCycles tests that a cycle-closing edge is rejected with its path
func TestAddEdgeRejectsCycles(t *testing.T) {
	dag := graph.Must(graph.New(dataset.MakeFake(4, 50, 1)))

	dag.AddEdge("a", "b").AddEdge("b", "c").AddEdge("c", "a")
	err := dag.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrCycle)

	var gerr *graph.GraphError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "c -> a -> b -> c", gerr.Msg)

	// The rejected edge is not added and later calls are no-ops
	dag.AddEdge("a", "d")
	assert.Len(t, dag.Edges(), 2)
}

// TestAddEdgeValidation tests unknown variables, self-loops and duplicates
func TestAddEdgeValidation(t *testing.T) {
	cases := []struct {
		name   string
		parent string
		child  string
	}{
		{"unknown parent", "q", "a"},
		{"unknown child", "a", "q"},
		{"self loop", "a", "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dag := graph.Must(graph.New(dataset.MakeFake(3, 20, 7)))
			assert.ErrorIs(t, dag.AddEdge(tc.parent, tc.child).Err(), graph.ErrInvalidGraph)
			assert.Empty(t, dag.Edges())
		})
	}

	dag := graph.Must(graph.New(dataset.MakeFake(3, 20, 7)))
	assert.ErrorIs(t, dag.AddEdge("a", "b").AddEdge("a", "b").Err(), graph.ErrInvalidGraph)
}

// TestNewFromJoint tests supplying the joint distribution directly
func TestNewFromJoint(t *testing.T) {
	vars := []table.Variable{
		{Name: "x", Domain: []string{"t", "f"}},
		{Name: "y", Domain: []string{"t", "f"}},
	}
	joint := table.New([]string{"y", "x"}, []table.Row{
		{Values: []string{"t", "t"}, Prob: 0.1},
		{Values: []string{"f", "t"}, Prob: 0.2},
		{Values: []string{"t", "f"}, Prob: 0.3},
		{Values: []string{"f", "f"}, Prob: 0.4},
	})

	dag, err := graph.NewFromJoint(vars, joint)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, dag.Joint().Fields())
	require.NoError(t, dag.WithEdges([]graph.Edge{{Parent: "x", Child: "y"}}).Err())

	_, err = graph.NewFromJoint(vars[:1], joint)
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)

	_, err = graph.NewFromJoint(vars, joint.WithoutProb())
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)

	bad := []table.Variable{vars[0], {Name: "y", Domain: []string{"t"}}}
	_, err = graph.NewFromJoint(bad, joint)
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}
