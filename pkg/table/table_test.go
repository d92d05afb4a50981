/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: table_test.go
Description: Tests for probability tables and the join primitives. Covers the flat and
keyed variants, independent and dependent joins, schema validation and the reductions
used by the query engine.
*/

package table_test

import (
	"testing"

	"github.com/kleascm/causalnet/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probA() *table.Table {
	return table.New([]string{"A"}, []table.Row{
		{Values: []string{"true"}, Prob: 0.5},
		{Values: []string{"false"}, Prob: 0.5},
	})
}

func probB() *table.Table {
	return table.New([]string{"B"}, []table.Row{
		{Values: []string{"true"}, Prob: 0.5},
		{Values: []string{"false"}, Prob: 0.5},
	})
}

// condProbB is P(B | A), keyed by A.
func condProbB(t *testing.T) *table.Table {
	flat := table.New([]string{"A", "B"}, []table.Row{
		{Values: []string{"true", "true"}, Prob: 0.3},
		{Values: []string{"false", "true"}, Prob: 0.7},
		{Values: []string{"true", "false"}, Prob: 0.8},
		{Values: []string{"false", "false"}, Prob: 0.2},
	})
	keyed, err := flat.SetKey("A")
	require.NoError(t, err)
	return keyed
}

func values(tb *table.Table, field string) []string {
	out := make([]string, tb.Len())
	for i := range out {
		out[i], _ = tb.Value(i, field)
	}
	return out
}

func probs(tb *table.Table) []float64 {
	out := make([]float64, tb.Len())
	for i := range out {
		out[i] = tb.Prob(i)
	}
	return out
}

// TestJoinIndependent tests the Cartesian product of two marginals
func TestJoinIndependent(t *testing.T) {
	joint, err := table.JoinIndependent(probA(), probB())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, joint.Fields())
	assert.Equal(t, []string{"true", "true", "false", "false"}, values(joint, "A"))
	assert.Equal(t, []string{"true", "false", "true", "false"}, values(joint, "B"))
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25}, probs(joint), 1e-12)
	assert.False(t, joint.IsKeyed())
}

// TestJoinIndependentSizes checks row count and mass of the product
func TestJoinIndependentSizes(t *testing.T) {
	a := table.New([]string{"X"}, []table.Row{
		{Values: []string{"x1"}, Prob: 0.2},
		{Values: []string{"x2"}, Prob: 0.3},
		{Values: []string{"x3"}, Prob: 0.1},
	})
	b := table.New([]string{"Y"}, []table.Row{
		{Values: []string{"y1"}, Prob: 0.4},
		{Values: []string{"y2"}, Prob: 0.4},
	})

	joint, err := table.JoinIndependent(a, b)
	require.NoError(t, err)
	assert.Equal(t, a.Len()*b.Len(), joint.Len())
	assert.InDelta(t, a.Sum()*b.Sum(), joint.Sum(), 1e-12)
}

// TestJoinIndependentInputChecks tests that missing prob fields are rejected
func TestJoinIndependentInputChecks(t *testing.T) {
	_, err := table.JoinIndependent(probA().WithoutProb(), probB())
	assert.ErrorIs(t, err, table.ErrSchema)

	_, err = table.JoinIndependent(probA(), probB().WithoutProb())
	assert.ErrorIs(t, err, table.ErrSchema)

	// Sharing a variable is not an independent join
	_, err = table.JoinIndependent(probA(), probA())
	assert.ErrorIs(t, err, table.ErrSchema)
}

// TestJoinDependent tests folding P(B|A) into P(A)
func TestJoinDependent(t *testing.T) {
	joint, err := table.JoinDependent(probA(), condProbB(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, joint.Fields())
	assert.False(t, joint.IsKeyed(), "dependent join must never return a keyed table")
	assert.Equal(t, []string{"true", "true", "false", "false"}, values(joint, "A"))
	assert.Equal(t, []string{"true", "false", "true", "false"}, values(joint, "B"))
	assert.InDeltaSlice(t, []float64{0.15, 0.4, 0.35, 0.1}, probs(joint), 1e-12)
}

// TestJoinDependentInputChecks tests every schema precondition of the dependent join
func TestJoinDependentInputChecks(t *testing.T) {
	cond := condProbB(t)

	_, err := table.JoinDependent(probA().WithoutProb(), cond)
	assert.ErrorIs(t, err, table.ErrSchema, "parent without prob")

	_, err = table.JoinDependent(probA(), cond.WithoutProb())
	assert.ErrorIs(t, err, table.ErrSchema, "child without prob")

	noA, err := probA().WithoutField("A")
	require.NoError(t, err)
	_, err = table.JoinDependent(noA, cond)
	assert.ErrorIs(t, err, table.ErrSchema, "parent without the shared field")

	_, err = table.JoinDependent(probA(), cond.ResetKey())
	assert.ErrorIs(t, err, table.ErrSchema, "child not keyed")
}

// TestJoinDependentMultiKey tests a child keyed by a parent combination
func TestJoinDependentMultiKey(t *testing.T) {
	parents, err := table.JoinIndependent(probA(), probB())
	require.NoError(t, err)

	// P(C | A, B): C is "on" only when both parents are true
	cond := table.NewKeyed([]string{"A", "B"}, []string{"C"}, []table.Row{
		{Key: []string{"true", "true"}, Values: []string{"on"}, Prob: 1},
		{Key: []string{"true", "true"}, Values: []string{"off"}, Prob: 0},
		{Key: []string{"true", "false"}, Values: []string{"on"}, Prob: 0},
		{Key: []string{"true", "false"}, Values: []string{"off"}, Prob: 1},
		{Key: []string{"false", "true"}, Values: []string{"on"}, Prob: 0},
		{Key: []string{"false", "true"}, Values: []string{"off"}, Prob: 1},
		{Key: []string{"false", "false"}, Values: []string{"on"}, Prob: 0},
		{Key: []string{"false", "false"}, Values: []string{"off"}, Prob: 1},
	})

	joint, err := table.JoinDependent(parents, cond)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, joint.Fields())
	assert.Equal(t, 8, joint.Len())
	assert.InDelta(t, 1.0, joint.Sum(), 1e-12)

	on, err := table.Lookup(joint, table.Assignment{"C": "on"})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, on, 1e-12)
}

// TestKeyRoundTrip tests moving fields into and out of the key
func TestKeyRoundTrip(t *testing.T) {
	cond := condProbB(t)
	assert.True(t, cond.IsKeyed())
	assert.Equal(t, []string{"A"}, cond.Key())
	assert.Equal(t, []string{"B"}, cond.Fields())
	assert.False(t, cond.HasField("A"))

	v, ok := cond.Value(1, "A")
	assert.True(t, ok)
	assert.Equal(t, "false", v)

	flat := cond.ResetKey()
	assert.False(t, flat.IsKeyed())
	assert.Equal(t, []string{"A", "B"}, flat.Fields())

	_, err := flat.SetKey("Z")
	assert.ErrorIs(t, err, table.ErrSchema)
}

// TestFromVariable tests building a marginal from domain-ordered probabilities
func TestFromVariable(t *testing.T) {
	v := table.Variable{Name: "rain", Domain: []string{"yes", "no"}}
	tb, err := table.FromVariable(v, []float64{0.2, 0.8})
	require.NoError(t, err)
	assert.Equal(t, []string{"yes", "no"}, values(tb, "rain"))
	assert.InDeltaSlice(t, []float64{0.2, 0.8}, probs(tb), 1e-12)

	_, err = table.FromVariable(v, []float64{1})
	assert.ErrorIs(t, err, table.ErrSchema)

	assert.Equal(t, 1, v.Index("no"))
	assert.False(t, v.Contains("maybe"))
}

// TestMarginalizeFilterNormalize tests the reductions used by inference
func TestMarginalizeFilterNormalize(t *testing.T) {
	joint, err := table.JoinDependent(probA(), condProbB(t))
	require.NoError(t, err)

	pb, err := table.Marginalize(joint, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"true", "false"}, values(pb, "B"))
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, probs(pb), 1e-12)

	_, err = table.Marginalize(joint, "Q")
	assert.ErrorIs(t, err, table.ErrSchema)

	given, err := table.Filter(joint, table.Assignment{"B": "false"})
	require.NoError(t, err)
	assert.Equal(t, 2, given.Len())

	norm, err := table.Normalize(given)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, norm.Sum(), 1e-12)
	pa, err := table.Lookup(norm, table.Assignment{"A": "true"})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, pa, 1e-12)

	empty, err := table.Filter(joint, table.Assignment{"B": "maybe"})
	require.NoError(t, err)
	_, err = table.Normalize(empty)
	assert.ErrorIs(t, err, table.ErrZeroMass)
}

// TestReorder tests column permutation
func TestReorder(t *testing.T) {
	joint, err := table.JoinIndependent(probA(), probB())
	require.NoError(t, err)

	swapped, err := joint.Reorder([]string{"B", "A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, swapped.Fields())
	assert.Equal(t, values(joint, "A"), values(swapped, "A"))

	_, err = joint.Reorder([]string{"A"})
	assert.ErrorIs(t, err, table.ErrSchema)
}
