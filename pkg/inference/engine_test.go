/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Tests for the inference engine: single runs, reporters and concurrent
batches over a shared DAG.
*/

package inference_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kleascm/causalnet/pkg/dataset"
	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/inference"
	"github.com/kleascm/causalnet/pkg/query"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleDAG(t *testing.T) *graph.DAG {
	data, err := dataset.FromColumns([]string{"a", "b", "c"},
		[]string{"0", "0", "0", "0", "1", "1", "1", "1"},
		[]string{"0", "1", "0", "1", "1", "1", "1", "0"},
		[]string{"0", "0", "1", "0", "0", "1", "0", "1"},
	)
	require.NoError(t, err)
	dag, err := graph.New(data)
	require.NoError(t, err)
	require.NoError(t, dag.AddEdge("a", "b").AddEdge("a", "c").AddEdge("c", "b").Err())
	return dag
}

// TestNewEngine tests that an engine needs a valid DAG
func TestNewEngine(t *testing.T) {
	_, err := inference.NewEngine(nil, nil)
	assert.ErrorIs(t, err, inference.ErrNoDAG)

	dag := simpleDAG(t)
	dag.AddEdge("b", "a")
	_, err = inference.NewEngine(dag, nil)
	assert.ErrorIs(t, err, inference.ErrNoDAG)
	assert.ErrorIs(t, err, graph.ErrCycle)
}

// TestRun tests a single query with its run metadata and reporters
func TestRun(t *testing.T) {
	engine, err := inference.NewEngine(simpleDAG(t), nil)
	require.NoError(t, err)
	collector := &inference.Collector{}
	engine.AddReporter(collector)

	res, err := engine.Run(inference.Request{Given: query.Assignment{"a": "1"}})
	require.NoError(t, err)
	_, err = uuid.Parse(res.ID)
	assert.NoError(t, err)
	assert.False(t, res.Started.IsZero())
	assert.InDelta(t, 0.75, res.Posterior["b"].Prob("1"), 0.001)
	assert.Len(t, collector.Completed(), 1)

	_, err = engine.Run(inference.Request{Given: query.Assignment{"b": "2"}})
	assert.ErrorIs(t, err, query.ErrValidation)
	assert.Equal(t, 1, collector.Failed())
}

// TestLoggerReporter tests that outcomes are logged
func TestLoggerReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	engine, err := inference.NewEngine(simpleDAG(t), logger)
	require.NoError(t, err)
	engine.AddReporter(inference.NewLoggerReporter(logger))

	_, err = engine.Run(inference.Request{Do: query.Assignment{"a": "0"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="Query completed"`)

	_, err = engine.Run(inference.Request{Do: query.Assignment{"q": "0"}})
	require.Error(t, err)
	assert.Contains(t, buf.String(), `msg="Query failed"`)
}

// TestRunBatch tests concurrent queries keep request order
func TestRunBatch(t *testing.T) {
	engine, err := inference.NewEngine(simpleDAG(t), nil)
	require.NoError(t, err)
	collector := &inference.Collector{}
	engine.AddReporter(collector)

	var reqs []inference.Request
	for i := 0; i < 20; i++ {
		a := "0"
		if i%2 == 1 {
			a = "1"
		}
		reqs = append(reqs, inference.Request{Given: query.Assignment{"a": a}})
	}

	results, err := engine.RunBatch(context.Background(), reqs, 4)
	require.NoError(t, err)
	require.Len(t, results, len(reqs))
	for i, res := range results {
		assert.Equal(t, reqs[i].Given, res.Request.Given)
		want := 0.5
		if i%2 == 1 {
			want = 0.75
		}
		assert.InDelta(t, want, res.Posterior["b"].Prob("1"), 0.001, "request %d", i)
	}
	assert.Len(t, collector.Completed(), len(reqs))
}

// TestRunBatchFailure tests that one invalid request fails the batch
func TestRunBatchFailure(t *testing.T) {
	engine, err := inference.NewEngine(simpleDAG(t), nil)
	require.NoError(t, err)

	reqs := []inference.Request{
		{Given: query.Assignment{"a": "0"}},
		{Do: query.Assignment{"a": "1"}, Given: query.Assignment{"a": "0"}},
	}
	results, err := engine.RunBatch(context.Background(), reqs, 0)
	assert.ErrorIs(t, err, query.ErrValidation)
	assert.Nil(t, results)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.RunBatch(ctx, reqs[:1], 2)
	assert.ErrorIs(t, err, context.Canceled)
}
