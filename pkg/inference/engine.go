/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Inference engine that answers causal queries against a fixed DAG. Each run
gets a unique ID and timing, and is announced to the registered reporters. Batches of
queries run concurrently over the shared, read-only DAG.
*/

package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/query"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoDAG reports an engine created without a usable DAG.
var ErrNoDAG = errors.New("inference engine requires a valid DAG")

// Request is one question to ask of the DAG.
type Request struct {
	Do    query.Assignment `json:"do,omitempty" yaml:"do,omitempty"`
	Given query.Assignment `json:"given,omitempty" yaml:"given,omitempty"`
}

// Result is the answer to a Request.
type Result struct {
	ID        string          `json:"id" yaml:"id"`
	Request   Request         `json:"request" yaml:"request"`
	Posterior query.Posterior `json:"posterior" yaml:"posterior"`
	Started   time.Time       `json:"started" yaml:"started"`
	Duration  time.Duration   `json:"duration" yaml:"duration"`
}

// Engine runs queries against one DAG. It is safe for concurrent use as
// long as its reporters are.
type Engine struct {
	dag       *graph.DAG
	logger    *logrus.Logger
	reporters []Reporter
}

// NewEngine binds an engine to a fully built DAG. A nil logger discards output.
func NewEngine(dag *graph.DAG, logger *logrus.Logger) (*Engine, error) {
	if dag == nil {
		return nil, ErrNoDAG
	}
	if err := dag.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDAG, err)
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Engine{dag: dag, logger: logger}, nil
}

// AddReporter registers a reporter. Not safe to call while queries run.
func (e *Engine) AddReporter(r Reporter) {
	e.reporters = append(e.reporters, r)
}

// DAG returns the DAG the engine queries.
func (e *Engine) DAG() *graph.DAG { return e.dag }

// Run answers one request.
func (e *Engine) Run(req Request) (*Result, error) {
	res := &Result{
		ID:      uuid.New().String(),
		Request: req,
		Started: time.Now(),
	}

	q := query.New(e.dag).Do(req.Do).Given(req.Given)
	post, err := q.Infer()
	res.Duration = time.Since(res.Started)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"query_id": res.ID,
			"error":    err,
		}).Debug("Query failed")
		for _, r := range e.reporters {
			r.OnQueryFailed(res, err)
		}
		return nil, fmt.Errorf("query %s: %w", res.ID, err)
	}

	res.Posterior = post
	for _, r := range e.reporters {
		r.OnQueryCompleted(res)
	}
	return res, nil
}

// RunBatch answers every request with at most parallel queries in flight.
// Results keep request order. The first failure cancels the rest.
func (e *Engine) RunBatch(ctx context.Context, reqs []Request, parallel int) ([]*Result, error) {
	if parallel < 1 {
		parallel = 1
	}
	start := time.Now()
	results := make([]*Result, len(reqs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := e.Run(req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"queries":  len(reqs),
		"parallel": parallel,
		"duration": time.Since(start),
	}).Info("Batch completed")
	return results, nil
}
