/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter hooks notified by the engine after every query, with a logrus
implementation and an in-memory collector.
*/

package inference

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Reporter receives query outcomes. Batches call it from several goroutines.
type Reporter interface {
	// OnQueryCompleted is called after a query produced a posterior.
	OnQueryCompleted(result *Result)
	// OnQueryFailed is called when a query could not be answered.
	OnQueryFailed(result *Result, err error)
}

// LoggerReporter logs query outcomes.
type LoggerReporter struct {
	logger *logrus.Logger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger *logrus.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnQueryCompleted logs the run and the most probable value of each target.
func (r *LoggerReporter) OnQueryCompleted(result *Result) {
	modes := make(map[string]string, len(result.Posterior))
	for name, d := range result.Posterior {
		modes[name] = d.Mode()
	}
	r.logger.WithFields(logrus.Fields{
		"query_id": result.ID,
		"do":       map[string]string(result.Request.Do),
		"given":    map[string]string(result.Request.Given),
		"duration": result.Duration,
		"modes":    modes,
	}).Info("Query completed")
}

// OnQueryFailed logs the failure.
func (r *LoggerReporter) OnQueryFailed(result *Result, err error) {
	r.logger.WithFields(logrus.Fields{
		"query_id": result.ID,
		"error":    err,
	}).Warn("Query failed")
}

// Collector keeps every outcome in memory.
type Collector struct {
	mu        sync.Mutex
	completed []*Result
	failed    int
}

// OnQueryCompleted records the result.
func (c *Collector) OnQueryCompleted(result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = append(c.completed, result)
}

// OnQueryFailed counts the failure.
func (c *Collector) OnQueryFailed(*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed++
}

// Completed returns the recorded results in completion order.
func (c *Collector) Completed() []*Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Result(nil), c.completed...)
}

// Failed returns the number of failed queries.
func (c *Collector) Failed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}
