/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Graph validation errors. Every failure is a GraphError whose Kind is one
of the sentinels below.
*/

package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidGraph reports a bad sample, joint or edge.
	ErrInvalidGraph = errors.New("invalid graph")
	// ErrCycle reports an edge that would close a directed cycle.
	ErrCycle = errors.New("cycle detected")
)

// GraphError wraps deterministic graph validation failures.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &GraphError{Kind: ErrInvalidGraph, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	return &GraphError{Kind: ErrCycle, Msg: strings.Join(path, " -> ")}
}
