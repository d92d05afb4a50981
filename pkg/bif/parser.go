/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parser.go
Description: Extraction of the individual declarations of a BIF document. Each
extractor yields its declarations lazily and in document order, and stops after the
first error it yields.
*/

package bif

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/kleascm/causalnet/pkg/table"
)

var (
	variableType      = regexp.MustCompile(`^type discrete ?\[ ?(\d+) ?\] ?\{(.*)\}$`)
	probabilityHeader = regexp.MustCompile(`^probability ?\( ?([^|()]+?) ?(?:\| ?([^()]*?) ?)?\)$`)
	conditionalRow    = regexp.MustCompile(`^\(([^()]*)\) ?(.*)$`)
)

// Unconditional is the prior distribution of a root variable, in domain order.
type Unconditional struct {
	Variable string
	Probs    []float64
}

// ConditionalRow holds the child distribution for one parent combination.
// Parents are listed in declared parent order, Probs in child domain order.
type ConditionalRow struct {
	Parents []string
	Probs   []float64
}

// Conditional is the conditional probability table of a child variable.
type Conditional struct {
	Child   string
	Parents []string
	Rows    []ConditionalRow
}

// ParseNetworkType returns the name declared by the network block.
func ParseNetworkType(text string) (string, error) {
	blocks, err := scanBlocks(text)
	if err != nil {
		return "", err
	}
	for _, b := range blocks {
		if b.kind != "network" {
			continue
		}
		name := strings.Trim(strings.TrimSpace(strings.TrimPrefix(b.header, "network")), `"`)
		if name == "" {
			return "", parseErrorf(b.header, b.line, "network without a name")
		}
		return name, nil
	}
	return "", parseErrorf("", 0, "missing network block")
}

// ParseVariables yields the declared variables with their ordered domains.
func ParseVariables(text string) iter.Seq2[table.Variable, error] {
	return func(yield func(table.Variable, error) bool) {
		blocks, err := scanBlocks(text)
		if err != nil {
			yield(table.Variable{}, err)
			return
		}
		for _, b := range blocks {
			if b.kind != "variable" {
				continue
			}
			v, err := parseVariable(b)
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// ParseUnconditionalProbabilities yields the `table` declarations of root variables.
func ParseUnconditionalProbabilities(text string) iter.Seq2[Unconditional, error] {
	return func(yield func(Unconditional, error) bool) {
		blocks, err := scanBlocks(text)
		if err != nil {
			yield(Unconditional{}, err)
			return
		}
		for _, b := range blocks {
			if b.kind != "probability" {
				continue
			}
			child, parents, err := parseProbabilityHeader(b)
			if err == nil && len(parents) > 0 {
				continue
			}
			var u Unconditional
			if err == nil {
				u, err = parseUnconditional(b, child)
			}
			if !yield(u, err) || err != nil {
				return
			}
		}
	}
}

// ParseConditionalProbabilities yields the conditional tables, rows in
// declaration order.
func ParseConditionalProbabilities(text string) iter.Seq2[Conditional, error] {
	return func(yield func(Conditional, error) bool) {
		blocks, err := scanBlocks(text)
		if err != nil {
			yield(Conditional{}, err)
			return
		}
		for _, b := range blocks {
			if b.kind != "probability" {
				continue
			}
			child, parents, err := parseProbabilityHeader(b)
			if err == nil && len(parents) == 0 {
				continue
			}
			var c Conditional
			if err == nil {
				c, err = parseConditional(b, child, parents)
			}
			if !yield(c, err) || err != nil {
				return
			}
		}
	}
}

func parseVariable(b block) (table.Variable, error) {
	name := strings.TrimSpace(strings.TrimPrefix(b.header, "variable"))
	if name == "" || strings.ContainsFunc(name, unicode.IsSpace) {
		return table.Variable{}, parseErrorf(b.header, b.line, "malformed variable name")
	}

	var domain []string
	found := false
	for _, stmt := range statements(b.body) {
		if strings.HasPrefix(stmt, "property") {
			continue
		}
		m := variableType.FindStringSubmatch(stmt)
		if m == nil || found {
			return table.Variable{}, parseErrorf(b.header, b.line, "malformed variable declaration %q", stmt)
		}
		found = true
		k, _ := strconv.Atoi(m[1])
		domain = splitList(m[2])
		if len(domain) != k {
			return table.Variable{}, parseErrorf(b.header, b.line, "declared %d values but listed %d", k, len(domain))
		}
	}
	if !found {
		return table.Variable{}, parseErrorf(b.header, b.line, "missing type declaration")
	}

	seen := make(map[string]bool, len(domain))
	for _, v := range domain {
		if v == "" {
			return table.Variable{}, parseErrorf(b.header, b.line, "empty domain value")
		}
		if seen[v] {
			return table.Variable{}, parseErrorf(b.header, b.line, "duplicate domain value %q", v)
		}
		seen[v] = true
	}
	return table.Variable{Name: name, Domain: domain}, nil
}

func parseProbabilityHeader(b block) (string, []string, error) {
	m := probabilityHeader.FindStringSubmatch(b.header)
	if m == nil {
		return "", nil, parseErrorf(b.header, b.line, "malformed probability header")
	}
	child := m[1]
	if strings.ContainsFunc(child, unicode.IsSpace) || strings.Contains(child, ",") {
		return "", nil, parseErrorf(b.header, b.line, "probability block must name a single child")
	}
	if strings.Contains(b.header, "|") {
		parents := splitList(m[2])
		if len(parents) == 0 {
			return "", nil, parseErrorf(b.header, b.line, "conditional block without parents")
		}
		for _, p := range parents {
			if p == "" {
				return "", nil, parseErrorf(b.header, b.line, "empty parent name")
			}
		}
		return child, parents, nil
	}
	return child, nil, nil
}

func parseUnconditional(b block, child string) (Unconditional, error) {
	u := Unconditional{Variable: child}
	found := false
	for _, stmt := range statements(b.body) {
		switch {
		case strings.HasPrefix(stmt, "property"):
		case strings.HasPrefix(stmt, "table "):
			if found {
				return Unconditional{}, parseErrorf(b.header, b.line, "more than one table statement")
			}
			probs, err := parseProbs(strings.TrimPrefix(stmt, "table "))
			if err != nil {
				return Unconditional{}, parseErrorf(b.header, b.line, "%v", err)
			}
			u.Probs = probs
			found = true
		default:
			return Unconditional{}, parseErrorf(b.header, b.line, "unexpected statement %q", stmt)
		}
	}
	if !found {
		return Unconditional{}, parseErrorf(b.header, b.line, "missing table statement")
	}
	return u, nil
}

func parseConditional(b block, child string, parents []string) (Conditional, error) {
	c := Conditional{Child: child, Parents: parents}
	for _, stmt := range statements(b.body) {
		if strings.HasPrefix(stmt, "property") {
			continue
		}
		m := conditionalRow.FindStringSubmatch(stmt)
		if m == nil {
			return Conditional{}, parseErrorf(b.header, b.line, "unexpected statement %q", stmt)
		}
		values := splitList(m[1])
		if len(values) != len(parents) {
			return Conditional{}, parseErrorf(b.header, b.line, "row %q lists %d parent values, want %d", m[1], len(values), len(parents))
		}
		probs, err := parseProbs(m[2])
		if err != nil {
			return Conditional{}, parseErrorf(b.header, b.line, "%v", err)
		}
		c.Rows = append(c.Rows, ConditionalRow{Parents: values, Probs: probs})
	}
	if len(c.Rows) == 0 {
		return Conditional{}, parseErrorf(b.header, b.line, "conditional block without rows")
	}
	return c, nil
}

// splitList splits a comma separated list, trimming each item.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// parseProbs reads numbers separated by commas or whitespace.
func parseProbs(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(fields) == 0 {
		return nil, errors.New("no probabilities listed")
	}
	probs := make([]float64, len(fields))
	for i, f := range fields {
		p, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("invalid probability %q", f)
		}
		probs[i] = p
	}
	return probs, nil
}
