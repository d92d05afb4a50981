/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: posterior.go
Description: Posterior distributions returned by inference.
*/

package query

import (
	"fmt"
	"sort"
	"strings"
)

// Distribution is the posterior of one variable. Probs align with Values,
// which follow the variable's domain order.
type Distribution struct {
	Variable string    `json:"variable" yaml:"variable"`
	Values   []string  `json:"values" yaml:"values"`
	Probs    []float64 `json:"probs" yaml:"probs"`
}

// Prob returns the probability of a value, or 0 for a value outside the domain.
func (d Distribution) Prob(value string) float64 {
	for i, v := range d.Values {
		if v == value {
			return d.Probs[i]
		}
	}
	return 0
}

// Mode returns the most probable value. Ties go to the earlier domain value.
func (d Distribution) Mode() string {
	best := -1
	for i, p := range d.Probs {
		if best < 0 || p > d.Probs[best] {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return d.Values[best]
}

func (d Distribution) String() string {
	parts := make([]string, len(d.Values))
	for i, v := range d.Values {
		parts[i] = fmt.Sprintf("%s=%.4f", v, d.Probs[i])
	}
	return fmt.Sprintf("P(%s): %s", d.Variable, strings.Join(parts, " "))
}

// Posterior maps each target variable to its distribution.
type Posterior map[string]Distribution

// Variables returns the target variable names, sorted.
func (p Posterior) Variables() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
