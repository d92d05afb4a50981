/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: documents.go
Description: Serialisable views of parsed networks and query results.
*/

package report

import (
	"sort"
	"time"

	"github.com/kleascm/causalnet/pkg/bif"
	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/inference"
	"github.com/kleascm/causalnet/pkg/table"
)

// ValueProb is one entry of a distribution.
type ValueProb struct {
	Value string  `json:"value" yaml:"value"`
	Prob  float64 `json:"prob" yaml:"prob"`
}

// DistributionDoc is the posterior of one variable in domain order.
type DistributionDoc struct {
	Variable string      `json:"variable" yaml:"variable"`
	Values   []ValueProb `json:"values" yaml:"values"`
}

// PosteriorDoc describes one answered query.
type PosteriorDoc struct {
	ID         string            `json:"id" yaml:"id"`
	Source     string            `json:"source,omitempty" yaml:"source,omitempty"`
	Do         map[string]string `json:"do,omitempty" yaml:"do,omitempty"`
	Given      map[string]string `json:"given,omitempty" yaml:"given,omitempty"`
	Posterior  []DistributionDoc `json:"posterior" yaml:"posterior"`
	Started    time.Time         `json:"started" yaml:"started"`
	DurationMS float64           `json:"duration_ms" yaml:"duration_ms"`
}

// NewPosteriorDoc converts an engine result. Variables are sorted by name.
func NewPosteriorDoc(source string, res *inference.Result) PosteriorDoc {
	doc := PosteriorDoc{
		ID:         res.ID,
		Source:     source,
		Do:         res.Request.Do,
		Given:      res.Request.Given,
		Started:    res.Started,
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
	}
	for _, name := range res.Posterior.Variables() {
		d := res.Posterior[name]
		dd := DistributionDoc{Variable: name, Values: make([]ValueProb, len(d.Values))}
		for i, v := range d.Values {
			dd.Values[i] = ValueProb{Value: v, Prob: d.Probs[i]}
		}
		doc.Posterior = append(doc.Posterior, dd)
	}
	return doc
}

// VariableDoc is a variable and its ordered domain.
type VariableDoc struct {
	Name   string   `json:"name" yaml:"name"`
	Domain []string `json:"domain" yaml:"domain"`
}

// JointRow is one full assignment of the joint distribution.
type JointRow struct {
	Assignment map[string]string `json:"assignment" yaml:"assignment"`
	Prob       float64           `json:"prob" yaml:"prob"`
}

// NetworkDoc describes a parsed network.
type NetworkDoc struct {
	Name      string        `json:"name" yaml:"name"`
	Variables []VariableDoc `json:"variables" yaml:"variables"`
	Edges     []graph.Edge  `json:"edges" yaml:"edges"`
	Rows      int           `json:"rows" yaml:"rows"`
	Joint     []JointRow    `json:"joint,omitempty" yaml:"joint,omitempty"`
}

// NewNetworkDoc converts a parsed network. The joint rows are included
// only when withJoint is set.
func NewNetworkDoc(n *bif.Network, withJoint bool) NetworkDoc {
	doc := NetworkDoc{
		Name:  n.Name,
		Edges: n.Edges,
		Rows:  n.Joint.Len(),
	}
	for _, v := range n.Variables {
		doc.Variables = append(doc.Variables, VariableDoc{Name: v.Name, Domain: v.Domain})
	}
	if withJoint {
		doc.Joint = jointRows(n.Joint)
	}
	return doc
}

func jointRows(t *table.Table) []JointRow {
	fields := t.Fields()
	rows := make([]JointRow, t.Len())
	for i := range rows {
		r := t.Row(i)
		a := make(map[string]string, len(fields))
		for j, f := range fields {
			a[f] = r.Values[j]
		}
		rows[i] = JointRow{Assignment: a, Prob: r.Prob}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Prob > rows[j].Prob })
	return rows
}
