/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_test.go
Description: Tests for report encoding, file naming and the network and posterior
documents.
*/

package report_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/causalnet/pkg/bif"
	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/inference"
	"github.com/kleascm/causalnet/pkg/query"
	"github.com/kleascm/causalnet/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sprinkler = `network sprinkler {}
variable rain { type discrete [ 2 ] { yes, no }; }
variable wet { type discrete [ 2 ] { yes, no }; }
probability ( rain ) { table 0.2, 0.8; }
probability ( wet | rain ) { (yes) 0.9, 0.1; (no) 0.1, 0.9; }
`

// TestParseFormat tests format names
func TestParseFormat(t *testing.T) {
	f, err := report.ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, report.FormatYAML, f)

	f, err = report.ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, report.FormatJSON, f)

	_, err = report.ParseFormat("xml")
	assert.Error(t, err)
}

// TestWriteNetworkJSON tests writing a network document as JSON
func TestWriteNetworkJSON(t *testing.T) {
	net, err := bif.ParseNetwork(sprinkler)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "reports")
	path, err := report.Write(dir, "network", report.FormatJSON, report.NewNetworkDoc(net, true))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_network.json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc report.NetworkDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "sprinkler", doc.Name)
	assert.Equal(t, 4, doc.Rows)
	assert.Equal(t, []graph.Edge{{Parent: "rain", Child: "wet"}}, doc.Edges)
	require.Len(t, doc.Joint, 4)

	// most probable assignment first
	assert.Equal(t, map[string]string{"rain": "no", "wet": "no"}, doc.Joint[0].Assignment)
	assert.InDelta(t, 0.72, doc.Joint[0].Prob, 1e-12)
}

// TestWritePosteriorYAML tests writing an engine result as YAML
func TestWritePosteriorYAML(t *testing.T) {
	net, err := bif.ParseNetwork(sprinkler)
	require.NoError(t, err)
	dag, err := graph.NewFromJoint(net.Variables, net.Joint)
	require.NoError(t, err)
	engine, err := inference.NewEngine(dag.WithEdges(net.Edges), nil)
	require.NoError(t, err)

	res, err := engine.Run(inference.Request{Given: query.Assignment{"wet": "yes"}})
	require.NoError(t, err)
	res.Duration = 1500 * time.Microsecond

	doc := report.NewPosteriorDoc("sprinkler.bif", res)
	assert.Equal(t, 1.5, doc.DurationMS)

	path, err := report.Write(t.TempDir(), "posterior", report.FormatYAML, doc)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_posterior.yaml"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back report.PosteriorDoc
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, res.ID, back.ID)
	assert.Equal(t, map[string]string{"wet": "yes"}, back.Given)
	require.Len(t, back.Posterior, 1)
	assert.Equal(t, "rain", back.Posterior[0].Variable)

	// P(rain | wet) = 0.18 / (0.18 + 0.08)
	assert.Equal(t, "yes", back.Posterior[0].Values[0].Value)
	assert.InDelta(t, 0.18/0.26, back.Posterior[0].Values[0].Prob, 1e-9)
}

// TestEncodeUnsupported tests that an unknown format is refused before writing
func TestEncodeUnsupported(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never")
	_, err := report.Write(dir, "network", report.Format("xml"), struct{}{})
	assert.Error(t, err)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}
