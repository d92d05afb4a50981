/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the causalnet commands: configuration loading,
logger setup, flag parsing and result output.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/inference"
	"github.com/kleascm/causalnet/pkg/logging"
	"github.com/kleascm/causalnet/pkg/query"
	"github.com/kleascm/causalnet/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("CAUSALNET")
	viper.AutomaticEnv()
	return nil
}

// SetupLogging builds the logger described by the configuration
func SetupLogging() (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	if level := viper.GetString("log_level"); level != "" {
		cfg.Level = logging.LogLevel(level)
	}
	if format := viper.GetString("log_format"); format != "" {
		cfg.Format = logging.LogFormat(format)
	}
	cfg.OutputDir = viper.GetString("log_dir")
	if viper.IsSet("log_max_files") {
		cfg.MaxFiles = viper.GetInt("log_max_files")
	}
	cfg.Console = os.Stderr
	return logging.NewLogger(cfg)
}

// ParseAssignments reads name=value pairs.
func ParseAssignments(pairs []string) (query.Assignment, error) {
	out := query.Assignment{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("invalid assignment %q, want name=value", p)
		}
		if prev, dup := out[name]; dup && prev != value {
			return nil, fmt.Errorf("conflicting values for %s: %q and %q", name, prev, value)
		}
		out[name] = value
	}
	return out, nil
}

// ParseEdges reads parent:child pairs.
func ParseEdges(specs []string) ([]graph.Edge, error) {
	var edges []graph.Edge
	for _, s := range specs {
		parent, child, ok := strings.Cut(s, ":")
		parent, child = strings.TrimSpace(parent), strings.TrimSpace(child)
		if !ok || parent == "" || child == "" {
			return nil, fmt.Errorf("invalid edge %q, want parent:child", s)
		}
		edges = append(edges, graph.Edge{Parent: parent, Child: child})
	}
	return edges, nil
}

// LoadBatch reads a YAML list of requests.
func LoadBatch(path string) ([]inference.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	var reqs []inference.Request
	if err := yaml.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("failed to decode batch file %s: %w", path, err)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("batch file %s holds no requests", path)
	}
	return reqs, nil
}

// requestsFromFlags returns the batch file's requests, or the single
// request described by --do and --given.
func requestsFromFlags(cmd *cobra.Command) ([]inference.Request, int, error) {
	parallel := viper.GetInt("parallel")
	if batch, _ := cmd.Flags().GetString("batch"); batch != "" {
		reqs, err := LoadBatch(batch)
		return reqs, parallel, err
	}

	doPairs, _ := cmd.Flags().GetStringSlice("do")
	givenPairs, _ := cmd.Flags().GetStringSlice("given")
	do, err := ParseAssignments(doPairs)
	if err != nil {
		return nil, 0, err
	}
	given, err := ParseAssignments(givenPairs)
	if err != nil {
		return nil, 0, err
	}
	return []inference.Request{{Do: do, Given: given}}, parallel, nil
}

// buildDAG adds the edges, logging and returning the first rejection
func buildDAG(logger *logging.Logger, dag *graph.DAG, edges []graph.Edge) error {
	for _, e := range edges {
		if err := dag.AddEdge(e.Parent, e.Child).Err(); err != nil {
			logger.LogEdgeRejected(e.Parent, e.Child, err)
			return fmt.Errorf("edge %s: %w", e, err)
		}
	}
	return nil
}

// answer runs the requests and prints and reports each posterior
func answer(cmd *cobra.Command, logger *logging.Logger, dag *graph.DAG, source string) error {
	reqs, parallel, err := requestsFromFlags(cmd)
	if err != nil {
		return err
	}

	engine, err := inference.NewEngine(dag, logger.GetLogger())
	if err != nil {
		return err
	}
	engine.AddReporter(inference.NewLoggerReporter(logger.GetLogger()))

	var results []*inference.Result
	if len(reqs) == 1 {
		res, err := engine.Run(reqs[0])
		if err != nil {
			return err
		}
		results = []*inference.Result{res}
	} else {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if results, err = engine.RunBatch(ctx, reqs, parallel); err != nil {
			return err
		}
	}

	for _, res := range results {
		printResult(res)
		if err := writeReport("posterior", report.NewPosteriorDoc(source, res)); err != nil {
			return err
		}
	}
	return nil
}

func printResult(res *inference.Result) {
	fmt.Printf("🔎 Query %s\n", res.ID)
	fmt.Printf("   do:    %s\n", formatAssignment(res.Request.Do))
	fmt.Printf("   given: %s\n", formatAssignment(res.Request.Given))
	for _, name := range res.Posterior.Variables() {
		fmt.Printf("   %s\n", res.Posterior[name])
	}
	fmt.Printf("⏱️  %v\n\n", res.Duration)
}

func formatAssignment(a query.Assignment) string {
	if len(a) == 0 {
		return "-"
	}
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + a[n]
	}
	return strings.Join(parts, ", ")
}

// writeReport stores v under output_dir when one is configured
func writeReport(kind string, v interface{}) error {
	dir := viper.GetString("output_dir")
	if dir == "" {
		return nil
	}
	format, err := report.ParseFormat(viper.GetString("output_format"))
	if err != nil {
		return err
	}
	path, err := report.Write(dir, kind, format, v)
	if err != nil {
		return err
	}
	fmt.Printf("💾 Report written to %s\n", path)
	return nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
