/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for causalnet. Parses BIF networks, fits networks
to CSV realizations and answers interventional and observational queries, with
configuration from flags, a config file or CAUSALNET_ environment variables.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/causalnet/cmd/causalnet/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "causalnet",
		Short: "causalnet - exact causal inference over discrete Bayesian networks",
		Long: `causalnet reads discrete Bayesian networks in BIF format or estimates them from
samples of realizations, and answers queries that mix interventions (do) with
evidence (given) by exact enumeration of the joint distribution.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty: console only)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory for report files (empty: no reports)")
	rootCmd.PersistentFlags().String("output-format", "json", "Report format (json, yaml)")
	rootCmd.PersistentFlags().Int("parallel", 4, "Maximum concurrent queries in a batch")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("output_format", rootCmd.PersistentFlags().Lookup("output-format"))
	viper.BindPFlag("parallel", rootCmd.PersistentFlags().Lookup("parallel"))

	// parse
	parseCmd := &cobra.Command{
		Use:   "parse <network.bif>",
		Short: "Parse a BIF network and summarise its joint distribution",
		Args:  cobra.ExactArgs(1),
		RunE:  commands.RunParse,
	}
	parseCmd.Flags().Bool("joint", false, "Print and report every row of the joint distribution")
	viper.BindPFlag("parse.joint", parseCmd.Flags().Lookup("joint"))
	rootCmd.AddCommand(parseCmd)

	// query
	queryCmd := &cobra.Command{
		Use:   "query <network.bif>",
		Short: "Answer a do/given query against a BIF network",
		Long: `Answer a query against a BIF network. Interventions are given with --do and
evidence with --given, both as name=value. A YAML batch file of requests can be
supplied with --batch instead; its requests run concurrently.`,
		Args: cobra.ExactArgs(1),
		RunE: commands.RunQuery,
	}
	addQueryFlags(queryCmd)
	rootCmd.AddCommand(queryCmd)

	// fit
	fitCmd := &cobra.Command{
		Use:   "fit <realizations.csv>",
		Short: "Estimate a network from CSV realizations and query it",
		Long: `Build a DAG whose joint distribution is the empirical distribution of a CSV
sample (header row = variable names, optional prob column = row weights), add
the edges given with --edge parent:child, then answer the query.`,
		Args: cobra.ExactArgs(1),
		RunE: commands.RunFit,
	}
	addQueryFlags(fitCmd)
	fitCmd.Flags().StringSlice("edge", []string{}, "Edge as parent:child (repeatable)")
	rootCmd.AddCommand(fitCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("do", []string{}, "Intervention as name=value (repeatable)")
	cmd.Flags().StringSlice("given", []string{}, "Evidence as name=value (repeatable)")
	cmd.Flags().String("batch", "", "YAML file with a list of {do, given} requests")
}
