/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fit.go
Description: The fit command. Estimates a DAG's joint distribution from CSV
realizations, adds the requested edges and answers do/given queries.
*/

package commands

import (
	"bytes"
	"fmt"

	"github.com/kleascm/causalnet/pkg/dataset"
	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RunFit builds a DAG from realizations and answers queries against it
func RunFit(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	specs, _ := cmd.Flags().GetStringSlice("edge")
	edges, err := ParseEdges(specs)
	if err != nil {
		return err
	}

	raw, err := readInput(args[0])
	if err != nil {
		return err
	}
	data, err := dataset.ReadCSV(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	dag, err := graph.New(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	logger.GetLogger().WithFields(logrus.Fields{
		"observations": data.Len(),
		"variables":    len(dag.Names()),
		"assignments":  dag.Joint().Len(),
	}).Info("Network estimated from realizations")

	if err := buildDAG(logger, dag, edges); err != nil {
		return err
	}
	fmt.Printf("📊 %d observations of %d variables, %d edges\n\n", data.Len(), len(dag.Names()), len(dag.Edges()))
	return answer(cmd, logger, dag, args[0])
}
