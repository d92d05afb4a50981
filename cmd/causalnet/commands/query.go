/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: query.go
Description: The query command. Builds a DAG from a BIF network and answers do/given
queries against it.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/causalnet/pkg/bif"
	"github.com/kleascm/causalnet/pkg/graph"
	"github.com/kleascm/causalnet/pkg/logging"
	"github.com/spf13/cobra"
)

// RunQuery answers queries against a BIF network
func RunQuery(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	net, err := loadNetwork(logger, args[0])
	if err != nil {
		return err
	}
	dag, err := graph.NewFromJoint(net.Variables, net.Joint)
	if err != nil {
		return err
	}
	if err := buildDAG(logger, dag, net.Edges); err != nil {
		return err
	}
	return answer(cmd, logger, dag, args[0])
}

func loadNetwork(logger *logging.Logger, path string) (*bif.Network, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	net, err := bif.ParseNetwork(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.LogParse(net.Name, len(net.Variables), len(net.Edges), net.Joint.Len())
	return net, nil
}
