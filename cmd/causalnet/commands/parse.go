/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parse.go
Description: The parse command. Reads a BIF network, prints its variables, edges and
joint size, and optionally reports the network.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/kleascm/causalnet/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunParse parses a BIF file and summarises it
func RunParse(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("🕸️  Network %s (%s)\n", net.Name, args[0])
	fmt.Println()
	fmt.Printf("📋 Variables (%d):\n", len(net.Variables))
	for _, v := range net.Variables {
		fmt.Printf("   %s: {%s}\n", v.Name, strings.Join(v.Domain, ", "))
	}
	fmt.Printf("🔗 Edges (%d):\n", len(net.Edges))
	for _, e := range net.Edges {
		fmt.Printf("   %s\n", e)
	}
	fmt.Printf("🎲 Joint distribution: %d rows, mass %.6f\n", net.Joint.Len(), net.Joint.Sum())

	withJoint := viper.GetBool("parse.joint")
	if withJoint {
		fmt.Println()
		fmt.Println(net.Joint)
	}
	return writeReport("network", report.NewNetworkDoc(net, withJoint))
}
