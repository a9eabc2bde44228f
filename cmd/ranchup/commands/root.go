// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the ranchup CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranchup",
		Short: "Zero-downtime service upgrades on Rancher",
	}

	cmd.AddCommand(Deploy())
	cmd.AddCommand(Version())

	return cmd
}
