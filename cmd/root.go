// Package cmd assembles the procex command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "procex",
		Short:        "Process execution and pooling toolkit",
		SilenceUsage: true,
	}

	root.AddCommand(
		CreateRunCmd(),
		CreateBatchCmd(),
		CreateWhichCmd(),
		CreateSearchCmd(),
		CreateUpdateCmd(),
		CreateVersionCmd(),
	)

	return root
}
