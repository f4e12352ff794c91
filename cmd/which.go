package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/procex/internal/logging"
	"github.com/smazurov/procex/internal/tools"
)

// CreateWhichCmd creates the which command.
func CreateWhichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "which [binary]",
		Short: "Locate a binary on PATH",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})

			path, ok := tools.Which(args[0])
			if !ok {
				fmt.Fprintf(os.Stderr, "%s not found\n", args[0])
				os.Exit(1)
			}
			fmt.Println(path)
		},
	}
}
