package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/procex/internal/logging"
	"github.com/smazurov/procex/internal/tools"
)

// CreateSearchCmd creates the search command.
func CreateSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [pattern] [dir]",
		Short: "Search markdown files for a pattern",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(_ *cobra.Command, args []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})

			dir := "."
			if len(args) == 2 {
				dir = args[1]
			}

			out, err := tools.SearchMarkdown(args[0], dir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "search error: %v\n", err)
				os.Exit(2)
			}
			if out == "" {
				os.Exit(1)
			}
			fmt.Print(out)
		},
	}
}
