package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/procex/internal/logging"
	"github.com/smazurov/procex/internal/updater"
)

const updateRepository = "smazurov/procex"

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var (
		checkOnly  bool
		prerelease bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update procex to the latest release",
		Run: func(cmd *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "info", Format: "text"})

			u, err := updater.New(updateRepository, prerelease)
			if err != nil {
				fmt.Fprintf(os.Stderr, "update error: %v\n", err)
				os.Exit(1)
			}

			if checkOnly {
				info, err := u.Check(cmd.Context())
				if err != nil {
					fmt.Fprintf(os.Stderr, "update error: %v\n", err)
					os.Exit(1)
				}
				if !info.Available {
					fmt.Printf("procex %s is up to date\n", info.CurrentVersion)
					return
				}
				fmt.Printf("update available: %s -> %s\n%s\n", info.CurrentVersion, info.LatestVersion, info.URL)
				return
			}

			info, err := u.Apply(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "update error: %v\n", err)
				os.Exit(1)
			}
			if !info.Available {
				fmt.Printf("procex %s is up to date\n", info.CurrentVersion)
				return
			}
			fmt.Printf("updated to %s\n", info.LatestVersion)
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for a newer release, do not install")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prereleases")

	return cmd
}
