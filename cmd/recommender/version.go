package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recommender/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s (commit %s, built %s)\n",
				app, version.Version, version.Commit, version.Date)
		},
	}
}
