package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recommender/internal/config"
)

const app = "recommender"

type rootOptions struct {
	env      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           app,
		Short:         "Recommends skills assessments for a job description",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(),
		"environment name; selects config/<env>.yaml (default $ENV or local)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newIngestCmd(opts),
		newRecommendCmd(opts),
		newVersionCmd(),
	)
	return root
}
