package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var reindex bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed the catalog into the vector index and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApplication(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			if reindex {
				a.cfg.Catalog.Reindex = true
			}

			res, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "records: %d, embedded: %d, skipped: %t\n",
				res.Total, res.Embedded, res.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reindex, "reindex", false, "drop the index and re-embed even if the catalog is unchanged")
	return cmd
}
