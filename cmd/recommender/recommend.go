package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
	recommenduc "github.com/kailas-cloud/recommender/internal/usecase/recommend"
)

type cliAssessment struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	AdaptiveSupport string   `json:"adaptive_support"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"`
	RemoteSupport   string   `json:"remote_support"`
	TestType        []string `json:"test_type"`
	Score           float64  `json:"score"`
}

type cliOutput struct {
	TechnicalQuery         string          `json:"technical_query"`
	BehavioralQuery        string          `json:"behavioral_query"`
	RecommendedAssessments []cliAssessment `json:"recommended_assessments"`
}

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recommend <job description>",
		Short: "Print recommendations for a job description as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApplication(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.loadCatalog(ctx); err != nil {
				return err
			}

			rec, err := a.recommend.Recommend(ctx, strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			out := cliOutput{
				TechnicalQuery:         rec.Queries.Technical,
				BehavioralQuery:        rec.Queries.Behavioral,
				RecommendedAssessments: make([]cliAssessment, len(rec.Items)),
			}
			for i, it := range rec.Items {
				out.RecommendedAssessments[i] = toCLIAssessment(it)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", recommenduc.DefaultLimit, "number of assessments (clamped to 1..10)")
	return cmd
}

func toCLIAssessment(r domassess.Record) cliAssessment {
	return cliAssessment{
		URL:             r.URL(),
		Name:            r.Name(),
		AdaptiveSupport: string(r.AdaptiveSupport()),
		Description:     r.Description(),
		Duration:        r.Duration(),
		RemoteSupport:   string(r.RemoteSupport()),
		TestType:        r.TestTypes(),
		Score:           r.Score(),
	}
}
