package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/rerank"
)

func newRecommendCmd(g *globalFlags) *cobra.Command {
	var (
		topN       int
		query      string
		expr       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "recommend [title]",
		Short:   "Recommend titles similar to a catalog item or a free-text query",
		Example: `  animerec recommend "Naruto"
  animerec recommend "Naruto" --top-n 10 --filter 'item.rating != null && item.rating >= 8.0'
  animerec recommend --query "ninja village friendship"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && query == "" {
				return fmt.Errorf("either a title or --query is required")
			}
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top-n") {
				topN = cfg.Recommend.DefaultTopN
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			filters := a.filters()
			if expr != "" {
				f, err := filter.NewExprFilter(expr)
				if err != nil {
					return err
				}
				filters = append(filters, f)
			}

			rank := func(ctx context.Context, n int) ([]core.Recommendation, error) {
				if query != "" {
					return a.content.RecommendByText(ctx, query, n)
				}
				return a.content.Recommend(ctx, args[0], n)
			}

			var recs []core.Recommendation
			if len(filters) == 0 || topN <= 0 {
				recs, err = rank(ctx, topN)
			} else {
				recs, err = rank(ctx, a.catalog.Len())
				if err == nil {
					p := &pipeline.Pipeline{Nodes: []pipeline.Node{
						&filter.FilterNode{Filters: filters},
						&rerank.TopNNode{N: topN},
					}}
					recs, err = p.Run(ctx, recs)
				}
			}
			if err != nil {
				if core.IsNotFound(err) {
					return fmt.Errorf("no such item: %q", args[0])
				}
				return err
			}
			return printRecommendations(cmd.OutOrStdout(), recs, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&topN, "top-n", "n", 0, "number of results (default recommend.default_top_n)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "free-text query instead of a catalog title")
	cmd.Flags().StringVar(&expr, "filter", "", "CEL expression applied after ranking")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "output as JSON")
	return cmd
}

func printRecommendations(w io.Writer, recs []core.Recommendation, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return nil
	}
	for i, r := range recs {
		fmt.Fprintf(w, "%2d. %s  (%.4f)\n", i+1, r.Title, r.SimilarityScore)
		if len(r.Genres) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(r.Genres, core.GenreSeparator))
		}
	}
	return nil
}
