package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/logging"
)

func newGenreCmd(g *globalFlags) *cobra.Command {
	var (
		topN       int
		text       string
		list       bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "genre [title]",
		Short:   "Recommend by genre overlap and rating, or search by genre substring",
		Example: `  animerec genre "Naruto"
  animerec genre --text romance --top-n 20
  animerec genre --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !cmd.Flags().Changed("text") && !list {
				return fmt.Errorf("a title, --text or --list is required")
			}
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top-n") {
				topN = cfg.Recommend.DefaultGenreTopN
			}

			ctx := cmd.Context()
			a, err := newCatalogApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			switch {
			case list:
				return printLines(cmd.OutOrStdout(), a.genre.Genres(), jsonOutput)
			case cmd.Flags().Changed("text"):
				return printGenreMatches(cmd.OutOrStdout(), a.genre.RecommendByGenreText(ctx, text, topN), jsonOutput)
			default:
				titles := a.genre.RecommendByGenre(ctx, args[0], topN)
				if len(titles) == 0 {
					logging.Debug().Str("title", args[0]).Msg("no genre recommendations")
				}
				return printLines(cmd.OutOrStdout(), titles, jsonOutput)
			}
		},
	}

	cmd.Flags().IntVarP(&topN, "top-n", "n", 0, "number of results (default recommend.default_genre_top_n)")
	cmd.Flags().StringVarP(&text, "text", "t", "", "case-insensitive genre substring")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list all genres")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "output as JSON")
	return cmd
}

func printLines(w io.Writer, lines []string, jsonOutput bool) error {
	if jsonOutput {
		if lines == nil {
			lines = []string{}
		}
		return json.NewEncoder(w).Encode(lines)
	}
	if len(lines) == 0 {
		fmt.Fprintln(w, "No results.")
		return nil
	}
	for i, l := range lines {
		fmt.Fprintf(w, "%2d. %s\n", i+1, l)
	}
	return nil
}

func printGenreMatches(w io.Writer, recs []core.GenreRecommendation, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No results.")
		return nil
	}
	for i, r := range recs {
		fmt.Fprintf(w, "%2d. %s  [%s]  rating: %s\n", i+1, r.Title, strings.Join(r.Genres, core.GenreSeparator), r.RatingScore)
	}
	return nil
}
