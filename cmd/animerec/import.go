package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/source"
)

func newImportCmd(g *globalFlags) *cobra.Command {
	var (
		dbPath string
		kind   string
	)

	cmd := &cobra.Command{
		Use:     "import <dataset>",
		Short:   "Import a crawled JSON/YAML dataset into SQLite",
		Long:    `Reads the crawler output ({"<id>": {"title", "genre", "rating", ...}})
and upserts every record into the anime table keyed by title.`,
		Example: `  animerec import anime.json --db anime.db
  animerec import anime.yaml --db anime.db --kind yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(g); err != nil {
				return err
			}
			ctx := cmd.Context()

			k := source.Kind(kind)
			if k == "" {
				k = source.KindFromPath(args[0])
			}
			if k == source.KindSQLite {
				return fmt.Errorf("import source must be a json or yaml dataset")
			}
			src, err := source.Open(ctx, k, args[0])
			if err != nil {
				return err
			}
			items, err := src.LoadItems(ctx)
			if err != nil {
				return err
			}

			repo, err := source.OpenSQLite(ctx, dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := repo.Upsert(ctx, items)
			if err != nil {
				return err
			}
			total, err := repo.Count(ctx)
			if err != nil {
				return err
			}
			logging.Info().Int("upserted", n).Int("total", total).Str("db", dbPath).Msg("import finished")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items into %s (%d total).\n", n, dbPath, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "anime.db", "SQLite database path")
	cmd.Flags().StringVar(&kind, "kind", "", "dataset format: json or yaml (default: by extension)")
	return cmd
}
