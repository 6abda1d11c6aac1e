package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/animerec/feature"
)

func newBuildCacheCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "build-cache",
		Short:   "Re-encode the catalog with the dense encoder and save the matrix cache",
		Example: `  ANIMEREC_ENCODER__KIND=dense ANIMEREC_CACHE__KIND=file animerec build-cache`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if feature.Kind(cfg.Encoder.Kind) != feature.KindDense {
				return fmt.Errorf("build-cache requires encoder.kind=dense (sparse matrices are refit per process)")
			}
			if cfg.Cache.Kind == "" || cfg.Cache.Kind == "none" {
				return fmt.Errorf("build-cache requires cache.kind to be file, redis or memory")
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.content.Rebuild(ctx)
			if err != nil {
				return err
			}
			rows, dim := m.Shape()
			fmt.Fprintf(cmd.OutOrStdout(), "Cached %d x %d matrix (%d degenerate rows).\n", rows, dim, m.DegenerateCount())
			return nil
		},
	}
}
