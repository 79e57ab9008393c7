package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"workforce/internal/app/server"
	"workforce/internal/platform/config"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the compliance sweep for every tenant and print the summaries.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg := config.Load()
			cfg.RunSeed = false
			app, err := server.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			summaries, err := app.Jobs.SweepAll(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		},
	}
}
