package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ah2166/trackeval/internal/batch"
	"github.com/ah2166/trackeval/internal/config"
	"github.com/ah2166/trackeval/internal/detect"
	"github.com/ah2166/trackeval/internal/display"
	"github.com/ah2166/trackeval/internal/results"
	"github.com/ah2166/trackeval/internal/video"
)

func newRunCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the batch evaluation described by the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			deps := batch.Deps{
				RunID: uuid.New(),
				NewDetector: func(ctx context.Context) (detect.Detector, error) {
					return detect.NewOllamaDetector(ctx, detect.OllamaConfig{
						Model:   cfg.Run.ModelPath,
						BaseURL: cfg.Ollama.BaseURL,
						Port:    cfg.Ollama.Port,
					}, logger)
				},
				OpenSource: video.Open,
				Out:        cmd.OutOrStdout(),
			}
			if cfg.Run.ShowLiveDisplay {
				deps.NewDisplay = func() (display.Display, error) {
					return display.NewPreview(cfg.Run.PreviewPath)
				}
			}
			if cfg.Postgres.Enabled {
				store, err := results.NewPostgresStore(ctx, results.PostgresConfig{
					Host:     cfg.Postgres.Host,
					Port:     cfg.Postgres.Port,
					User:     cfg.Postgres.User,
					Password: cfg.Postgres.Password,
					DBName:   cfg.Postgres.DBName,
				}, deps.RunID)
				if err != nil {
					logger.Warn("postgres store unavailable, continuing without it", "error", err)
				} else {
					defer store.Close()
					deps.Store = store
				}
			}

			report, err := batch.New(cfg, logger, deps).Run(ctx)
			if errors.Is(err, batch.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Evaluation aborted.")
				return nil
			}
			if err != nil {
				return err
			}
			if report.Resumed {
				fmt.Fprintln(cmd.OutOrStdout(), "Model already evaluated for current group")
			}
			return nil
		},
	}
}
