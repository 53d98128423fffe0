package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "trackeval",
		Short:         "Batch-evaluate a detection model's accuracy on recorded animal videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "trackeval.toml", "path to the evaluation config file")

	root.AddCommand(newRunCommand(&configPath))
	root.AddCommand(newLabelsCommand())
	return root
}

func newLogger() *slog.Logger {
	return slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}),
	)
}
