package main

import (
	"github.com/spf13/cobra"

	"github.com/ah2166/trackeval/internal/labels"
)

func newLabelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "labels <file>",
		Short: "Parse and print a hand-labeled ground-truth points file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := labels.Load(args[0], cmd.OutOrStdout())
			return err
		},
	}
}
