package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var datasetDirFlag string
	var resultsFlag string

	ctx := newCommandContext(&datasetDirFlag, &resultsFlag)

	rootCmd := &cobra.Command{
		Use:           "classifyctl",
		Short:         "Dataset tooling for the LLM classifier",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&datasetDirFlag, "dir", "", "Dataset directory (overrides CLASSIFIER_DATASET_DIR)")
	rootCmd.PersistentFlags().StringVar(&resultsFlag, "results", "", "Results file (overrides CLASSIFIER_DATASET_RESULTS_FILE)")

	rootCmd.AddCommand(newDownloadCommand(ctx))
	rootCmd.AddCommand(newEvaluateCommand(ctx))

	return rootCmd
}
