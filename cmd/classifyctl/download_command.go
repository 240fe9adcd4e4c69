package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akramsystems/llm-n-class-classifier/internal/adapter/client"
	"github.com/akramsystems/llm-n-class-classifier/internal/usecase"
)

var defaultHubDatasets = []string{"scikit-learn/iris", "scikit-learn/imdb", "Mireu-Lab/NSL-KDD"}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var maxRows int

	cmd := &cobra.Command{
		Use:   "download [hub-dataset...]",
		Short: "Download hub datasets as CSV and generate label descriptions",
		Long: "Download each hub dataset (all splits concatenated) into <dir>/<name>.csv,\n" +
			"renaming the last column to \"label\", and write an LLM-generated description\n" +
			"for every label value to <dir>/<name>_labels.json.\n\n" +
			"Without arguments the iris, imdb and NSL-KDD datasets are downloaded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-rows") {
				maxRows = cfg.Dataset.MaxRows
			}
			if len(args) == 0 {
				args = defaultHubDatasets
			}

			completion, err := ctx.completionClient()
			if err != nil {
				return err
			}
			repo, err := ctx.repository()
			if err != nil {
				return err
			}

			hub := client.NewHubClient(cfg.Dataset.HubURL, cfg.Dataset.HubTimeout, cfg.Dataset.HubToken)
			datasetUC := usecase.NewDatasetUsecase(hub, completion, repo, maxRows, ctx.log())

			rows := make([][]string, 0, len(args))
			for _, id := range args {
				out, err := datasetUC.Download(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("download %s: %w", id, err)
				}
				rows = append(rows, []string{
					out.Name,
					strconv.Itoa(out.Rows),
					strings.Join(out.Labels, ", "),
					out.TablePath,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderReport(
				[]string{"Dataset", "Rows", "Labels", "File"},
				rows,
				1,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "Maximum rows per dataset (default CLASSIFIER_DATASET_MAX_ROWS, 0 for no limit)")

	return cmd
}
