package main

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akramsystems/llm-n-class-classifier/internal/adapter/client"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/prompt"
	"github.com/akramsystems/llm-n-class-classifier/internal/usecase"
)

type evaluateOptions struct {
	sample   int
	seed     uint64
	fewShot  int
	maxError float64
}

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate <dataset>",
		Short: "Measure classification accuracy on a downloaded dataset",
		Long: "Classify a random sample of <dir>/<dataset>.csv using the labels in\n" +
			"<dir>/<dataset>_labels.json (and <dataset>_schema.json when present),\n" +
			"append the accuracy to the results file and print a summary.\n" +
			"Rows rejected with HTTP 429 are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				opts.seed = uint64(time.Now().UnixNano())
			}
			return runEvaluate(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.sample, "sample", 100, "Number of rows to classify")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Sampling seed (random when unset)")
	cmd.Flags().IntVar(&opts.fewShot, "few-shot", 0, "Few-shot examples drawn from rows outside the sample")
	cmd.Flags().Float64Var(&opts.maxError, "max-error", 1, "Fail when the classification error exceeds this value")

	return cmd
}

func runEvaluate(cmd *cobra.Command, ctx *commandContext, name string, opts evaluateOptions) error {
	if opts.sample <= 0 {
		return fmt.Errorf("--sample must be positive, got %d", opts.sample)
	}

	completion, err := ctx.completionClient()
	if err != nil {
		return err
	}
	repo, err := ctx.repository()
	if err != nil {
		return err
	}
	log := ctx.log()

	table, err := repo.LoadTable(cmd.Context(), name)
	if err != nil {
		return err
	}
	labels, err := repo.LoadLabels(cmd.Context(), name)
	if err != nil {
		return err
	}
	schema, err := repo.LoadSchema(cmd.Context(), name)
	if err != nil {
		return err
	}

	sample, rest := table.Sample(opts.sample, rand.New(rand.NewPCG(opts.seed, opts.seed)))
	examples := lo.Map(lo.Slice(rest, 0, opts.fewShot), func(r entity.Row, _ int) entity.FewShotExample {
		return r.Example()
	})
	log.Info("Evaluating dataset",
		zap.String("dataset", name),
		zap.Int("sample", len(sample)),
		zap.Int("few_shot", len(examples)),
		zap.Bool("schema", schema != ""),
		zap.Uint64("seed", opts.seed),
	)

	classifyUC := usecase.NewClassificationUsecase(completion, prompt.NewBuilder(log), nil, log)
	evaluationUC := usecase.NewEvaluationUsecase(classifyUC, repo, client.IsRateLimited, log)

	report, err := evaluationUC.Evaluate(cmd.Context(), &usecase.EvaluateInput{
		DatasetName:     name,
		Rows:            sample,
		Labels:          labels,
		FewShotExamples: examples,
		SchemaText:      schema,
	})
	if err != nil {
		return err
	}

	printReport(cmd, report)

	if report.Result.Error > opts.maxError {
		return fmt.Errorf("classification error for %s is too high: %.2f > %.2f", name, report.Result.Error, opts.maxError)
	}
	return nil
}

func printReport(cmd *cobra.Command, report *usecase.EvaluationReport) {
	res := report.Result
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, renderReport(
		[]string{"Dataset", "Evaluated", "Skipped", "Correct", "Accuracy", "Error"},
		[][]string{{
			res.DatasetName,
			strconv.Itoa(res.Evaluated),
			strconv.Itoa(res.Skipped),
			strconv.Itoa(res.Correct),
			fmt.Sprintf("%.2f", res.Accuracy),
			fmt.Sprintf("%.2f", res.Error),
		}},
		1, 2, 3, 4, 5,
	))

	if len(report.Mismatches) == 0 {
		return
	}
	rows := lo.Map(report.Mismatches, func(m usecase.Mismatch, _ int) []string {
		return []string{strconv.Itoa(m.Index), m.Expected, m.Predicted}
	})
	fmt.Fprintln(out, renderReport([]string{"Row", "Expected", "Predicted"}, rows, 0))
}
