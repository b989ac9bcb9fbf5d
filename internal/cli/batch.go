package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmirzaei/mizan/internal/pipeline"
	"github.com/mmirzaei/mizan/internal/seed"
	"github.com/mmirzaei/mizan/internal/worker"
)

var (
	batchWorkers int
	batchOutDir  string
)

var batchCmd = &cobra.Command{
	Use:   "batch <cases.yaml>",
	Short: "Analyze every sample case in a seed file",
	Long: `Batch loads sample cases from a YAML seed file and runs each one
through the analysis chain with a fixed worker pool. One summary line
per case goes to stdout; full reports go to --out when set.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 2, "number of concurrent workers")
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "", "directory for per-case Markdown reports")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cases, err := seed.Load(args[0])
	if err != nil {
		return err
	}

	cfg := loadConfig()
	ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
	defer cancel()

	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		return err
	}

	if batchOutDir != "" {
		if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	pool := worker.NewPool(p, batchWorkers)
	outcomes := pool.Run(ctx, cases)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s  خطا: %v\n", o.Case.CaseID, o.Err)
			continue
		}
		pipeline.RenderSummary(os.Stdout, o.Result)
		if batchOutDir != "" {
			path := filepath.Join(batchOutDir, o.Case.CaseID+".md")
			if err := pipeline.RenderMarkdown(o.Result, path); err != nil {
				fmt.Fprintf(os.Stderr, "%s  نوشتن گزارش ناموفق بود: %v\n", o.Case.CaseID, err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(cases))
	}
	return nil
}
