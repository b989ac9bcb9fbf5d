package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmirzaei/mizan/internal/pipeline"
)

var (
	analyzeText      string
	analyzeCaseID    string
	analyzeProvider  string
	analyzeModel     string
	analyzeBackend   string
	analyzeTopK      int
	analyzeThreshold float64
	analyzeNoCache   bool
	analyzeJSONOut   string
	analyzeMDOut     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a case narrative and draft a verdict",
	Long: `Analyze runs the full chain on one Persian case narrative: entity
extraction, article retrieval, step-by-step reasoning and verdict
synthesis.

The narrative comes from a file argument or from --text.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeText, "text", "t", "", "case narrative (instead of a file)")
	analyzeCmd.Flags().StringVar(&analyzeCaseID, "case-id", "", "case identifier (generated when empty)")
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "language model provider (openai, gemini)")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "model name override")
	analyzeCmd.Flags().StringVar(&analyzeBackend, "backend", "", "retrieval backend (lexical, dense)")
	analyzeCmd.Flags().IntVar(&analyzeTopK, "top-k", 0, "number of articles to retrieve")
	analyzeCmd.Flags().Float64Var(&analyzeThreshold, "threshold", -1, "minimum retrieval score")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "bypass the response cache")
	analyzeCmd.Flags().StringVar(&analyzeJSONOut, "json", "", "write full result JSON to file (- for stdout)")
	analyzeCmd.Flags().StringVar(&analyzeMDOut, "md", "", "write Markdown report to file (- for stdout)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	description, err := readNarrative(args)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	if analyzeProvider != "" {
		cfg.Provider.Name = analyzeProvider
		cfg.Provider.APIKey = providerAPIKey(analyzeProvider)
		if analyzeModel == "" {
			// provider switch resets the model to the provider default
			cfg.Provider.Model = ""
		}
	}
	if analyzeModel != "" {
		cfg.Provider.Model = analyzeModel
	}
	if analyzeBackend != "" {
		cfg.Retrieval.Backend = analyzeBackend
	}
	if analyzeTopK > 0 {
		cfg.Retrieval.TopK = analyzeTopK
	}
	if analyzeThreshold >= 0 {
		cfg.Retrieval.Threshold = analyzeThreshold
	}
	if analyzeNoCache {
		cfg.Cache.Enabled = false
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
	defer cancel()

	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		return err
	}

	res, err := p.AnalyzeCase(ctx, description, analyzeCaseID)
	if err != nil {
		return err
	}

	return renderResult(res)
}

func readNarrative(args []string) (string, error) {
	if analyzeText != "" {
		return analyzeText, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("provide a narrative file or --text")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read narrative: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("narrative file %s is empty", args[0])
	}
	return text, nil
}

// renderResult writes the requested outputs; with no flags set it
// prints the Markdown report to stdout.
func renderResult(res *pipeline.CaseResult) error {
	rendered := false

	if analyzeJSONOut != "" {
		path := analyzeJSONOut
		if path == "-" {
			path = ""
		}
		if err := pipeline.RenderJSON(res, path); err != nil {
			return err
		}
		rendered = true
	}
	if analyzeMDOut != "" {
		path := analyzeMDOut
		if path == "-" {
			path = ""
		}
		if err := pipeline.RenderMarkdown(res, path); err != nil {
			return err
		}
		rendered = true
	}
	if !rendered {
		return pipeline.RenderMarkdown(res, "")
	}
	return nil
}
