package reason

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/mmirzaei/mizan/internal/corpus"
	"github.com/mmirzaei/mizan/internal/llm"
	"github.com/mmirzaei/mizan/internal/model"
)

// ErrRetrievalEmpty means no provision cleared the similarity
// threshold: no legal basis, so the whole analysis aborts.
var ErrRetrievalEmpty = errors.New("reason: no relevant provisions found")

// deductionConfidence is the fixed confidence of DEDUCTION steps.
const deductionConfidence = 0.8

// completionClient is the provider slice the engine needs.
type completionClient interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// articleAnalysis is the per-provision applicability outcome.
type articleAnalysis struct {
	articleNumber int
	text          string
	confidence    float64
	applicable    bool
}

// Engine drives the chain-of-thought analysis: retrieval, per-article
// applicability, deduction synthesis and confidence aggregation.
// One analysis is strictly sequential; step order is deterministic.
type Engine struct {
	client    completionClient
	index     *corpus.Index
	topK      int
	threshold float64
	hybrid    bool
	verbose   bool
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithRetrieval overrides the retrieval parameters
func WithRetrieval(topK int, threshold float64, hybrid bool) EngineOption {
	return func(e *Engine) {
		e.topK = topK
		e.threshold = threshold
		e.hybrid = hybrid
	}
}

// WithVerbose enables progress reporting on stderr
func WithVerbose(v bool) EngineOption {
	return func(e *Engine) { e.verbose = v }
}

// NewEngine creates a reasoning engine over a client and an index.
func NewEngine(client completionClient, index *corpus.Index, opts ...EngineOption) *Engine {
	e := &Engine{
		client:    client,
		index:     index,
		topK:      5,
		threshold: 0.7,
		hybrid:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the full reasoning chain for one case. Provider failures
// on a single provision or on deduction synthesis only skip that
// sub-step; an empty retrieval aborts with ErrRetrievalEmpty.
func (e *Engine) Analyze(ctx context.Context, caseDescription string, entities model.CaseEntities, caseID string) (*model.ReasoningResult, error) {
	var steps []model.ReasoningStep

	// Facts are taken as given, not inferred.
	for _, fact := range entities.KeyFacts {
		steps = append(steps, model.ReasoningStep{
			Type:       model.StepFact,
			Content:    fact,
			Confidence: 1.0,
		})
	}

	e.progress("بازیابی مواد قانونی مرتبط...")
	articles, err := e.index.Retrieve(ctx, caseDescription, e.topK, e.threshold, e.hybrid)
	if err != nil {
		return nil, fmt.Errorf("retrieve provisions: %w", err)
	}
	if len(articles) == 0 {
		return nil, ErrRetrievalEmpty
	}
	e.progress("%d ماده قانونی بازیابی شد", len(articles))

	// Applicability analyses, one provision at a time in rank order.
	var analyses []articleAnalysis
	for _, scored := range articles {
		p := scored.Provision
		e.progress("تحلیل ماده %d...", p.Number)

		text, err := e.client.Complete(ctx, llm.CompletionRequest{
			Prompt:      applicabilityPrompt(p, entities.KeyFacts),
			Temperature: 0.3,
		})
		if err != nil || text == "" {
			// Skip this provision only; keep analyzing the rest.
			e.progress("ماده %d نادیده گرفته شد: %v", p.Number, err)
			continue
		}

		confidence := ConfidenceFromText(text)
		analyses = append(analyses, articleAnalysis{
			articleNumber: p.Number,
			text:          text,
			confidence:    confidence,
			applicable:    confidence > ApplicabilityThreshold,
		})
		steps = append(steps, model.ReasoningStep{
			Type:           model.StepArticle,
			Content:        text,
			Confidence:     confidence,
			RelatedArticle: p.Number,
		})
	}

	e.progress("استنتاج نتیجه‌گیری‌های حقوقی...")
	deductions := e.generateDeductions(ctx, analyses, entities.KeyFacts)
	for _, deduction := range deductions {
		steps = append(steps, model.ReasoningStep{
			Type:       model.StepDeduction,
			Content:    deduction,
			Confidence: deductionConfidence,
		})
	}

	overall := 0.5
	if len(analyses) > 0 {
		var sum float64
		for _, a := range analyses {
			sum += a.confidence
		}
		overall = sum / float64(len(analyses))
	}

	return &model.ReasoningResult{
		CaseID:            caseID,
		Entities:          entities,
		RetrievedArticles: articles,
		Steps:             steps,
		Deductions:        deductions,
		OverallConfidence: overall,
	}, nil
}

// generateDeductions synthesizes intermediate conclusions. A failed or
// empty completion yields no deductions; the analysis continues.
func (e *Engine) generateDeductions(ctx context.Context, analyses []articleAnalysis, facts []string) []string {
	text, err := e.client.Complete(ctx, llm.CompletionRequest{
		Prompt:      deductionPrompt(analyses, facts),
		Temperature: 0.3,
	})
	if err != nil || text == "" {
		return nil
	}
	return parseDeductions(text)
}

// parseDeductions keeps lines that look like enumerated conclusions:
// after trimming, the line starts with a digit, '-' or '•'. Leading
// enumerators and punctuation are stripped from the kept lines.
func parseDeductions(text string) []string {
	var deductions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		first := []rune(line)[0]
		if !unicode.IsDigit(first) && first != '-' && first != '•' {
			continue
		}
		deduction := strings.TrimSpace(strings.TrimLeft(line, "0123456789۰۱۲۳۴۵۶۷۸۹.-•) "))
		if deduction != "" {
			deductions = append(deductions, deduction)
		}
	}
	return deductions
}

// FormatChain renders the reasoning trace as readable Persian Markdown.
func FormatChain(result *model.ReasoningResult) string {
	var parts []string

	parts = append(parts, "## واقعیات پرونده")
	for i, step := range result.StepsOfType(model.StepFact) {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, step.Content))
	}
	parts = append(parts, "")

	parts = append(parts, "## مواد قانونی قابل اعمال")
	for _, step := range result.StepsOfType(model.StepArticle) {
		parts = append(parts, fmt.Sprintf("### ماده %d", step.RelatedArticle))
		parts = append(parts, step.Content)
		parts = append(parts, fmt.Sprintf("**اطمینان:** %.0f%%", step.Confidence*100))
		parts = append(parts, "")
	}

	parts = append(parts, "## نتیجه‌گیری‌های حقوقی")
	for i, deduction := range result.Deductions {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, deduction))
	}

	return strings.Join(parts, "\n")
}

func (e *Engine) progress(format string, args ...any) {
	if e.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
