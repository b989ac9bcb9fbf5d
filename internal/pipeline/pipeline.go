package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmirzaei/mizan/internal/cache"
	"github.com/mmirzaei/mizan/internal/corpus"
	"github.com/mmirzaei/mizan/internal/extract"
	"github.com/mmirzaei/mizan/internal/graph"
	"github.com/mmirzaei/mizan/internal/llm"
	"github.com/mmirzaei/mizan/internal/model"
	"github.com/mmirzaei/mizan/internal/reason"
	"github.com/mmirzaei/mizan/internal/verdict"
)

// Pipeline owns one instance of every stage and hands artifacts
// forward by value; no stage reaches back into another's state.
type Pipeline struct {
	cfg       *model.Config
	corpus    *corpus.Corpus
	client    *llm.Client
	index     *corpus.Index
	extractor *extract.EntityExtractor
	engine    *reason.Engine
	verdicts  *verdict.Generator
}

// CaseResult bundles everything one analysis produced. Verdict may be
// nil when synthesis failed; the reasoning result and graph stay valid.
type CaseResult struct {
	Result   *model.ReasoningResult `json:"result"`
	Graph    *graph.Graph           `json:"graph"`
	Verdict  *model.Verdict         `json:"verdict,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
}

// New loads the corpus and binds the configured provider.
func New(ctx context.Context, cfg *model.Config) (*Pipeline, error) {
	corp, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	p := &Pipeline{cfg: cfg, corpus: corp}
	if err := p.bindProvider(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// bindProvider (re)constructs every component whose identity depends on
// the active provider. The loaded corpus is deliberately untouched.
func (p *Pipeline) bindProvider(ctx context.Context) error {
	provider, err := llm.NewProvider(ctx, llm.ConfigFromModel(p.cfg.Provider))
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	opts := []llm.ClientOption{
		llm.WithDefaults(p.cfg.Provider.Temperature, p.cfg.Provider.MaxTokens),
		llm.WithMaxRetries(p.cfg.Provider.MaxRetries),
	}
	if p.cfg.Cache.Enabled {
		opts = append(opts, llm.WithCache(
			cache.NewLayeredCache(p.cfg.Cache.TTL, p.cfg.Cache.Path, p.cfg.Cache.TTL),
			p.cfg.Cache.TTL))
	}
	if p.cfg.Provider.RPS > 0 {
		opts = append(opts, llm.WithRPS(p.cfg.Provider.RPS))
	}
	p.client = llm.NewClient(provider, opts...)

	switch p.cfg.Retrieval.Backend {
	case "dense":
		p.index, err = corpus.NewDenseIndex(ctx, p.corpus, p.client, p.cfg.Corpus.EmbeddingsPath)
		if err != nil {
			return fmt.Errorf("build dense index: %w", err)
		}
	default:
		p.index = corpus.NewLexicalIndex(p.corpus)
	}

	p.extractor = extract.NewEntityExtractor(p.client)
	p.engine = reason.NewEngine(p.client, p.index,
		reason.WithRetrieval(p.cfg.Retrieval.TopK, p.cfg.Retrieval.Threshold, p.cfg.Retrieval.Hybrid),
		reason.WithVerbose(p.cfg.Output.Verbose))
	p.verdicts = verdict.NewGenerator(p.client)
	return nil
}

// SwitchProvider rebinds the pipeline to a new provider configuration.
// Old cache entries simply miss, since the provider identity is part of
// every cache key.
func (p *Pipeline) SwitchProvider(ctx context.Context, pc model.ProviderConfig) error {
	p.cfg.Provider = pc
	return p.bindProvider(ctx)
}

// Corpus exposes the loaded corpus for lookup commands.
func (p *Pipeline) Corpus() *corpus.Corpus { return p.corpus }

// Client exposes the bound provider client.
func (p *Pipeline) Client() *llm.Client { return p.client }

// AnalyzeCase runs the full chain for one narrative: entity extraction,
// reasoning, graph construction and verdict synthesis. Verdict failure
// degrades to a warning; extraction or retrieval failure aborts.
func (p *Pipeline) AnalyzeCase(ctx context.Context, description, caseID string) (*CaseResult, error) {
	if caseID == "" {
		caseID = "CASE-" + uuid.NewString()[:8]
	}

	entities, warnings, err := p.extractor.ExtractWithValidation(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("extract entities: %w", err)
	}

	result, err := p.engine.Analyze(ctx, description, *entities, caseID)
	if err != nil {
		return nil, err
	}

	g := graph.Build(result)

	v, err := p.verdicts.Generate(ctx, result)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("تولید حکم ناموفق بود: %v", err))
		v = nil
	}

	return &CaseResult{
		Result:   result,
		Graph:    g,
		Verdict:  v,
		Warnings: warnings,
	}, nil
}
