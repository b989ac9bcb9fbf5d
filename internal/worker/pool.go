// Package worker runs batches of sample cases through the analysis
// pipeline with bounded concurrency.
package worker

import (
	"context"
	"sync"

	"github.com/mmirzaei/mizan/internal/model"
	"github.com/mmirzaei/mizan/internal/pipeline"
)

// Runner analyzes one case narrative. *pipeline.Pipeline satisfies it.
type Runner interface {
	AnalyzeCase(ctx context.Context, description, caseID string) (*pipeline.CaseResult, error)
}

// Outcome pairs a sample case with its analysis result or error.
type Outcome struct {
	Case   model.SampleCase
	Result *pipeline.CaseResult
	Err    error
}

// Pool fans sample cases out to a fixed number of workers sharing one
// Runner. The provider client behind the pipeline is safe for
// concurrent use, so workers need no further coordination.
type Pool struct {
	runner  Runner
	workers int
}

func NewPool(runner Runner, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{runner: runner, workers: workers}
}

// Run analyzes all cases and returns outcomes in input order. A
// cancelled context stops workers before they pick up the next case;
// cases never started are reported with the context error.
func (p *Pool) Run(ctx context.Context, cases []model.SampleCase) []Outcome {
	outcomes := make([]Outcome, len(cases))
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				c := cases[i]
				if err := ctx.Err(); err != nil {
					outcomes[i] = Outcome{Case: c, Err: err}
					continue
				}
				res, err := p.runner.AnalyzeCase(ctx, c.Description, c.CaseID)
				outcomes[i] = Outcome{Case: c, Result: res, Err: err}
			}
		}()
	}

	for i := range cases {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return outcomes
}
