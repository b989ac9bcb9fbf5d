package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/mmirzaei/mizan/internal/model"
	"github.com/mmirzaei/mizan/internal/pipeline"
)

// fakeRunner fails cases whose ID is listed and records call counts.
type fakeRunner struct {
	failing map[string]bool
	calls   atomic.Int32
}

func (f *fakeRunner) AnalyzeCase(_ context.Context, _ string, caseID string) (*pipeline.CaseResult, error) {
	f.calls.Add(1)
	if f.failing[caseID] {
		return nil, errors.New("analysis failed")
	}
	return &pipeline.CaseResult{
		Result: &model.ReasoningResult{CaseID: caseID},
	}, nil
}

func sampleCases(n int) []model.SampleCase {
	cases := make([]model.SampleCase, n)
	for i := range cases {
		cases[i] = model.SampleCase{
			CaseID:      fmt.Sprintf("CASE-%03d", i+1),
			Description: "شرح پرونده",
		}
	}
	return cases
}

func TestRunPreservesOrder(t *testing.T) {
	runner := &fakeRunner{}
	pool := NewPool(runner, 3)

	cases := sampleCases(7)
	outcomes := pool.Run(context.Background(), cases)

	if len(outcomes) != 7 {
		t.Fatalf("got %d outcomes, want 7", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Err != nil {
			t.Errorf("outcome %d error = %v", i, o.Err)
			continue
		}
		if o.Result.Result.CaseID != cases[i].CaseID {
			t.Errorf("outcome %d = %q, want %q (input order)", i, o.Result.Result.CaseID, cases[i].CaseID)
		}
	}
	if got := runner.calls.Load(); got != 7 {
		t.Errorf("runner called %d times, want 7", got)
	}
}

func TestRunCollectsFailures(t *testing.T) {
	runner := &fakeRunner{failing: map[string]bool{"CASE-002": true}}
	pool := NewPool(runner, 2)

	outcomes := pool.Run(context.Background(), sampleCases(3))

	if outcomes[1].Err == nil {
		t.Error("failing case should carry its error")
	}
	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Error("one failure must not poison the other outcomes")
	}
}

func TestRunNormalizesWorkerCount(t *testing.T) {
	runner := &fakeRunner{}
	pool := NewPool(runner, 0)

	outcomes := pool.Run(context.Background(), sampleCases(2))
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err != nil {
			t.Errorf("outcome error = %v", o.Err)
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	pool := NewPool(runner, 2)

	outcomes := pool.Run(ctx, sampleCases(4))
	for i, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("outcome %d error = %v, want context.Canceled", i, o.Err)
		}
	}
	if got := runner.calls.Load(); got != 0 {
		t.Errorf("runner called %d times on cancelled context, want 0", got)
	}
}
