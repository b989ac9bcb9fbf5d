package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeStructured struct {
	result map[string]any
	err    error
	prompt string
}

func (f *fakeStructured) CompleteStructured(_ context.Context, prompt, _ string, _ float32) (map[string]any, error) {
	f.prompt = prompt
	return f.result, f.err
}

func TestExtract(t *testing.T) {
	client := &fakeStructured{result: map[string]any{
		"plaintiff":     "احمد رضایی",
		"defendant":     "محمد کریمی",
		"case_type":     "غصب",
		"property_type": "منزل مسکونی",
		"claims":        []any{"خلع ید", "اجرت‌المثل"},
		"evidence":      []any{"سند مالکیت"},
		"key_facts":     []any{"تصرف بدون اذن از ۱۴۰۱/۰۶/۰۱"},
	}}

	e := NewEntityExtractor(client)
	entities, err := e.Extract(context.Background(), "خواهان مدعی غصب منزل خود است")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if entities.Plaintiff != "احمد رضایی" || entities.Defendant != "محمد کریمی" {
		t.Errorf("parties = %q / %q", entities.Plaintiff, entities.Defendant)
	}
	if entities.CaseType != "غصب" {
		t.Errorf("CaseType = %q", entities.CaseType)
	}
	if len(entities.Claims) != 2 || len(entities.KeyFacts) != 1 {
		t.Errorf("claims=%v key_facts=%v", entities.Claims, entities.KeyFacts)
	}
}

func TestExtractNormalizesNarrative(t *testing.T) {
	client := &fakeStructured{result: map[string]any{"plaintiff": "x"}}
	e := NewEntityExtractor(client)

	// Arabic kaf/yeh and scattered whitespace must be folded before the
	// narrative reaches the prompt.
	if _, err := e.Extract(context.Background(), "مالكيت   خواهان"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(client.prompt, "مالکیت خواهان") {
		t.Error("prompt should carry the normalized narrative")
	}
}

func TestExtractFailure(t *testing.T) {
	e := NewEntityExtractor(&fakeStructured{err: errors.New("provider down")})
	if _, err := e.Extract(context.Background(), "متن"); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Extract() error = %v, want ErrExtractionFailed", err)
	}

	e = NewEntityExtractor(&fakeStructured{result: nil})
	if _, err := e.Extract(context.Background(), "متن"); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Extract() with nil result error = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractWithValidation(t *testing.T) {
	client := &fakeStructured{result: map[string]any{
		"plaintiff": "احمد رضایی",
		"key_facts": []any{"تصرف محرز است"},
	}}
	e := NewEntityExtractor(client)

	entities, warnings, err := e.ExtractWithValidation(context.Background(), "متن پرونده")
	if err != nil {
		t.Fatalf("ExtractWithValidation() error = %v", err)
	}
	if entities.Plaintiff == "" {
		t.Error("plaintiff lost in validation")
	}

	// Missing defendant, case type and claims each produce a warning.
	if len(warnings) != 3 {
		t.Errorf("got %d warnings, want 3: %v", len(warnings), warnings)
	}
}

func TestExtractWithValidationComplete(t *testing.T) {
	client := &fakeStructured{result: map[string]any{
		"plaintiff": "الف",
		"defendant": "ب",
		"case_type": "غصب",
		"claims":    []any{"خلع ید"},
		"key_facts": []any{"واقعیت"},
	}}
	e := NewEntityExtractor(client)

	_, warnings, err := e.ExtractWithValidation(context.Background(), "متن")
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Errorf("complete entities produced warnings: %v", warnings)
	}
}
