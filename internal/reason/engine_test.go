package reason

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mmirzaei/mizan/internal/corpus"
	"github.com/mmirzaei/mizan/internal/llm"
	"github.com/mmirzaei/mizan/internal/model"
)

// fakeClient routes applicability and deduction prompts to canned
// responses and records how often it was called.
type fakeClient struct {
	applicability func(calls int) (string, error)
	deduction     func() (string, error)
	calls         int
}

func (f *fakeClient) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	if strings.HasPrefix(req.Prompt, "بر اساس تحلیل") {
		if f.deduction == nil {
			return "", errors.New("no deduction response configured")
		}
		return f.deduction()
	}
	f.calls++
	return f.applicability(f.calls)
}

func testIndex(t *testing.T) *corpus.Index {
	t.Helper()
	c := corpus.New([]model.Provision{
		{
			Number:   308,
			Title:    "تعریف غصب",
			Text:     "غصب استیلا بر حق غیر است به نحو عدوان",
			Keywords: []string{"غصب", "استیلا"},
		},
		{
			Number:   311,
			Title:    "تکلیف رد عین",
			Text:     "غاصب باید مال مغصوب را عیناً به صاحب آن رد نماید",
			Keywords: []string{"رد عین", "خلع ید"},
		},
	}, nil)
	return corpus.NewLexicalIndex(c)
}

func TestAnalyzeFullChain(t *testing.T) {
	client := &fakeClient{
		applicability: func(int) (string, error) {
			return "این ماده قطعاً بر پرونده قابل اعمال است", nil
		},
		deduction: func() (string, error) {
			return "1. تصرف خوانده غاصبانه است\n2. خوانده ملزم به رد عین است", nil
		},
	}
	engine := NewEngine(client, testIndex(t), WithRetrieval(5, 0, true))

	entities := model.CaseEntities{
		KeyFacts: []string{"خوانده ملک را غصب کرده است", "مالک سند رسمی دارد"},
	}
	result, err := engine.Analyze(context.Background(), "خوانده ملک خواهان را غصب کرده و حاضر به رد عین نیست", entities, "CASE-T1")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.CaseID != "CASE-T1" {
		t.Errorf("CaseID = %q, want CASE-T1", result.CaseID)
	}

	facts := result.StepsOfType(model.StepFact)
	if len(facts) != 2 {
		t.Fatalf("got %d FACT steps, want 2", len(facts))
	}
	for _, s := range facts {
		if s.Confidence != 1.0 {
			t.Errorf("FACT confidence = %v, want 1.0", s.Confidence)
		}
	}

	articles := result.StepsOfType(model.StepArticle)
	if len(articles) != len(result.RetrievedArticles) {
		t.Errorf("got %d ARTICLE steps for %d retrieved articles",
			len(articles), len(result.RetrievedArticles))
	}
	for _, s := range articles {
		if s.Confidence != 0.95 {
			t.Errorf("ARTICLE confidence = %v, want 0.95", s.Confidence)
		}
		if s.RelatedArticle == 0 {
			t.Error("ARTICLE step missing related article number")
		}
	}

	if len(result.Deductions) != 2 {
		t.Fatalf("got %d deductions, want 2: %v", len(result.Deductions), result.Deductions)
	}
	for _, s := range result.StepsOfType(model.StepDeduction) {
		if s.Confidence != 0.8 {
			t.Errorf("DEDUCTION confidence = %v, want 0.8", s.Confidence)
		}
	}

	if result.OverallConfidence != 0.95 {
		t.Errorf("OverallConfidence = %v, want 0.95", result.OverallConfidence)
	}
}

func TestAnalyzeEmptyRetrieval(t *testing.T) {
	client := &fakeClient{
		applicability: func(int) (string, error) {
			t.Fatal("provider must not be called when retrieval is empty")
			return "", nil
		},
	}
	// Impossible threshold guarantees an empty retrieval.
	engine := NewEngine(client, testIndex(t), WithRetrieval(5, 0.999, false))

	_, err := engine.Analyze(context.Background(), "متن بی‌ربط", model.CaseEntities{}, "CASE-T2")
	if !errors.Is(err, ErrRetrievalEmpty) {
		t.Errorf("Analyze() error = %v, want ErrRetrievalEmpty", err)
	}
}

func TestAnalyzeSkipsFailedProvision(t *testing.T) {
	client := &fakeClient{
		applicability: func(calls int) (string, error) {
			if calls == 1 {
				return "", errors.New("transient provider failure")
			}
			return "احتمالاً قابل اعمال است", nil
		},
		deduction: func() (string, error) {
			return "- خوانده ضامن است", nil
		},
	}
	engine := NewEngine(client, testIndex(t), WithRetrieval(5, 0, true))

	result, err := engine.Analyze(context.Background(),
		"غصب ملک و رد عین", model.CaseEntities{KeyFacts: []string{"واقعیت"}}, "CASE-T3")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	articles := result.StepsOfType(model.StepArticle)
	if len(articles) != len(result.RetrievedArticles)-1 {
		t.Errorf("got %d ARTICLE steps, want %d (one skipped)",
			len(articles), len(result.RetrievedArticles)-1)
	}
	if result.OverallConfidence != 0.80 {
		t.Errorf("OverallConfidence = %v, want 0.80", result.OverallConfidence)
	}
}

func TestAnalyzeAllProvisionsFail(t *testing.T) {
	client := &fakeClient{
		applicability: func(int) (string, error) {
			return "", errors.New("provider down")
		},
		deduction: func() (string, error) {
			return "", errors.New("provider down")
		},
	}
	engine := NewEngine(client, testIndex(t), WithRetrieval(5, 0, true))

	result, err := engine.Analyze(context.Background(),
		"غصب ملک", model.CaseEntities{KeyFacts: []string{"واقعیت"}}, "CASE-T4")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if got := len(result.StepsOfType(model.StepArticle)); got != 0 {
		t.Errorf("got %d ARTICLE steps, want 0", got)
	}
	if len(result.Deductions) != 0 {
		t.Errorf("got %d deductions, want 0", len(result.Deductions))
	}
	if result.OverallConfidence != 0.5 {
		t.Errorf("OverallConfidence = %v, want 0.5 fallback", result.OverallConfidence)
	}
}

func TestParseDeductions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "numbered latin digits",
			text: "1. نتیجه اول\n2. نتیجه دوم",
			want: []string{"نتیجه اول", "نتیجه دوم"},
		},
		{
			name: "persian digits and bullets",
			text: "۱. تصرف غاصبانه است\n- خوانده ضامن است\n• رد عین لازم است",
			want: []string{"تصرف غاصبانه است", "خوانده ضامن است", "رد عین لازم است"},
		},
		{
			name: "prose lines ignored",
			text: "با توجه به موارد فوق:\n1. نتیجه\nپایان تحلیل",
			want: []string{"نتیجه"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDeductions(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("parseDeductions() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("deduction[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
