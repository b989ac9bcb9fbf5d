package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mmirzaei/mizan/internal/cache"
)

// fakeProvider counts calls and plays back a scripted error sequence
// before succeeding.
type fakeProvider struct {
	name     string
	model    string
	response string
	errs     []error // consumed one per call; nil entries succeed
	calls    int
	lastReq  CompletionRequest
}

func (f *fakeProvider) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeProvider) Model() string {
	if f.model == "" {
		return "fake-model"
	}
	return f.model
}

func (f *fakeProvider) EmbeddingDim() int { return 4 }

func (f *fakeProvider) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.lastReq = req
	f.calls++
	if err := f.nextErr(); err != nil {
		return "", err
	}
	return f.response, nil
}

func (f *fakeProvider) CompleteStructured(context.Context, string, string, float32) (map[string]any, error) {
	f.calls++
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (f *fakeProvider) Embed(context.Context, string) ([]float32, error) {
	f.calls++
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return []float32{1, 0, 0, 0}, nil
}

func (f *fakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

func (f *fakeProvider) CountTokens(_ context.Context, text string) (int, error) {
	return len(text), nil
}

func (f *fakeProvider) nextErr() error {
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func TestCompleteFillsDefaults(t *testing.T) {
	p := &fakeProvider{response: "پاسخ"}
	c := NewClient(p, WithDefaults(0.3, 2000))

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "سؤال", Temperature: -1})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if p.lastReq.SystemPrompt != DefaultSystemPrompt {
		t.Error("empty system prompt should select the default persona")
	}
	if p.lastReq.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want default 0.3", p.lastReq.Temperature)
	}
	if p.lastReq.MaxTokens != 2000 {
		t.Errorf("MaxTokens = %d, want default 2000", p.lastReq.MaxTokens)
	}
}

func TestCompleteCaching(t *testing.T) {
	p := &fakeProvider{response: "پاسخ ثابت"}
	c := NewClient(p, WithCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute))

	req := CompletionRequest{Prompt: "سؤال تکراری"}
	for i := 0; i < 3; i++ {
		text, err := c.Complete(context.Background(), req)
		if err != nil {
			t.Fatalf("Complete() call %d error = %v", i, err)
		}
		if text != "پاسخ ثابت" {
			t.Errorf("Complete() call %d = %q", i, text)
		}
	}

	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cache hit after first)", p.calls)
	}
}

func TestCompleteCacheKeyedByModel(t *testing.T) {
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	req := CompletionRequest{Prompt: "سؤال"}

	a := &fakeProvider{model: "model-a", response: "از مدل الف"}
	ca := NewClient(a, WithCache(store, time.Minute))
	if _, err := ca.Complete(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	b := &fakeProvider{model: "model-b", response: "از مدل ب"}
	cb := NewClient(b, WithCache(store, time.Minute))
	text, err := cb.Complete(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if text != "از مدل ب" || b.calls != 1 {
		t.Errorf("model switch must miss the old cache entry: text=%q calls=%d", text, b.calls)
	}
}

func TestRetryRateLimited(t *testing.T) {
	p := &fakeProvider{
		response: "پس از تلاش مجدد",
		errs:     []error{fmt.Errorf("%w: 429", ErrRateLimited), fmt.Errorf("%w: 429", ErrRateLimited), nil},
	}
	c := NewClient(p, withBackoffUnit(time.Millisecond))

	text, err := c.Complete(context.Background(), CompletionRequest{Prompt: "سؤال"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "پس از تلاش مجدد" {
		t.Errorf("Complete() = %q", text)
	}
	if p.calls != 3 {
		t.Errorf("provider called %d times, want 3", p.calls)
	}
}

func TestRetryQuotaTerminal(t *testing.T) {
	p := &fakeProvider{errs: []error{fmt.Errorf("%w: billing", ErrQuotaExhausted)}}
	c := NewClient(p, withBackoffUnit(time.Millisecond))

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "سؤال"})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Errorf("Complete() error = %v, want ErrQuotaExhausted", err)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (no retry on quota)", p.calls)
	}
}

func TestRetryProviderErrorCeiling(t *testing.T) {
	p := &fakeProvider{errs: []error{
		fmt.Errorf("%w: 500", ErrProvider),
		fmt.Errorf("%w: 500", ErrProvider),
		fmt.Errorf("%w: 500", ErrProvider),
	}}
	c := NewClient(p, WithMaxRetries(3), withBackoffUnit(time.Millisecond))

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "سؤال"})
	if !errors.Is(err, ErrProvider) {
		t.Errorf("Complete() error = %v, want ErrProvider", err)
	}
	if p.calls != 3 {
		t.Errorf("provider called %d times, want the retry ceiling 3", p.calls)
	}
}

func TestRetryUnexpectedErrorAborts(t *testing.T) {
	p := &fakeProvider{errs: []error{errors.New("connection refused")}}
	c := NewClient(p, withBackoffUnit(time.Millisecond))

	if _, err := c.Complete(context.Background(), CompletionRequest{Prompt: "سؤال"}); err == nil {
		t.Fatal("Complete() should surface an unclassified error")
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (no retry)", p.calls)
	}
}

func TestRetryContextCancellation(t *testing.T) {
	p := &fakeProvider{errs: []error{
		fmt.Errorf("%w: 429", ErrRateLimited),
		fmt.Errorf("%w: 429", ErrRateLimited),
	}}
	c := NewClient(p, withBackoffUnit(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, CompletionRequest{Prompt: "سؤال"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Complete() error = %v, want context.DeadlineExceeded", err)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cancelled during backoff)", p.calls)
	}
}

func TestEmbedRetried(t *testing.T) {
	p := &fakeProvider{errs: []error{fmt.Errorf("%w: 429", ErrRateLimited), nil}}
	c := NewClient(p, withBackoffUnit(time.Millisecond))

	vec, err := c.Embed(context.Background(), "متن")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 4 {
		t.Errorf("embedding length = %d, want 4", len(vec))
	}
	if p.calls != 2 {
		t.Errorf("provider called %d times, want 2", p.calls)
	}
}

func TestCompleteStructuredNotRetried(t *testing.T) {
	p := &fakeProvider{errs: []error{fmt.Errorf("%w: 429", ErrRateLimited)}}
	c := NewClient(p, withBackoffUnit(time.Millisecond))

	if _, err := c.CompleteStructured(context.Background(), "سؤال", "", 0.1); err == nil {
		t.Fatal("CompleteStructured() should surface the first failure")
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (structured calls never retry)", p.calls)
	}
}
