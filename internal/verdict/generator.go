package verdict

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmirzaei/mizan/internal/llm"
	"github.com/mmirzaei/mizan/internal/model"
)

// ErrSynthesisFailed means the provider returned no verdict text. The
// reasoning result and graph remain valid without a verdict.
var ErrSynthesisFailed = errors.New("verdict: synthesis failed")

// Formal rulings favor determinism over creativity, with a larger
// output budget than other calls.
const (
	verdictTemperature = 0.2
	verdictMaxTokens   = 3000
	analysisPreview    = 200 // runes of each article analysis in the prompt
)

// defaultAppealNotice is the statutory appeal window used when the
// generated text names none.
const defaultAppealNotice = "این رأی ظرف ۲۰ روز قابل اعتراض است"

// completionClient is the provider slice the generator needs.
type completionClient interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// Generator synthesizes a structured verdict from a reasoning result.
type Generator struct {
	client completionClient
}

// NewGenerator creates a verdict generator over the given client.
func NewGenerator(client completionClient) *Generator {
	return &Generator{client: client}
}

// Generate produces the sectioned verdict document. A provider failure
// here is terminal for the verdict only.
func (g *Generator) Generate(ctx context.Context, result *model.ReasoningResult) (*model.Verdict, error) {
	plaintiff := result.Entities.Plaintiff
	if plaintiff == "" {
		plaintiff = "نامشخص"
	}
	defendant := result.Entities.Defendant
	if defendant == "" {
		defendant = "نامشخص"
	}

	text, err := g.client.Complete(ctx, llm.CompletionRequest{
		Prompt:      verdictPrompt(result, plaintiff, defendant),
		Temperature: verdictTemperature,
		MaxTokens:   verdictMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	if text == "" {
		return nil, ErrSynthesisFailed
	}

	return parseVerdict(text, result.CaseID, result.OverallConfidence), nil
}

// verdictPrompt lays out the full reasoning trace for the final ruling.
func verdictPrompt(result *model.ReasoningResult, plaintiff, defendant string) string {
	var chain strings.Builder

	chain.WriteString("واقعیات:\n")
	for _, step := range result.StepsOfType(model.StepFact) {
		fmt.Fprintf(&chain, "- %s\n", step.Content)
	}

	chain.WriteString("\nمواد قانونی:\n")
	for _, step := range result.StepsOfType(model.StepArticle) {
		fmt.Fprintf(&chain, "ماده %d: %s\n", step.RelatedArticle, truncate(step.Content, analysisPreview))
	}

	chain.WriteString("\nنتیجه‌گیری‌ها:\n")
	for _, deduction := range result.Deductions {
		fmt.Fprintf(&chain, "- %s\n", deduction)
	}

	return fmt.Sprintf(`به عنوان قاضی، بر اساس زنجیره استدلال زیر رأی نهایی صادر کنید.

خواهان: %s
خوانده: %s

%s
رأی را با بخش‌های زیر بنویسید:
## خلاصه پرونده
## واقعیات اثبات شده
## تحلیل حقوقی
## حکم
## جزئیات اجرایی
## قابل اعتراض`,
		plaintiff, defendant, chain.String())
}

// parseVerdict extracts sections; when no header is recognized at all,
// every section falls back to a placeholder except legal_analysis,
// which carries the entire raw text so the verdict is never empty.
func parseVerdict(text, caseID string, confidence float64) *model.Verdict {
	sections := map[string]string{}
	for name, headers := range sectionHeaders {
		sections[name] = extractSection(text, headers)
	}

	empty := true
	for _, content := range sections {
		if content != "" {
			empty = false
			break
		}
	}
	if empty {
		sections = map[string]string{
			"summary":        "خلاصه در متن حکم ذکر شده است",
			"proven_facts":   "واقعیات در متن حکم ذکر شده است",
			"legal_analysis": text,
			"ruling":         "حکم در متن ذکر شده است",
			"implementation": "طبق مفاد حکم",
			"appealable":     defaultAppealNotice,
		}
	}

	appealable := sections["appealable"]
	if appealable == "" {
		appealable = defaultAppealNotice
	}

	return &model.Verdict{
		CaseID:         caseID,
		Summary:        sections["summary"],
		ProvenFacts:    sections["proven_facts"],
		LegalAnalysis:  sections["legal_analysis"],
		Ruling:         sections["ruling"],
		Implementation: sections["implementation"],
		Appealable:     appealable,
		Confidence:     confidence,
	}
}

// FormatVerdict renders a verdict as Persian Markdown for reports.
func FormatVerdict(v *model.Verdict) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("# رأی نهایی - %s", v.CaseID))
	parts = append(parts, fmt.Sprintf("**سطح اطمینان:** %.0f%%", v.Confidence*100))
	parts = append(parts, "---")
	parts = append(parts, "## ۱. خلاصه پرونده", v.Summary, "")
	parts = append(parts, "## ۲. واقعیات اثبات شده", v.ProvenFacts, "")
	parts = append(parts, "## ۳. تحلیل حقوقی", v.LegalAnalysis, "")
	parts = append(parts, "## ۴. حکم", v.Ruling, "")
	if v.Implementation != "" {
		parts = append(parts, "## ۵. جزئیات اجرایی", v.Implementation, "")
	}
	parts = append(parts, "## ۶. قابلیت اعتراض", v.Appealable)

	return strings.Join(parts, "\n")
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
