package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mmirzaei/mizan/internal/reason"
	"github.com/mmirzaei/mizan/internal/verdict"
)

// RenderJSON writes the full case result as indented JSON. An empty
// path writes to stdout.
func RenderJSON(res *CaseResult, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}

// RenderMarkdown writes the reasoning chain, graph metrics and verdict
// as a single Markdown document. An empty path writes to stdout.
func RenderMarkdown(res *CaseResult, path string) error {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# گزارش تحلیل پرونده %s\n\n", res.Result.CaseID))
	b.WriteString(reason.FormatChain(res.Result))
	b.WriteString("\n\n")

	s := res.Graph.Stats()
	b.WriteString("## گراف استدلال\n\n")
	b.WriteString(fmt.Sprintf("- گره‌ها: %d، یال‌ها: %d\n", s.TotalNodes, s.TotalEdges))
	b.WriteString(fmt.Sprintf("- واقعیات: %d، مواد: %d، نتایج: %d\n", s.NumFacts, s.NumArticles, s.NumDeductions))
	b.WriteString(fmt.Sprintf("- میانگین اطمینان: %.2f\n\n", s.AvgConfidence))

	if res.Verdict != nil {
		b.WriteString(verdict.FormatVerdict(res.Verdict))
		b.WriteString("\n")
	}

	for _, w := range res.Warnings {
		b.WriteString(fmt.Sprintf("> هشدار: %s\n", w))
	}

	if path == "" {
		fmt.Print(b.String())
		return nil
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// RenderSummary prints a short status line per case, for batch runs.
func RenderSummary(w io.Writer, res *CaseResult) {
	status := "بدون حکم"
	if res.Verdict != nil {
		status = "حکم صادر شد"
	}
	fmt.Fprintf(w, "%s  مواد: %d  اطمینان: %.2f  %s\n",
		res.Result.CaseID, len(res.Result.RetrievedArticles), res.Result.OverallConfidence, status)
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  هشدار: %s\n", warn)
	}
}
