package model

// StepType classifies a reasoning step.
type StepType string

const (
	StepFact      StepType = "FACT"      // Observed fact, taken as given
	StepArticle   StepType = "ARTICLE"   // Applicability analysis of one provision
	StepDeduction StepType = "DEDUCTION" // Intermediate legal conclusion
	StepVerdict   StepType = "VERDICT"   // Final decision
)

// ReasoningStep is one unit of the ordered reasoning trace.
type ReasoningStep struct {
	Type           StepType       `json:"step_type"`
	Content        string         `json:"content"`                   // Persian text for this step
	Confidence     float64        `json:"confidence"`                // 0..1
	RelatedArticle int            `json:"related_article,omitempty"` // Article number for ARTICLE steps
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ReasoningResult is the complete outcome of one case analysis.
// Constructed once per run; immutable once returned.
type ReasoningResult struct {
	CaseID            string            `json:"case_id"`
	Entities          CaseEntities      `json:"entities"`
	RetrievedArticles []ScoredProvision `json:"retrieved_articles"`
	Steps             []ReasoningStep   `json:"reasoning_steps"`
	Deductions        []string          `json:"deductions"`
	OverallConfidence float64           `json:"overall_confidence"`
}

// StepsOfType returns the steps of the given type in trace order.
func (r *ReasoningResult) StepsOfType(t StepType) []ReasoningStep {
	var out []ReasoningStep
	for _, s := range r.Steps {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}
