package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmirzaei/mizan/internal/model"
	"github.com/mmirzaei/mizan/internal/util"
)

// ErrExtractionFailed means entity extraction produced nothing usable.
// It aborts the whole case analysis upstream of retrieval.
var ErrExtractionFailed = errors.New("extract: entity extraction failed")

// structuredClient is the provider slice the extractor needs.
type structuredClient interface {
	CompleteStructured(ctx context.Context, prompt, systemPrompt string, temperature float32) (map[string]any, error)
}

const entityPrompt = `شما یک دستیار حقوقی هستید. از متن پرونده زیر اطلاعات ساخت‌یافته استخراج کنید.

متن پرونده:
%s

خروجی را دقیقاً با این کلیدهای JSON بدهید:
{
  "plaintiff": "نام خواهان یا null",
  "defendant": "نام خوانده یا null",
  "case_type": "نوع پرونده (غصب، خلع ید، ...) یا null",
  "property_type": "نوع ملک یا مال یا null",
  "incident_date": "تاریخ وقوع یا null",
  "claims": ["ادعاهای خواهان"],
  "evidence": ["شواهد و مدارک"],
  "key_facts": ["واقعیات کلیدی پرونده"]
}`

// EntityExtractor pulls structured case facts out of a raw Persian
// narrative through one structured-JSON completion.
type EntityExtractor struct {
	client structuredClient
}

// NewEntityExtractor creates an extractor over the given client.
func NewEntityExtractor(client structuredClient) *EntityExtractor {
	return &EntityExtractor{client: client}
}

// Extract normalizes the narrative and extracts the case entities.
func (e *EntityExtractor) Extract(ctx context.Context, caseDescription string) (*model.CaseEntities, error) {
	normalized := util.NormalizePersian(caseDescription)

	prompt := fmt.Sprintf(entityPrompt, normalized)
	result, err := e.client.CompleteStructured(ctx, prompt, "", 0.1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if result == nil {
		return nil, ErrExtractionFailed
	}

	// Round-trip through JSON to map the loose object onto the schema.
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	var entities model.CaseEntities
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return &entities, nil
}

// ExtractWithValidation extracts entities and reports gaps a judge
// would want filled before relying on the analysis.
func (e *EntityExtractor) ExtractWithValidation(ctx context.Context, caseDescription string) (*model.CaseEntities, []string, error) {
	entities, err := e.Extract(ctx, caseDescription)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	if entities.Plaintiff == "" {
		warnings = append(warnings, "نام خواهان مشخص نیست")
	}
	if entities.Defendant == "" {
		warnings = append(warnings, "نام خوانده مشخص نیست")
	}
	if entities.CaseType == "" {
		warnings = append(warnings, "نوع پرونده مشخص نیست")
	}
	if len(entities.Claims) == 0 {
		warnings = append(warnings, "ادعاهای خواهان مشخص نیست")
	}
	if len(entities.KeyFacts) == 0 {
		warnings = append(warnings, "واقعیات پرونده ناقص است")
	}
	return entities, warnings, nil
}
