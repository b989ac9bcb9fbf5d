package model

// Verdict is the structured verdict document synthesized from a
// completed reasoning trace. Immutable once derived.
type Verdict struct {
	CaseID         string  `json:"case_id"`
	Summary        string  `json:"summary"`         // خلاصه پرونده
	ProvenFacts    string  `json:"proven_facts"`    // واقعیات اثبات شده
	LegalAnalysis  string  `json:"legal_analysis"`  // تحلیل حقوقی
	Ruling         string  `json:"ruling"`          // حکم نهایی
	Implementation string  `json:"implementation"`  // جزئیات اجرایی
	Appealable     string  `json:"appealable"`      // قابلیت اعتراض
	Confidence     float64 `json:"confidence"`
}
