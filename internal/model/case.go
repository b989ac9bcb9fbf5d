package model

// CaseEntities holds the structured facts extracted from a case narrative.
// Produced once per case by the entity extractor and read-only afterwards.
type CaseEntities struct {
	Plaintiff    string   `json:"plaintiff,omitempty"`     // خواهان
	Defendant    string   `json:"defendant,omitempty"`     // خوانده
	CaseType     string   `json:"case_type,omitempty"`     // e.g. غصب، خلع ید
	PropertyType string   `json:"property_type,omitempty"` // نوع ملک یا مال
	IncidentDate string   `json:"incident_date,omitempty"` // تاریخ وقوع
	Claims       []string `json:"claims,omitempty"`        // ادعاهای خواهان
	Evidence     []string `json:"evidence,omitempty"`      // شواهد و مدارک
	KeyFacts     []string `json:"key_facts,omitempty"`     // واقعیات کلیدی
}

// SampleCase is one entry of the sample-case seed file. Only the
// description enters the analysis chain; the rest labels the output.
type SampleCase struct {
	CaseID      string `yaml:"case_id" json:"case_id"`
	Date        string `yaml:"date" json:"date"`
	Plaintiff   string `yaml:"plaintiff" json:"plaintiff"`
	Defendant   string `yaml:"defendant" json:"defendant"`
	Description string `yaml:"description" json:"description"`
}
