package model

// Provision represents one numbered article of the statutory corpus.
// Provisions are loaded once at corpus construction and never mutated.
type Provision struct {
	Number          int      `json:"article_number"`                 // Unique article number (e.g., 308)
	Title           string   `json:"title"`                          // Short Persian title
	Text            string   `json:"text"`                           // Full article text
	Keywords        []string `json:"keywords,omitempty"`             // Persian keywords for hybrid retrieval
	Interpretation  string   `json:"interpretation_notes,omitempty"` // Doctrinal notes
	RelatedArticles []int    `json:"related_articles,omitempty"`     // Adjacency for related-article traversal
}

// ScoredProvision is a provision paired with retrieval scores.
type ScoredProvision struct {
	Provision  Provision `json:"provision"`
	Score      float64   `json:"relevance_score"` // Fused score used for ranking
	Similarity float64   `json:"similarity"`      // Backend similarity before keyword fusion
}

// LegalConcept is one entry of the corpus side-table of named concepts.
type LegalConcept struct {
	Name       string   `json:"name"`
	Definition string   `json:"definition"`
	Articles   []int    `json:"articles,omitempty"` // Articles where the concept appears
	Remedies   []string `json:"remedies,omitempty"` // Typical remedies attached to the concept
}
