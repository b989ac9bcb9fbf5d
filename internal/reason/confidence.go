package reason

import "strings"

// ApplicabilityThreshold: a provision is applicable when its derived
// confidence exceeds this.
const ApplicabilityThreshold = 0.6

// Certainty marker classes, checked in priority order. The first class
// with any marker present in the analysis text wins.
var confidenceClasses = []struct {
	markers    []string
	confidence float64
}{
	{[]string{"قطعاً", "حتماً", "بدون شک", "کاملاً"}, 0.95},
	{[]string{"احتمالاً", "به نظر می‌رسد", "مرتبط است"}, 0.80},
	{[]string{"ممکن است", "شاید", "می‌تواند"}, 0.60},
	{[]string{"نامحتمل", "بعید", "کمتر مرتبط"}, 0.30},
}

// defaultConfidence applies when no marker class matches.
const defaultConfidence = 0.70

// ConfidenceFromText infers a confidence score from the certainty
// markers in a Persian analysis text. This keyword heuristic is a
// stand-in for genuine confidence estimation; it is kept as one pure
// function so it can be replaced without touching the engine.
func ConfidenceFromText(text string) float64 {
	lower := strings.ToLower(text)
	for _, class := range confidenceClasses {
		for _, marker := range class.markers {
			if strings.Contains(lower, marker) {
				return class.confidence
			}
		}
	}
	return defaultConfidence
}
