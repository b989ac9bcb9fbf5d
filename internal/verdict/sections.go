package verdict

import "strings"

// Header synonyms recognized in the generated verdict text, per
// section. Free-text parsing; the generator requests these headings but
// the model does not always emit them verbatim.
var sectionHeaders = map[string][]string{
	"summary":        {"خلاصه پرونده", "خلاصه"},
	"proven_facts":   {"واقعیات اثبات شده", "واقعیات"},
	"legal_analysis": {"تحلیل حقوقی", "استدلال حقوقی"},
	"ruling":         {"حکم", "رأی"},
	"implementation": {"جزئیات اجرایی", "اجرا"},
	"appealable":     {"قابل اعتراض", "اعتراض"},
}

// headerLikePrefixes stop the capture of a section: a markdown heading,
// a bold marker or a Persian enumerator opens the next section.
var headerLikePrefixes = []string{"##", "**", "۱.", "۲.", "۳.", "۴.", "۵."}

// extractSection collects the non-empty lines following the first line
// that contains one of the headers, stopping at the next header-like
// line that is not itself one of the known headers.
func extractSection(text string, headers []string) string {
	var lines []string
	capturing := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if containsAny(line, headers) {
			capturing = true
			continue
		}
		if !capturing || line == "" {
			continue
		}

		if hasHeaderLikePrefix(line) && !containsAny(line, headers) {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func containsAny(line string, headers []string) bool {
	for _, h := range headers {
		if strings.Contains(line, h) {
			return true
		}
	}
	return false
}

func hasHeaderLikePrefix(line string) bool {
	for _, prefix := range headerLikePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
