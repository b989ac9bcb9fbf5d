package reason

import (
	"fmt"
	"strings"

	"github.com/mmirzaei/mizan/internal/model"
)

// applicabilityPrompt asks for a natural-language analysis of how one
// provision applies to the numbered case facts.
func applicabilityPrompt(p model.Provision, facts []string) string {
	var numbered strings.Builder
	for i, fact := range facts {
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, fact)
	}

	return fmt.Sprintf(`ماده قانونی زیر را در نظر بگیرید:

ماده %d - %s
%s

واقعیات پرونده:
%s
تحلیل کنید که این ماده چگونه و تا چه حد بر واقعیات فوق قابل اعمال است.
میزان قطعیت خود را با واژه‌هایی مانند «قطعاً»، «احتمالاً» یا «ممکن است» بیان کنید.`,
		p.Number, p.Title, p.Text, numbered.String())
}

// deductionPrompt asks for enumerated legal conclusions synthesized
// from the applicable article analyses and the facts.
func deductionPrompt(analyses []articleAnalysis, facts []string) string {
	var applicable strings.Builder
	for _, a := range analyses {
		if !a.applicable {
			continue
		}
		fmt.Fprintf(&applicable, "ماده %d:\n%s\n\n", a.articleNumber, a.text)
	}

	var factList strings.Builder
	for _, fact := range facts {
		fmt.Fprintf(&factList, "- %s\n", fact)
	}

	return fmt.Sprintf(`بر اساس تحلیل مواد قانونی زیر:

%s
و واقعیات پرونده:
%s
نتیجه‌گیری‌های حقوقی میانی را به صورت فهرست شماره‌دار بنویسید.
هر نتیجه باید یک جمله‌ی مستقل و مستند به مواد فوق باشد.`,
		applicable.String(), factList.String())
}
