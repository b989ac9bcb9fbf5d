package util

import "strings"

// Rune substitutions applied before any text is sent to the provider or
// matched against corpus keywords. Arabic-presentation characters are
// folded onto their Persian counterparts and Arabic-Indic digits onto
// Persian digits.
var persianReplacer = strings.NewReplacer(
	"ي", "ی", // Arabic yeh
	"ك", "ک", // Arabic kaf
	"ة", "ه", // teh marbuta
	"أ", "ا",
	"إ", "ا",
	"ؤ", "و",
	"٠", "۰", "١", "۱", "٢", "۲", "٣", "۳", "٤", "۴",
	"٥", "۵", "٦", "۶", "٧", "۷", "٨", "۸", "٩", "۹",
	"ـ", "", // tatweel
	"ً", "", "ٌ", "", "ٍ", "", // tanwin
	"َ", "", "ُ", "", "ِ", "", "ّ", "", "ْ", "", // harakat
)

// NormalizePersian normalizes a Persian narrative: character folding,
// whitespace collapsing. Zero-width non-joiners inside words are kept,
// since removing them changes word boundaries for keyword matching.
func NormalizePersian(text string) string {
	text = persianReplacer.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
