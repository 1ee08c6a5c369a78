package constants

import "strings"

// Language selects the pattern table used by the extraction engine.
type Language string

const (
	LanguageFrench  Language = "fr"
	LanguageEnglish Language = "en"
	LanguageAuto    Language = "auto"
)

var allLanguages = []Language{
	LanguageFrench,
	LanguageEnglish,
	LanguageAuto,
}

// CanonicalizeLanguage maps free-form language labels onto the closed enum.
// Unknown labels resolve to auto-detection.
func CanonicalizeLanguage(input string) (Language, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Language{
		"fr":       LanguageFrench,
		"fra":      LanguageFrench,
		"french":   LanguageFrench,
		"francais": LanguageFrench,
		"français": LanguageFrench,
		"en":       LanguageEnglish,
		"eng":      LanguageEnglish,
		"english":  LanguageEnglish,
	}
	if lang, ok := synonyms[normalized]; ok {
		return lang, true
	}
	if normalized == string(LanguageAuto) || normalized == "" {
		return LanguageAuto, true
	}
	return LanguageAuto, false
}
