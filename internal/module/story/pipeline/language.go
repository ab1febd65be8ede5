package pipeline

import "strings"

// languageCodes maps language display names to the short codes expected by
// the speech service.
var languageCodes = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"dutch":      "nl",
	"russian":    "ru",
	"japanese":   "ja",
	"chinese":    "zh",
	"mandarin":   "zh",
	"korean":     "ko",
	"arabic":     "ar",
	"hindi":      "hi",
	"bengali":    "bn",
	"turkish":    "tr",
	"vietnamese": "vi",
	"thai":       "th",
	"indonesian": "id",
	"malay":      "ms",
	"polish":     "pl",
	"czech":      "cs",
	"slovak":     "sk",
	"ukrainian":  "uk",
	"romanian":   "ro",
	"hungarian":  "hu",
	"greek":      "el",
	"swedish":    "sv",
	"norwegian":  "no",
	"danish":     "da",
	"finnish":    "fi",
	"hebrew":     "he",
	"tamil":      "ta",
	"telugu":     "te",
	"urdu":       "ur",
	"persian":    "fa",
	"filipino":   "tl",
	"swahili":    "sw",
}

// LanguageCode resolves a language display name to a speech-service code.
// Unresolved names pass through unchanged, treated as already being a code.
func LanguageCode(displayName string) string {
	if code, ok := languageCodes[strings.ToLower(strings.TrimSpace(displayName))]; ok {
		return code
	}
	return displayName
}

// isEnglish reports whether the target language resolves to English.
func isEnglish(language string) bool {
	return LanguageCode(language) == "en"
}
