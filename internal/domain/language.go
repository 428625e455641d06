package domain

import (
	"strings"

	"github.com/samber/lo"
)

// Language pairs a display name with a matchable code.
type Language struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// SupportedLanguages is the selectable language list, in display order.
var SupportedLanguages = []Language{
	{Name: "English", Code: "en"},
	{Name: "Spanish", Code: "es"},
	{Name: "French", Code: "fr"},
	{Name: "German", Code: "de"},
	{Name: "Chinese", Code: "zh"},
	{Name: "Japanese", Code: "ja"},
	{Name: "Korean", Code: "ko"},
	{Name: "Russian", Code: "ru"},
	{Name: "Arabic", Code: "ar"},
	{Name: "Hindi", Code: "hi"},
	{Name: "Vietnamese", Code: "vi"},
	{Name: "Italian", Code: "it"},
	{Name: "Thai", Code: "th"},
	{Name: "Portuguese", Code: "pt"},
	{Name: "Dutch", Code: "nl"},
}

// NormalizeLanguageCode lowercases code, maps '_' to '-' and drops
// everything from the first '-'.
func NormalizeLanguageCode(code string) string {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(code)), "_", "-")
	if idx := strings.IndexByte(normalized, '-'); idx >= 0 {
		return normalized[:idx]
	}
	return normalized
}

// Matches reports whether an already normalized detected code refers to l.
func (l Language) Matches(detected string) bool {
	return NormalizeLanguageCode(l.Code) == detected || strings.ToLower(l.Code) == detected
}

// LookupLanguage finds a supported language by code. Unknown codes yield a
// Language named after the code itself.
func LookupLanguage(code string) (Language, bool) {
	normalized := NormalizeLanguageCode(code)
	if lang, ok := lo.Find(SupportedLanguages, func(l Language) bool {
		return strings.EqualFold(l.Code, code) || l.Code == normalized
	}); ok {
		return lang, true
	}
	return Language{Name: code, Code: code}, false
}

// ResolveInterpreterTarget picks the language to translate into for a
// detected source code. First match wins: a→b, b→a, selected→a, else b.
func ResolveInterpreterTarget(detected string, a, b, selected Language) Language {
	switch {
	case a.Matches(detected):
		return b
	case b.Matches(detected):
		return a
	case selected.Matches(detected):
		return a
	default:
		return b
	}
}
