package langid

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	"lingomic/internal/domain"
)

// Identifier guesses the language of transcribed text.
type Identifier struct {
	// MinConfidence below which no code is reported.
	MinConfidence float64
	// Whitelist limits detection to these languages. Empty means all.
	Whitelist map[whatlanggo.Lang]bool
}

// New returns an identifier restricted to the selectable languages, so
// close relatives such as Macedonian never shadow Russian.
func New() Identifier {
	return Identifier{MinConfidence: 0.2, Whitelist: whitelist(domain.SupportedLanguages)}
}

// Identify returns an ISO 639-1 code, or "" when undetermined.
func (i Identifier) Identify(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	info := whatlanggo.DetectWithOptions(text, whatlanggo.Options{Whitelist: i.Whitelist})
	if info.Lang < 0 || info.Confidence < i.MinConfidence {
		return ""
	}
	return info.Lang.Iso6391()
}

func whitelist(languages []domain.Language) map[whatlanggo.Lang]bool {
	codes := make(map[string]bool, len(languages))
	for _, l := range languages {
		codes[domain.NormalizeLanguageCode(l.Code)] = true
	}
	allowed := make(map[whatlanggo.Lang]bool, len(languages))
	for lang := range whatlanggo.Langs {
		if codes[lang.Iso6391()] {
			allowed[lang] = true
		}
	}
	return allowed
}
