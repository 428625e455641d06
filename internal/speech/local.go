package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"lingomic/internal/audio"
	"lingomic/internal/domain"
)

// Voice maps a BCP-47 tag onto an engine voice name.
type Voice struct {
	Tag  string
	Name string
}

// DefaultCatalog covers the supported languages for espeak-ng.
var DefaultCatalog = []Voice{
	{Tag: "en-US", Name: "en-us"},
	{Tag: "en-GB", Name: "en-gb"},
	{Tag: "es-ES", Name: "es"},
	{Tag: "fr-FR", Name: "fr-fr"},
	{Tag: "de-DE", Name: "de"},
	{Tag: "it-IT", Name: "it"},
	{Tag: "pt-BR", Name: "pt-br"},
	{Tag: "pt-PT", Name: "pt"},
	{Tag: "zh-CN", Name: "cmn"},
	{Tag: "ja-JP", Name: "ja"},
	{Tag: "ko-KR", Name: "ko"},
	{Tag: "ru-RU", Name: "ru"},
	{Tag: "ar", Name: "ar"},
	{Tag: "hi-IN", Name: "hi"},
	{Tag: "nl-NL", Name: "nl"},
	{Tag: "tr-TR", Name: "tr"},
}

// LocalSpeaker speaks through an on-device engine. Speech is fire and
// forget; a new utterance interrupts the previous one.
type LocalSpeaker struct {
	command string
	catalog []Voice
	log     zerolog.Logger

	mu      sync.Mutex
	current *audio.Process
}

func NewLocalSpeaker(command string, catalog []Voice, logger zerolog.Logger) *LocalSpeaker {
	if command == "" {
		command = "espeak-ng"
	}
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	return &LocalSpeaker{
		command: command,
		catalog: catalog,
		log:     logger.With().Str("component", "local_speech").Logger(),
	}
}

// VoiceFor picks the voice whose tag matches code exactly, else the first
// voice sharing its primary subtag. ok is false when neither exists.
func (s *LocalSpeaker) VoiceFor(code string) (Voice, bool) {
	want := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if v, ok := lo.Find(s.catalog, func(v Voice) bool { return strings.EqualFold(v.Tag, want) }); ok {
		return v, true
	}
	primary := domain.NormalizeLanguageCode(want)
	return lo.Find(s.catalog, func(v Voice) bool { return domain.NormalizeLanguageCode(v.Tag) == primary })
}

// Speak starts speaking text and returns without waiting for it to finish.
func (s *LocalSpeaker) Speak(ctx context.Context, text string, languageCode string) error {
	s.Stop()

	args := []string{}
	if v, ok := s.VoiceFor(languageCode); ok {
		args = append(args, "-v", v.Name)
	} else {
		s.log.Debug().Str("language", languageCode).Msg("no voice for language, using engine default")
	}
	args = append(args, "--", text)

	proc, err := audio.StartProcess(context.WithoutCancel(ctx), s.command, args...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = proc
	s.mu.Unlock()

	go func() {
		<-proc.Done()
		s.mu.Lock()
		if s.current == proc {
			s.current = nil
		}
		s.mu.Unlock()
		if err := proc.Err(); err != nil {
			s.log.Warn().Err(err).Msg("local speech failed")
		}
	}()
	return nil
}

// Stop interrupts the current utterance.
func (s *LocalSpeaker) Stop() {
	s.mu.Lock()
	proc := s.current
	s.current = nil
	s.mu.Unlock()

	if proc != nil {
		proc.Stop()
	}
}
