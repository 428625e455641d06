package usecase

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/samber/lo"

	"lingomic/internal/corrections"
	"lingomic/internal/domain"
	"lingomic/internal/settings"
)

// Cancel aborts the running operation and leaves committed text untouched.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	op := o.current
	o.current = nil
	o.processingMessage = domain.ProcessingDefault
	o.interpreting = false
	o.interpretOp = nil
	o.mu.Unlock()

	if op != nil {
		op.cancel()
		o.log.Debug().Str("op", op.id()).Msg("operation cancelled")
		o.events.OperationStateChanged(op.id(), op.kind(), domain.OperationStateCancelled)
	}
	o.publish()
}

// Clear empties both text fields.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	o.session = domain.SpeechSession{}
	o.lastSpoken = ""
	o.mu.Unlock()
	o.publish()
}

// Swap exchanges the original and processed text.
func (o *Orchestrator) Swap() {
	o.mu.Lock()
	o.session.OriginalText, o.session.ProcessedText = o.session.ProcessedText, o.session.OriginalText
	o.lastSpoken = ""
	o.mu.Unlock()
	o.publish()
}

func (o *Orchestrator) SwapInterpreterLanguages() {
	o.mu.Lock()
	o.settings.InterpreterA, o.settings.InterpreterB = o.settings.InterpreterB, o.settings.InterpreterA
	o.mu.Unlock()
	o.saveSettings()
	o.publish()
}

// CopyProcessedText puts the processed text on the clipboard.
func (o *Orchestrator) CopyProcessedText(ctx context.Context) error {
	o.mu.Lock()
	text := o.session.ProcessedText
	o.mu.Unlock()

	if text == "" {
		return o.reject(domain.NothingToProcess("No text to copy"))
	}
	if o.deps.Clipboard == nil {
		return o.reject(fmt.Errorf("clipboard: %w", errMissingCollaborator))
	}
	if err := o.deps.Clipboard.SetText(ctx, text); err != nil {
		return o.reject(err)
	}
	return nil
}

// AddCorrection stores a replacement applied to future transcripts.
func (o *Orchestrator) AddCorrection(incorrect string, correct string) error {
	if incorrect == "" {
		return nil
	}
	if err := o.deps.Corrections.Add(incorrect, correct); err != nil {
		return o.reject(err)
	}

	o.mu.Lock()
	o.corrections[incorrect] = correct
	o.table = corrections.Compile(o.corrections)
	o.mu.Unlock()
	o.publish()
	return nil
}

func (o *Orchestrator) RemoveCorrection(incorrect string) error {
	if err := o.deps.Corrections.Remove(incorrect); err != nil {
		return o.reject(err)
	}

	o.mu.Lock()
	next := maps.Clone(o.corrections)
	delete(next, incorrect)
	o.corrections = next
	o.table = corrections.Compile(next)
	o.mu.Unlock()
	o.publish()
	return nil
}

// SetSelectedLanguage also makes code the default speech language.
func (o *Orchestrator) SetSelectedLanguage(code string) error {
	lang, ok := domain.LookupLanguage(code)
	if !ok {
		return fmt.Errorf("unsupported language %q", code)
	}

	o.mu.Lock()
	o.settings.SelectedLanguage = lang.Code
	o.lastSpoken = lang.Code
	o.mu.Unlock()
	o.saveSettings()
	o.publish()
	return nil
}

func (o *Orchestrator) SetInterpreterLanguages(a string, b string) error {
	langA, okA := domain.LookupLanguage(a)
	langB, okB := domain.LookupLanguage(b)
	if !okA || !okB {
		return fmt.Errorf("unsupported interpreter pair %q/%q", a, b)
	}

	o.mu.Lock()
	o.settings.InterpreterA = langA.Code
	o.settings.InterpreterB = langB.Code
	o.mu.Unlock()
	o.saveSettings()
	o.publish()
	return nil
}

// SetTemperature clamps value to [0,1]. Persisting is debounced.
func (o *Orchestrator) SetTemperature(value float64) {
	o.mu.Lock()
	o.settings.Temperature = settings.ClampTemperature(value)
	o.mu.Unlock()
	o.debounce(o.saveSettings)
	o.publish()
}

func (o *Orchestrator) SetTTSEngine(engine domain.TTSEngine) error {
	if !engine.Valid() {
		return fmt.Errorf("unknown tts engine %q", engine)
	}

	o.mu.Lock()
	o.settings.TTSEngine = engine
	o.mu.Unlock()
	o.saveSettings()
	o.publish()
	return nil
}

func (o *Orchestrator) SetVoice(voice string) error {
	voice = strings.ToLower(strings.TrimSpace(voice))
	if !lo.Contains(domain.Voices, voice) {
		return fmt.Errorf("unknown voice %q", voice)
	}

	o.mu.Lock()
	o.settings.Voice = voice
	o.mu.Unlock()
	o.saveSettings()
	o.publish()
	return nil
}
