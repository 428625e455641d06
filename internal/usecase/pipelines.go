package usecase

import (
	"context"
	"fmt"

	"lingomic/internal/domain"
)

// StartRecording opens the microphone for a plain transcription take.
func (o *Orchestrator) StartRecording(ctx context.Context) error {
	return o.startCapture(ctx, modeTranscribe)
}

// StartInterpreter opens the microphone for an interpreter take.
func (o *Orchestrator) StartInterpreter(ctx context.Context) error {
	return o.startCapture(ctx, modeInterpret)
}

// ToggleRecording stops and transcribes when recording, otherwise starts.
// The returned operation is nil when a recording was started.
func (o *Orchestrator) ToggleRecording(ctx context.Context) (*Operation, error) {
	if o.deps.Capture.IsRecording() {
		return o.StopAndTranscribe(ctx)
	}
	return nil, o.StartRecording(ctx)
}

// ToggleInterpreter stops and interprets when recording, otherwise starts.
func (o *Orchestrator) ToggleInterpreter(ctx context.Context) (*Operation, error) {
	if o.deps.Capture.IsRecording() {
		return o.StopAndInterpret(ctx)
	}
	return nil, o.StartInterpreter(ctx)
}

func (o *Orchestrator) startCapture(ctx context.Context, mode recordingMode) error {
	if o.deps.Capture.IsRecording() {
		return nil
	}
	if err := o.ensurePermission(ctx); err != nil {
		return o.reject(err)
	}

	o.mu.Lock()
	o.errorMessage = ""
	o.interpreting = mode == modeInterpret
	o.mode = mode
	o.mu.Unlock()

	if err := o.deps.Capture.Start(ctx); err != nil {
		o.mu.Lock()
		o.interpreting = false
		o.mode = modeNone
		o.mu.Unlock()
		return o.reject(err)
	}
	o.publish()
	return nil
}

// takeRecording stops capture and returns the finished artifact.
func (o *Orchestrator) takeRecording() (*domain.Recording, error) {
	rec, err := o.deps.Capture.Stop()

	o.mu.Lock()
	o.mode = modeNone
	o.mu.Unlock()

	if err != nil || rec == nil {
		if domain.KindOf(err) == domain.KindFileIO {
			return nil, err
		}
		return nil, domain.FileIOError("Failed to get recording file", err)
	}
	return rec, nil
}

// StopAndTranscribe finishes the take and transcribes it into OriginalText.
func (o *Orchestrator) StopAndTranscribe(ctx context.Context) (*Operation, error) {
	rec, err := o.takeRecording()
	if err != nil {
		return nil, o.reject(err)
	}

	op := o.begin(ctx, domain.OperationTranscribe, domain.ProcessingTranscribing)
	o.run(op, func(op *activeOperation) error {
		defer o.removeFile(rec.Path)

		text, err := o.deps.Transcriber.Transcribe(op.ctx, *rec, o.cfg.TranscriptionLanguage)
		if err != nil {
			return err
		}
		if !o.commit(op, func() { o.session.OriginalText = o.table.Apply(text) }) {
			return domain.ErrCancelled
		}
		return nil
	})
	return op.handle, nil
}

// StopAndInterpret transcribes with language detection, translates into the
// other interpreter language and speaks the result.
func (o *Orchestrator) StopAndInterpret(ctx context.Context) (*Operation, error) {
	rec, err := o.takeRecording()
	if err != nil {
		o.mu.Lock()
		o.interpreting = false
		o.mu.Unlock()
		return nil, o.reject(err)
	}

	op := o.begin(ctx, domain.OperationInterpret, domain.ProcessingTranscribing)
	o.mu.Lock()
	o.interpreting = true
	o.interpretOp = op
	o.mu.Unlock()

	o.run(op, func(op *activeOperation) error {
		defer o.removeFile(rec.Path)
		defer o.endInterpreting(op)

		out, err := o.deps.Transcriber.TranscribeWithDetection(op.ctx, *rec)
		if err != nil {
			return err
		}
		detected := domain.NormalizeLanguageCode(out.Language)

		var (
			target      domain.Language
			text        string
			temperature float64
		)
		if !o.commit(op, func() {
			a, _ := domain.LookupLanguage(o.settings.InterpreterA)
			b, _ := domain.LookupLanguage(o.settings.InterpreterB)
			selected, _ := domain.LookupLanguage(o.settings.SelectedLanguage)
			target = domain.ResolveInterpreterTarget(detected, a, b, selected)
			text = o.table.Apply(out.Text)
			temperature = o.settings.Temperature
			o.session.OriginalText = text
			o.processingMessage = domain.ProcessingTranslating
		}) {
			return domain.ErrCancelled
		}
		o.log.Debug().Str("detected", detected).Str("target", target.Code).Msg("interpreter routed")

		translated, err := o.deps.Text.Translate(op.ctx, text, target, temperature)
		if err != nil {
			return err
		}
		if !o.commit(op, func() {
			o.session.ProcessedText = translated
			o.lastSpoken = target.Code
		}) {
			return domain.ErrCancelled
		}
		return o.speak(op, translated, target.Code)
	})
	return op.handle, nil
}

func (o *Orchestrator) endInterpreting(op *activeOperation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.interpretOp != op {
		return
	}
	o.interpretOp = nil
	if o.mode != modeInterpret {
		o.interpreting = false
	}
}

// Translate renders OriginalText into the selected language.
func (o *Orchestrator) Translate(ctx context.Context) (*Operation, error) {
	o.mu.Lock()
	text := o.session.OriginalText
	target, _ := domain.LookupLanguage(o.settings.SelectedLanguage)
	temperature := o.settings.Temperature
	o.mu.Unlock()

	if text == "" {
		return nil, o.reject(domain.NothingToProcess("No text to translate"))
	}

	op := o.begin(ctx, domain.OperationTranslate, domain.ProcessingTranslating)
	o.run(op, func(op *activeOperation) error {
		translated, err := o.deps.Text.Translate(op.ctx, text, target, temperature)
		if err != nil {
			return err
		}
		if !o.commit(op, func() {
			o.session.ProcessedText = translated
			o.lastSpoken = target.Code
		}) {
			return domain.ErrCancelled
		}
		return nil
	})
	return op.handle, nil
}

// Improve runs a grammar and clarity pass over OriginalText.
func (o *Orchestrator) Improve(ctx context.Context) (*Operation, error) {
	o.mu.Lock()
	text := o.session.OriginalText
	code := o.settings.SelectedLanguage
	temperature := o.settings.Temperature
	o.mu.Unlock()

	if text == "" {
		return nil, o.reject(domain.NothingToProcess("No text to improve"))
	}

	op := o.begin(ctx, domain.OperationImprove, domain.ProcessingImproving)
	o.run(op, func(op *activeOperation) error {
		improved, err := o.deps.Text.Improve(op.ctx, text, code, temperature)
		if err != nil {
			return err
		}
		if !o.commit(op, func() {
			o.session.ProcessedText = improved
			o.lastSpoken = code
		}) {
			return domain.ErrCancelled
		}
		return nil
	})
	return op.handle, nil
}

// Speak reads ProcessedText aloud. The language is override, else the last
// spoken language, else the selected one.
func (o *Orchestrator) Speak(ctx context.Context, override string) (*Operation, error) {
	o.mu.Lock()
	text := o.session.ProcessedText
	if text == "" {
		o.mu.Unlock()
		return nil, o.reject(domain.NothingToProcess("No text to speak"))
	}
	code := override
	if code == "" {
		code = o.lastSpoken
	}
	if code == "" {
		code = o.settings.SelectedLanguage
	}
	o.lastSpoken = code
	label := domain.ProcessingDefault
	if o.settings.TTSEngine == domain.TTSEngineRemote {
		label = domain.ProcessingSpeech
	}
	o.mu.Unlock()

	op := o.begin(ctx, domain.OperationSpeak, label)
	o.run(op, func(op *activeOperation) error {
		return o.speak(op, text, code)
	})
	return op.handle, nil
}

// speak stops current playback, drops the previous speech file and voices
// text with the configured engine.
func (o *Orchestrator) speak(op *activeOperation, text string, code string) error {
	o.mu.Lock()
	engine := o.settings.TTSEngine
	voice := o.settings.Voice
	previous := o.speechPath
	o.speechPath = ""
	o.mu.Unlock()

	o.stopPlayback()
	o.removeFile(previous)

	if engine != domain.TTSEngineRemote {
		if o.deps.LocalSpeaker == nil {
			return fmt.Errorf("local speech: %w", errMissingCollaborator)
		}
		return o.deps.LocalSpeaker.Speak(op.ctx, text, code)
	}

	if o.deps.Synthesizer == nil || o.deps.Player == nil {
		return fmt.Errorf("remote speech: %w", errMissingCollaborator)
	}
	if !o.commit(op, func() { o.processingMessage = domain.ProcessingSpeech }) {
		return domain.ErrCancelled
	}

	path, err := o.deps.Synthesizer.Synthesize(op.ctx, text, voice)
	if err != nil {
		return err
	}
	if !o.commit(op, func() { o.speechPath = path }) {
		o.removeFile(path)
		return domain.ErrCancelled
	}

	if err := o.deps.Player.Play(op.ctx, path, func() { o.playbackFinished(path) }); err != nil {
		o.playbackFinished(path)
		return &domain.Error{Kind: domain.KindUnknown, Detail: "Failed to play audio", Err: err}
	}
	return nil
}

// playbackFinished deletes a speech file once the player is done with it.
func (o *Orchestrator) playbackFinished(path string) {
	o.mu.Lock()
	if o.speechPath == path {
		o.speechPath = ""
	}
	o.mu.Unlock()
	o.removeFile(path)
}
