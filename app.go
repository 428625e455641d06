package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"lingomic/internal/bootstrap"
	"lingomic/internal/domain"
	"lingomic/internal/usecase"
)

const (
	eventState     = "lingomic:state"
	eventOperation = "lingomic:operation"
	eventError     = "lingomic:error"
)

const errorKindStartup domain.ErrorKind = "startup"

// App is the Wails application root.
type App struct {
	ctx context.Context

	services     bootstrap.Services
	orchestrator *usecase.Orchestrator
	bootErr      error
}

// OperationRef identifies a started operation for the frontend. It is empty
// when the call only started a recording.
type OperationRef struct {
	ID   string               `json:"id,omitempty"`
	Kind domain.OperationKind `json:"kind,omitempty"`
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		a.OperationError(errorKindStartup, err.Error())
		return
	}

	a.services = services
	a.orchestrator = services.Orchestrator
	a.StateChanged(a.orchestrator.Snapshot())
}

func (a *App) shutdown(context.Context) {
	if a.orchestrator == nil {
		return
	}
	a.services.Close()
}

// StartRecording opens the microphone for transcription.
func (a *App) StartRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.orchestrator.StartRecording(a.ctx)
}

// StopRecording stops the microphone and transcribes the take.
func (a *App) StopRecording() (OperationRef, error) {
	if err := a.requireReady(); err != nil {
		return OperationRef{}, err
	}
	return ref(a.orchestrator.StopAndTranscribe(a.ctx))
}

func (a *App) ToggleRecording() (OperationRef, error) {
	if err := a.requireReady(); err != nil {
		return OperationRef{}, err
	}
	return ref(a.orchestrator.ToggleRecording(a.ctx))
}

// StartInterpreter opens the microphone for a two-way interpreter take.
func (a *App) StartInterpreter() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.orchestrator.StartInterpreter(a.ctx)
}

func (a *App) StopInterpreter() (OperationRef, error) {
	if err := a.requireReady(); err != nil {
		return OperationRef{}, err
	}
	return ref(a.orchestrator.StopAndInterpret(a.ctx))
}

func (a *App) ToggleInterpreter() (OperationRef, error) {
	if err := a.requireReady(); err != nil {
		return OperationRef{}, err
	}
	return ref(a.orchestrator.ToggleInterpreter(a.ctx))
}

func (a *App) Translate() (OperationRef, error) {
	if err := a.requireReady(); err != nil {
		return OperationRef{}, err
	}
	return ref(a.orchestrator.Translate(a.ctx))
}

func (a *App) Improve() (OperationRef, error) {
	if err := a.requireReady(); err != nil {
		return OperationRef{}, err
	}
	return ref(a.orchestrator.Improve(a.ctx))
}

// Speak reads the processed text. An empty languageCode uses the last
// spoken language.
func (a *App) Speak(languageCode string) (OperationRef, error) {
	if err := a.requireReady(); err != nil {
		return OperationRef{}, err
	}
	return ref(a.orchestrator.Speak(a.ctx, languageCode))
}

// Cancel aborts the running operation.
func (a *App) Cancel() {
	if a.orchestrator != nil {
		a.orchestrator.Cancel()
	}
}

func (a *App) Clear() {
	if a.orchestrator != nil {
		a.orchestrator.Clear()
	}
}

func (a *App) Swap() {
	if a.orchestrator != nil {
		a.orchestrator.Swap()
	}
}

func (a *App) SwapInterpreterLanguages() {
	if a.orchestrator != nil {
		a.orchestrator.SwapInterpreterLanguages()
	}
}

func (a *App) CopyProcessedText() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.orchestrator.CopyProcessedText(a.ctx)
}

func (a *App) AddCorrection(incorrect string, correct string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.orchestrator.AddCorrection(incorrect, correct)
}

func (a *App) RemoveCorrection(incorrect string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.orchestrator.RemoveCorrection(incorrect)
}

func (a *App) SetSelectedLanguage(code string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.orchestrator.SetSelectedLanguage(code)
}

func (a *App) SetInterpreterLanguages(first string, second string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.orchestrator.SetInterpreterLanguages(first, second)
}

func (a *App) SetTemperature(value float64) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.orchestrator.SetTemperature(value)
	return nil
}

func (a *App) SetTTSEngine(engine string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.orchestrator.SetTTSEngine(domain.TTSEngine(engine))
}

func (a *App) SetVoice(voice string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.orchestrator.SetVoice(voice)
}

// SetAPIKey stores the OpenAI key in the OS keychain. An empty key clears it.
func (a *App) SetAPIKey(key string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Credentials.Store(key)
}

// HasAPIKey reports whether an OpenAI key can be resolved.
func (a *App) HasAPIKey() bool {
	if a.orchestrator == nil {
		return false
	}
	_, err := a.services.Credentials.APIKey(a.ctx)
	return err == nil
}

// GetSnapshot returns the session read model.
func (a *App) GetSnapshot() domain.Snapshot {
	if a.orchestrator == nil {
		snap := domain.Snapshot{State: domain.OperationStateIdle, ProcessingMessage: domain.ProcessingDefault}
		if a.bootErr != nil {
			snap.ErrorMessage = a.bootErr.Error()
		}
		return snap
	}
	return a.orchestrator.Snapshot()
}

// GetLevels returns the waveform samples for the level meter.
func (a *App) GetLevels() domain.LevelSnapshot {
	if a.orchestrator == nil {
		return domain.LevelSnapshot{}
	}
	return a.orchestrator.Levels()
}

func (a *App) GetLanguages() []domain.Language {
	return domain.SupportedLanguages
}

func (a *App) GetVoices() []string {
	return domain.Voices
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	cfg := a.services.Config
	return map[string]string{
		"transcriber":   cfg.Session.Transcriber,
		"chatModel":     cfg.OpenAI.ChatModel,
		"speechModel":   cfg.OpenAI.SpeechModel,
		"audioInput":    cfg.Audio.InputDevice,
		"player":        cfg.Audio.PlayerCommand,
		"localSpeech":   cfg.Speech.LocalCommand,
		"correctionsAt": cfg.Storage.CorrectionsPath,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.orchestrator == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func ref(op *usecase.Operation, err error) (OperationRef, error) {
	if err != nil || op == nil {
		return OperationRef{}, err
	}
	return OperationRef{ID: op.ID, Kind: op.Kind}, nil
}

// StateChanged emits the session snapshot to the frontend.
func (a *App) StateChanged(snapshot domain.Snapshot) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventState, snapshot)
}

// OperationStateChanged emits operation lifecycle updates.
func (a *App) OperationStateChanged(id string, kind domain.OperationKind, state domain.OperationState) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventOperation, map[string]string{
		"id":      id,
		"kind":    string(kind),
		"state":   string(state),
		"message": operationMessage(kind, state),
	})
}

// OperationError emits backend errors to the UI.
func (a *App) OperationError(kind domain.ErrorKind, message string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"kind":    string(kind),
		"title":   errorTitle(kind),
		"message": message,
	})
}

func operationMessage(kind domain.OperationKind, state domain.OperationState) string {
	switch state {
	case domain.OperationStateRunning:
		switch kind {
		case domain.OperationTranscribe, domain.OperationInterpret:
			return domain.ProcessingTranscribing
		case domain.OperationTranslate:
			return domain.ProcessingTranslating
		case domain.OperationImprove:
			return domain.ProcessingImproving
		case domain.OperationSpeak:
			return "Speaking"
		}
	case domain.OperationStateSucceeded:
		switch kind {
		case domain.OperationTranscribe:
			return "Transcript ready"
		case domain.OperationTranslate:
			return "Translation ready"
		case domain.OperationImprove:
			return "Text improved"
		case domain.OperationInterpret:
			return "Interpretation spoken"
		case domain.OperationSpeak:
			return "Speech started"
		}
	case domain.OperationStateCancelled:
		return "Cancelled"
	case domain.OperationStateFailed:
		return "Failed"
	}
	return ""
}

func errorTitle(kind domain.ErrorKind) string {
	switch kind {
	case errorKindStartup:
		return "Startup failed"
	case domain.KindPermissionDenied, domain.KindDeviceConfig, domain.KindEncoderInit:
		return "Recording error"
	case domain.KindMissingCredential:
		return "API key missing"
	case domain.KindNetwork:
		return "Network error"
	case domain.KindService:
		return "Service error"
	case domain.KindFileIO:
		return "File error"
	case domain.KindNothingToProcess:
		return "Nothing to process"
	case domain.KindDecode, domain.KindEmptyResponse:
		return "Processing error"
	default:
		return "Unknown error"
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
