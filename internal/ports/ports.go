package ports

import (
	"context"

	"lingomic/internal/domain"
)

// PermissionRequester asks the platform for microphone access.
type PermissionRequester interface {
	RequestMicrophone(ctx context.Context) (bool, error)
}

// AudioCapture owns the microphone recording lifecycle.
type AudioCapture interface {
	Start(ctx context.Context) error
	// Stop finalizes the artifact. It returns nil, nil when nothing was
	// recording.
	Stop() (*domain.Recording, error)
	IsRecording() bool
	Levels() domain.LevelSnapshot
}

// Transcriber turns a finished recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, rec domain.Recording, language string) (string, error)
	TranscribeWithDetection(ctx context.Context, rec domain.Recording) (domain.Transcript, error)
}

// TextProcessor runs chat-completion passes over text.
type TextProcessor interface {
	Complete(ctx context.Context, messages []domain.Message, temperature float64) (string, error)
	Translate(ctx context.Context, text string, target domain.Language, temperature float64) (string, error)
	Improve(ctx context.Context, text string, sourceCode string, temperature float64) (string, error)
}

// SpeechSynthesizer renders text to an audio file the caller must delete.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, voice string) (string, error)
}

// LocalSpeaker speaks text on-device without producing a file.
type LocalSpeaker interface {
	Speak(ctx context.Context, text string, languageCode string) error
	Stop()
}

// Player plays one audio file at a time.
type Player interface {
	// Play starts playback and returns once it is running. onFinish fires
	// exactly once when playback ends or is stopped.
	Play(ctx context.Context, path string, onFinish func()) error
	Stop()
}

// LanguageIdentifier guesses an ISO 639-1 code for text, or "".
type LanguageIdentifier interface {
	Identify(text string) string
}

// CredentialSource resolves the API key for remote services.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// CorrectionStore persists the correction table.
type CorrectionStore interface {
	Load() (map[string]string, error)
	Save(table map[string]string) error
	Add(incorrect string, correct string) error
	Remove(incorrect string) error
}

// SettingsStore persists user preferences.
type SettingsStore interface {
	Load() (domain.Settings, error)
	Save(settings domain.Settings) error
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink receives orchestrator notifications. Calls are made without
// holding orchestrator locks, so implementations may call Snapshot.
type EventSink interface {
	StateChanged(snapshot domain.Snapshot)
	OperationStateChanged(id string, kind domain.OperationKind, state domain.OperationState)
	OperationError(kind domain.ErrorKind, message string)
}
