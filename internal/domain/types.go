package domain

import "time"

// OperationKind names a user-triggered pipeline.
type OperationKind string

const (
	OperationTranscribe OperationKind = "transcribe"
	OperationTranslate  OperationKind = "translate"
	OperationImprove    OperationKind = "improve"
	OperationInterpret  OperationKind = "interpret"
	OperationSpeak      OperationKind = "speak"
)

// OperationState models the orchestrator lifecycle.
type OperationState string

const (
	OperationStateIdle      OperationState = "idle"
	OperationStateRunning   OperationState = "running"
	OperationStateSucceeded OperationState = "succeeded"
	OperationStateFailed    OperationState = "failed"
	OperationStateCancelled OperationState = "cancelled"
)

// Terminal reports whether the state ends an operation.
func (s OperationState) Terminal() bool {
	switch s {
	case OperationStateSucceeded, OperationStateFailed, OperationStateCancelled:
		return true
	default:
		return false
	}
}

// Processing labels shown while an operation runs.
const (
	ProcessingDefault      = "Processing..."
	ProcessingTranscribing = "Transcribing…"
	ProcessingTranslating  = "Translating…"
	ProcessingImproving    = "Improving…"
	ProcessingSpeech       = "Generating speech…"
)

// TTSEngine selects where speech is synthesized.
type TTSEngine string

const (
	TTSEngineLocal  TTSEngine = "local"
	TTSEngineRemote TTSEngine = "remote"
)

// Valid reports whether the engine is known.
func (e TTSEngine) Valid() bool {
	return e == TTSEngineLocal || e == TTSEngineRemote
}

// Voices accepted by the remote speech engine.
var Voices = []string{"alloy", "ash", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer"}

const DefaultVoice = "echo"

// SpeechSession holds the two text fields the operations commit into.
type SpeechSession struct {
	OriginalText  string `json:"originalText"`
	ProcessedText string `json:"processedText"`
}

// Recording is a finished capture artifact on disk.
type Recording struct {
	Path       string        `json:"path"`
	SampleRate int           `json:"sampleRate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
}

// Transcript is transcription output with the detected source language.
type Transcript struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat-completion turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Settings are the user preferences that survive restarts.
type Settings struct {
	SelectedLanguage string    `json:"selectedLanguage"`
	InterpreterA     string    `json:"interpreterA"`
	InterpreterB     string    `json:"interpreterB"`
	Temperature      float64   `json:"temperature"`
	TTSEngine        TTSEngine `json:"ttsEngine"`
	Voice            string    `json:"voice"`
}

const DefaultTemperature = 0.7

// DefaultSettings returns English/Spanish with the local engine.
func DefaultSettings() Settings {
	return Settings{
		SelectedLanguage: "en",
		InterpreterA:     "en",
		InterpreterB:     "es",
		Temperature:      DefaultTemperature,
		TTSEngine:        TTSEngineLocal,
		Voice:            DefaultVoice,
	}
}

// Snapshot is the read model handed to front-ends after every change.
type Snapshot struct {
	State             OperationState    `json:"state"`
	Kind              OperationKind     `json:"kind,omitempty"`
	OperationID       string            `json:"operationId,omitempty"`
	Processing        bool              `json:"processing"`
	ProcessingMessage string            `json:"processingMessage"`
	Recording         bool              `json:"recording"`
	Interpreting      bool              `json:"interpreting"`
	ErrorMessage      string            `json:"errorMessage,omitempty"`
	Session           SpeechSession     `json:"session"`
	SelectedLanguage  Language          `json:"selectedLanguage"`
	InterpreterA      Language          `json:"interpreterA"`
	InterpreterB      Language          `json:"interpreterB"`
	LastSpokenCode    string            `json:"lastSpokenCode,omitempty"`
	Temperature       float64           `json:"temperature"`
	TTSEngine         TTSEngine         `json:"ttsEngine"`
	Voice             string            `json:"voice"`
	Corrections       map[string]string `json:"corrections"`
}

// LevelSnapshot is the oldest-first amplitude view plus elapsed recording time.
type LevelSnapshot struct {
	Samples []float64     `json:"samples"`
	Elapsed time.Duration `json:"elapsed"`
}
