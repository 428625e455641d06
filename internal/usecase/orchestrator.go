package usecase

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/rs/zerolog"

	"lingomic/internal/corrections"
	"lingomic/internal/domain"
	"lingomic/internal/fsutil"
	"lingomic/internal/ports"
	"lingomic/internal/settings"
)

const defaultSettingsDebounce = 300 * time.Millisecond

// Config controls orchestrator behavior.
type Config struct {
	TranscriptionLanguage string
	SettingsDebounce      time.Duration
	Logger                zerolog.Logger
}

// Deps are the collaborators the orchestrator drives. Capture, Transcriber
// and Text are required.
type Deps struct {
	Permission   ports.PermissionRequester
	Capture      ports.AudioCapture
	Transcriber  ports.Transcriber
	Text         ports.TextProcessor
	Synthesizer  ports.SpeechSynthesizer
	LocalSpeaker ports.LocalSpeaker
	Player       ports.Player
	Corrections  ports.CorrectionStore
	Settings     ports.SettingsStore
	Clipboard    ports.Clipboard
	Events       ports.EventSink
}

type recordingMode int

const (
	modeNone recordingMode = iota
	modeTranscribe
	modeInterpret
)

// Orchestrator owns the speech session and runs one cancellable operation at
// a time.
type Orchestrator struct {
	deps     Deps
	cfg      Config
	events   ports.EventSink
	log      zerolog.Logger
	debounce func(func())

	mu                sync.Mutex
	current           *activeOperation
	processingMessage string
	errorMessage      string
	interpreting      bool
	interpretOp       *activeOperation
	mode              recordingMode
	session           domain.SpeechSession
	settings          domain.Settings
	lastSpoken        string
	corrections       map[string]string
	table             *corrections.Table
	speechPath        string
}

func NewOrchestrator(deps Deps, cfg Config) *Orchestrator {
	if cfg.TranscriptionLanguage == "" {
		cfg.TranscriptionLanguage = "en"
	}
	if cfg.SettingsDebounce <= 0 {
		cfg.SettingsDebounce = defaultSettingsDebounce
	}
	if deps.Corrections == nil {
		deps.Corrections = corrections.NewMemoryStore(nil)
	}
	if deps.Settings == nil {
		deps.Settings = settings.NewMemoryStore(domain.DefaultSettings())
	}
	events := deps.Events
	if events == nil {
		events = noopSink{}
	}

	o := &Orchestrator{
		deps:              deps,
		cfg:               cfg,
		events:            events,
		log:               cfg.Logger.With().Str("component", "orchestrator").Logger(),
		debounce:          debounce.New(cfg.SettingsDebounce),
		processingMessage: domain.ProcessingDefault,
		settings:          domain.DefaultSettings(),
		corrections:       map[string]string{},
	}

	if loaded, err := deps.Settings.Load(); err != nil {
		o.log.Warn().Err(err).Msg("failed to load settings, using defaults")
	} else {
		o.settings = settings.Sanitize(loaded)
	}

	if loaded, err := deps.Corrections.Load(); err != nil {
		o.log.Warn().Err(err).Msg("failed to load corrections")
		o.errorMessage = domain.Describe(err)
	} else if loaded != nil {
		o.corrections = loaded
	}
	o.table = corrections.Compile(o.corrections)
	return o
}

// Snapshot returns the current read model.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	recording := o.deps.Capture.IsRecording()

	o.mu.Lock()
	defer o.mu.Unlock()

	snap := domain.Snapshot{
		State:             domain.OperationStateIdle,
		Processing:        o.current != nil,
		ProcessingMessage: o.processingMessage,
		Recording:         recording,
		Interpreting:      o.interpreting,
		ErrorMessage:      o.errorMessage,
		Session:           o.session,
		LastSpokenCode:    o.lastSpoken,
		Temperature:       o.settings.Temperature,
		TTSEngine:         o.settings.TTSEngine,
		Voice:             o.settings.Voice,
		Corrections:       maps.Clone(o.corrections),
	}
	snap.SelectedLanguage, _ = domain.LookupLanguage(o.settings.SelectedLanguage)
	snap.InterpreterA, _ = domain.LookupLanguage(o.settings.InterpreterA)
	snap.InterpreterB, _ = domain.LookupLanguage(o.settings.InterpreterB)
	if o.current != nil {
		snap.State = domain.OperationStateRunning
		snap.Kind = o.current.kind()
		snap.OperationID = o.current.id()
	}
	return snap
}

// Levels returns the waveform for the current or last recording.
func (o *Orchestrator) Levels() domain.LevelSnapshot {
	return o.deps.Capture.Levels()
}

// Shutdown cancels work, stops audio, removes the speech file and flushes
// settings.
func (o *Orchestrator) Shutdown() {
	o.Cancel()
	o.stopPlayback()

	o.mu.Lock()
	path := o.speechPath
	o.speechPath = ""
	o.mu.Unlock()
	o.removeFile(path)

	if o.deps.Capture.IsRecording() {
		if rec, err := o.deps.Capture.Stop(); err == nil && rec != nil {
			o.removeFile(rec.Path)
		}
	}
	o.saveSettings()
}

func (o *Orchestrator) publish() {
	o.events.StateChanged(o.Snapshot())
}

// reject reports a failure that happened before any operation started.
func (o *Orchestrator) reject(err error) error {
	message := domain.Describe(err)
	o.mu.Lock()
	o.errorMessage = message
	o.mu.Unlock()

	if message != "" {
		o.events.OperationError(domain.KindOf(err), message)
	}
	o.publish()
	return err
}

func (o *Orchestrator) removeFile(path string) {
	if err := fsutil.RemoveQuietly(path); err != nil {
		o.log.Debug().Err(err).Str("path", path).Msg("failed to remove temp file")
	}
}

func (o *Orchestrator) stopPlayback() {
	if o.deps.Player != nil {
		o.deps.Player.Stop()
	}
	if o.deps.LocalSpeaker != nil {
		o.deps.LocalSpeaker.Stop()
	}
}

func (o *Orchestrator) saveSettings() {
	o.mu.Lock()
	current := o.settings
	o.mu.Unlock()

	if err := o.deps.Settings.Save(current); err != nil {
		o.log.Warn().Err(err).Msg("failed to save settings")
	}
}

func (o *Orchestrator) ensurePermission(ctx context.Context) error {
	if o.deps.Permission == nil {
		return nil
	}
	granted, err := o.deps.Permission.RequestMicrophone(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return domain.ErrPermissionDenied
	}
	return nil
}

var errMissingCollaborator = errors.New("collaborator not configured")

type noopSink struct{}

func (noopSink) StateChanged(domain.Snapshot)                                              {}
func (noopSink) OperationStateChanged(string, domain.OperationKind, domain.OperationState) {}
func (noopSink) OperationError(domain.ErrorKind, string)                                   {}
