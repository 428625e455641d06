package bootstrap

import (
	"fmt"

	"lingomic/internal/audio"
	"lingomic/internal/clipboard"
	"lingomic/internal/config"
	"lingomic/internal/corrections"
	"lingomic/internal/credentials"
	"lingomic/internal/langid"
	"lingomic/internal/levels"
	"lingomic/internal/logging"
	"lingomic/internal/ports"
	"lingomic/internal/providers/deepgram"
	"lingomic/internal/providers/openai"
	"lingomic/internal/settings"
	"lingomic/internal/speech"
	"lingomic/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Orchestrator *usecase.Orchestrator
	Credentials  *credentials.Resolver
	Config       config.Config
	Logger       *logging.Logger

	opener *audio.MalgoOpener
}

// Close releases the capture backend and the log file.
func (s Services) Close() {
	if s.Orchestrator != nil {
		s.Orchestrator.Shutdown()
	}
	if s.opener != nil {
		s.opener.Close()
	}
	_ = s.Logger.Close()
}

// Build wires all backend dependencies for the current runtime. A nil
// clipboard falls back to the system clipboard.
func Build(eventSink ports.EventSink, clip ports.Clipboard) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}
	return BuildWithConfig(cfg, eventSink, clip)
}

func BuildWithConfig(cfg config.Config, eventSink ports.EventSink, clip ports.Clipboard) (Services, error) {
	logDir, err := logging.ResolveDir(cfg.Log.Dir)
	if err != nil {
		return Services{}, err
	}
	logger, err := logging.New(logging.Config{Dir: logDir, Level: cfg.Log.Level, Console: cfg.Log.Console})
	if err != nil {
		return Services{}, err
	}
	log := logger.Logger

	resolver := credentials.NewResolver(cfg.OpenAI.APIKey, credentials.Keyring{}, cfg.Storage.KeyringService)
	identifier := langid.New()

	openaiCfg := openai.Config{
		BaseURL:            cfg.OpenAI.APIBaseURL,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
		ChatModel:          cfg.OpenAI.ChatModel,
		SpeechModel:        cfg.OpenAI.SpeechModel,
		RequestTimeout:     cfg.OpenAI.RequestTimeout,
		TempDir:            cfg.Audio.TempDir,
		Logger:             log,
	}

	var transcriber ports.Transcriber
	switch cfg.Session.Transcriber {
	case config.TranscriberDeepgram:
		transcriber = deepgram.NewTranscriber(deepgram.Config{
			APIKey:         cfg.Deepgram.APIKey,
			APIBaseURL:     cfg.Deepgram.APIBaseURL,
			Model:          cfg.Deepgram.Model,
			SmartFormat:    cfg.Deepgram.SmartFormat,
			RequestTimeout: cfg.OpenAI.RequestTimeout,
			Logger:         log,
		}, identifier)
	case config.TranscriberOpenAI:
		transcriber = openai.NewTranscriber(openaiCfg, resolver, identifier)
	default:
		_ = logger.Close()
		return Services{}, fmt.Errorf("unsupported transcriber %q", cfg.Session.Transcriber)
	}

	monitor := levels.NewMonitor(levels.Config{
		Capacity:     cfg.Levels.Capacity,
		Interval:     cfg.Levels.Interval,
		NoiseFloorDB: cfg.Levels.NoiseFloorDB,
	})
	opener := &audio.MalgoOpener{}
	recorder := audio.NewRecorder(opener, audio.RecorderConfig{
		Capture: audio.CaptureConfig{
			SampleRate:  cfg.Audio.SampleRate,
			Channels:    cfg.Audio.Channels,
			InputDevice: cfg.Audio.InputDevice,
		},
		TempDir: cfg.Audio.TempDir,
	}, monitor, log)

	if clip == nil {
		if !clipboard.Available() {
			log.Warn().Msg("no system clipboard utility found")
		}
		clip = clipboard.System{}
	}

	orchestrator := usecase.NewOrchestrator(usecase.Deps{
		Permission:   audio.DesktopPermission{},
		Capture:      recorder,
		Transcriber:  transcriber,
		Text:         openai.NewTextClient(openaiCfg, resolver),
		Synthesizer:  openai.NewSpeechClient(openaiCfg, resolver),
		LocalSpeaker: speech.NewLocalSpeaker(cfg.Speech.LocalCommand, speech.DefaultCatalog, log),
		Player:       audio.NewCommandPlayer(cfg.Audio.PlayerCommand, log),
		Corrections:  corrections.NewFileStore(cfg.Storage.CorrectionsPath),
		Settings:     settings.NewFileStore(cfg.Storage.SettingsPath),
		Clipboard:    clip,
		Events:       eventSink,
	}, usecase.Config{
		TranscriptionLanguage: cfg.Session.TranscriptionLanguage,
		Logger:                log,
	})

	log.Info().
		Str("transcriber", cfg.Session.Transcriber).
		Str("chat_model", cfg.OpenAI.ChatModel).
		Str("input_device", cfg.Audio.InputDevice).
		Msg("services ready")

	return Services{
		Orchestrator: orchestrator,
		Credentials:  resolver,
		Config:       cfg,
		Logger:       logger,
		opener:       opener,
	}, nil
}
