package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TranscriberOpenAI   = "openai"
	TranscriberDeepgram = "deepgram"
)

// Config stores runtime configuration.
type Config struct {
	OpenAI   OpenAIConfig
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Levels   LevelsConfig
	Speech   SpeechConfig
	Storage  StorageConfig
	Session  SessionConfig
	Log      LogConfig
}

type OpenAIConfig struct {
	APIKey             string
	APIBaseURL         string
	TranscriptionModel string
	ChatModel          string
	SpeechModel        string
	RequestTimeout     time.Duration
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	SmartFormat bool
}

type AudioConfig struct {
	SampleRate    int
	Channels      int
	InputDevice   string
	TempDir       string
	PlayerCommand string
}

type LevelsConfig struct {
	Capacity     int
	Interval     time.Duration
	NoiseFloorDB float64
}

type SpeechConfig struct {
	LocalCommand string
}

type StorageConfig struct {
	Dir             string
	CorrectionsPath string
	SettingsPath    string
	KeyringService  string
}

type SessionConfig struct {
	Transcriber           string
	TranscriptionLanguage string
}

type LogConfig struct {
	Dir     string
	Level   string
	Console bool
}

// Load resolves configuration from .env files, environment variables and
// defaults. Variables already present in the environment win over .env.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	storageDir := envOrDefault("LINGOMIC_CONFIG_DIR", filepath.Join(home, ".config", "lingomic"))
	if err := loadDotEnv(".env", filepath.Join(storageDir, ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		OpenAI: OpenAIConfig{
			APIKey:             strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			APIBaseURL:         envOrDefault("OPENAI_API_BASE", "https://api.openai.com/v1"),
			TranscriptionModel: envOrDefault("LINGOMIC_TRANSCRIPTION_MODEL", "gpt-4o-mini-transcribe"),
			ChatModel:          envOrDefault("LINGOMIC_CHAT_MODEL", "gpt-4o-mini"),
			SpeechModel:        envOrDefault("LINGOMIC_SPEECH_MODEL", "tts-1"),
			RequestTimeout:     time.Duration(envOrDefaultInt("LINGOMIC_REQUEST_TIMEOUT_MS", 60000)) * time.Millisecond,
		},
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			SampleRate:    envOrDefaultInt("LINGOMIC_SAMPLE_RATE", 44100),
			Channels:      envOrDefaultInt("LINGOMIC_CHANNELS", 1),
			InputDevice:   strings.TrimSpace(os.Getenv("LINGOMIC_AUDIO_INPUT_DEVICE")),
			TempDir:       firstNonEmpty(os.Getenv("LINGOMIC_TEMP_DIR"), os.TempDir()),
			PlayerCommand: envOrDefault("LINGOMIC_PLAYER_COMMAND", "ffplay"),
		},
		Levels: LevelsConfig{
			Capacity:     envOrDefaultInt("LINGOMIC_LEVEL_SAMPLES", 30),
			Interval:     time.Duration(envOrDefaultInt("LINGOMIC_LEVEL_INTERVAL_MS", 50)) * time.Millisecond,
			NoiseFloorDB: envOrDefaultFloat("LINGOMIC_NOISE_FLOOR_DB", -50),
		},
		Speech: SpeechConfig{
			LocalCommand: envOrDefault("LINGOMIC_LOCAL_TTS_COMMAND", "espeak-ng"),
		},
		Storage: StorageConfig{
			Dir:             storageDir,
			CorrectionsPath: envOrDefault("LINGOMIC_CORRECTIONS_FILE", filepath.Join(storageDir, "corrections.json")),
			SettingsPath:    envOrDefault("LINGOMIC_SETTINGS_FILE", filepath.Join(storageDir, "settings.json")),
			KeyringService:  envOrDefault("LINGOMIC_KEYRING_SERVICE", "lingomic"),
		},
		Session: SessionConfig{
			Transcriber:           strings.ToLower(envOrDefault("LINGOMIC_TRANSCRIBER", TranscriberOpenAI)),
			TranscriptionLanguage: envOrDefault("LINGOMIC_TRANSCRIPTION_LANGUAGE", "en"),
		},
		Log: LogConfig{
			Dir:     strings.TrimSpace(os.Getenv("LINGOMIC_LOG_DIR")),
			Level:   envOrDefault("LINGOMIC_LOG_LEVEL", "info"),
			Console: envOrDefaultBool("LINGOMIC_LOG_CONSOLE", false),
		},
	}

	if cfg.OpenAI.RequestTimeout <= 0 {
		cfg.OpenAI.RequestTimeout = 60 * time.Second
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 44100
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Levels.Capacity <= 0 {
		cfg.Levels.Capacity = 30
	}
	if cfg.Levels.Interval <= 0 {
		cfg.Levels.Interval = 50 * time.Millisecond
	}
	switch cfg.Session.Transcriber {
	case TranscriberOpenAI, TranscriberDeepgram:
	default:
		return Config{}, fmt.Errorf("unsupported transcriber %q", cfg.Session.Transcriber)
	}

	return cfg, nil
}

func loadDotEnv(paths ...string) error {
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
