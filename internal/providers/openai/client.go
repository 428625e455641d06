package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"

	"lingomic/internal/domain"
	"lingomic/internal/ports"
)

const (
	defaultBaseURL            = "https://api.openai.com/v1"
	defaultTranscriptionModel = "gpt-4o-mini-transcribe"
	defaultChatModel          = "gpt-4o-mini"
	defaultSpeechModel        = "tts-1"
	defaultTimeout            = 60 * time.Second
)

// Config controls the OpenAI endpoints shared by all clients.
type Config struct {
	BaseURL            string
	TranscriptionModel string
	ChatModel          string
	SpeechModel        string
	RequestTimeout     time.Duration
	TempDir            string
	HTTPClient         *http.Client
	Logger             zerolog.Logger
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaultBaseURL
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.TranscriptionModel == "" {
		c.TranscriptionModel = defaultTranscriptionModel
	}
	if c.ChatModel == "" {
		c.ChatModel = defaultChatModel
	}
	if c.SpeechModel == "" {
		c.SpeechModel = defaultSpeechModel
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = newHTTPClient(c.RequestTimeout)
	}
	return c
}

// base holds what every client needs: credentials, timeouts and logging.
type base struct {
	cfg         Config
	credentials ports.CredentialSource
	log         zerolog.Logger
}

func newBase(cfg Config, credentials ports.CredentialSource, component string) base {
	cfg = cfg.withDefaults()
	return base{
		cfg:         cfg,
		credentials: credentials,
		log:         cfg.Logger.With().Str("component", component).Logger(),
	}
}

func (b base) apiKey(ctx context.Context) (string, error) {
	if b.credentials == nil {
		return "", domain.ErrMissingCredential
	}
	key, err := b.credentials.APIKey(ctx)
	if err != nil {
		return "", classifyError(err)
	}
	if strings.TrimSpace(key) == "" {
		return "", domain.ErrMissingCredential
	}
	return key, nil
}

func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.cfg.RequestTimeout)
}

func (b base) sdkClient(key string) *goopenai.Client {
	sdkCfg := goopenai.DefaultConfig(key)
	sdkCfg.BaseURL = b.cfg.BaseURL
	sdkCfg.HTTPClient = b.cfg.HTTPClient
	return goopenai.NewClientWithConfig(sdkCfg)
}

// classifyError maps transport, SDK and decoding failures onto the domain
// taxonomy. Already classified errors pass through.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var typed *domain.Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return &domain.Error{Kind: domain.KindCancelled, Err: err}
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return domain.ServiceError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return domain.ServiceError(reqErr.HTTPStatusCode, body)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return domain.DecodeError(err)
	}
	return domain.NetworkError(err)
}
