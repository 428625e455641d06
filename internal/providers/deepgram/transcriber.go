package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lingomic/internal/domain"
	"lingomic/internal/ports"
)

const (
	defaultBaseURL   = "https://api.deepgram.com/v1"
	defaultModel     = "nova-2"
	defaultChunkSize = 8192
	defaultTimeout   = 60 * time.Second
)

// Config controls the Deepgram listen endpoint.
type Config struct {
	APIKey         string
	APIBaseURL     string
	Model          string
	SmartFormat    bool
	ChunkSize      int
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Transcriber streams finished recordings through the Deepgram websocket
// and joins the final results.
type Transcriber struct {
	cfg        Config
	identifier ports.LanguageIdentifier
	dialer     *websocket.Dialer
	log        zerolog.Logger
}

func NewTranscriber(cfg Config, identifier ports.LanguageIdentifier) *Transcriber {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	return &Transcriber{
		cfg:        cfg,
		identifier: identifier,
		dialer:     websocket.DefaultDialer,
		log:        cfg.Logger.With().Str("component", "deepgram").Logger(),
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, rec domain.Recording, language string) (string, error) {
	return t.stream(ctx, rec, language)
}

// TranscribeWithDetection transcribes without a language hint and identifies
// the language from the text.
func (t *Transcriber) TranscribeWithDetection(ctx context.Context, rec domain.Recording) (domain.Transcript, error) {
	text, err := t.stream(ctx, rec, "")
	if err != nil {
		return domain.Transcript{}, err
	}
	language := ""
	if t.identifier != nil {
		language = t.identifier.Identify(text)
	}
	return domain.Transcript{Text: text, Language: language}, nil
}

func (t *Transcriber) stream(ctx context.Context, rec domain.Recording, language string) (string, error) {
	if strings.TrimSpace(t.cfg.APIKey) == "" {
		return "", &domain.Error{Kind: domain.KindMissingCredential, Detail: "DEEPGRAM_API_KEY is not configured"}
	}

	audio, err := os.ReadFile(rec.Path)
	if err != nil {
		return "", domain.FileIOError("Failed to read audio file", err)
	}

	wsURL, err := buildListenURL(t.cfg, language)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.RequestTimeout)
	defer cancel()

	headers := http.Header{}
	headers.Set("Authorization", "Token "+t.cfg.APIKey)

	conn, resp, err := t.dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return "", dialError(ctx, resp, err)
	}

	s := &listenStream{conn: conn, transcript: &transcriptAggregator{}}
	stop := context.AfterFunc(ctx, s.abort)
	defer stop()

	started := time.Now()
	s.run(audio, t.cfg.ChunkSize)
	streamErr := s.wait()

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return "", &domain.Error{Kind: domain.KindCancelled, Err: err}
		}
		return "", domain.NetworkError(err)
	}
	if streamErr != nil {
		var typed *domain.Error
		if errors.As(streamErr, &typed) {
			return "", streamErr
		}
		return "", domain.NetworkError(streamErr)
	}

	text := s.transcript.Raw()
	t.log.Debug().Int("bytes", len(audio)).Dur("elapsed", time.Since(started)).Int("chars", len(text)).Msg("stream transcribed")
	return text, nil
}

func dialError(ctx context.Context, resp *http.Response, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &domain.Error{Kind: domain.KindCancelled, Err: ctx.Err()}
	}
	if resp != nil {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.ServiceError(resp.StatusCode, string(body))
	}
	return domain.NetworkError(fmt.Errorf("failed to connect to Deepgram websocket: %w", err))
}

// listenStream pumps one recording up the socket while collecting results.
type listenStream struct {
	conn       *websocket.Conn
	transcript *transcriptAggregator
	wg         sync.WaitGroup

	errMu  sync.Mutex
	err    error
	closed bool

	closeOnce sync.Once
}

func (s *listenStream) run(audio []byte, chunkSize int) {
	s.wg.Add(2)
	go s.writeLoop(audio, chunkSize)
	go s.readLoop()
}

func (s *listenStream) wait() error {
	s.wg.Wait()
	s.abort()
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *listenStream) abort() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
	})
}

func (s *listenStream) setErr(err error) {
	if err == nil {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if isCleanClose(err) {
		s.closed = true
		return
	}
	// Writes racing a clean close fail on the torn down socket.
	if s.closed {
		return
	}
	if s.err == nil {
		s.err = err
	}
}

func isCleanClose(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}
	switch closeErr.Code {
	case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
		return true
	}
	return false
}

func (s *listenStream) writeLoop(audio []byte, chunkSize int) {
	defer s.wg.Done()

	for offset := 0; offset < len(audio); offset += chunkSize {
		end := min(offset+chunkSize, len(audio))
		if err := s.conn.WriteMessage(websocket.BinaryMessage, audio[offset:end]); err != nil {
			s.setErr(fmt.Errorf("failed to send audio: %w", err))
			return
		}
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		s.setErr(fmt.Errorf("failed to close stream: %w", err))
	}
}

func (s *listenStream) readLoop() {
	defer s.wg.Done()
	defer s.abort()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("failed to read provider event: %w", err))
			return
		}

		var response listenResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			continue
		}

		if strings.EqualFold(response.Type, "Error") {
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "deepgram returned an unknown error"
			}
			s.setErr(domain.ServiceError(0, message))
			return
		}

		if text := extractTranscript(response); text != "" {
			s.transcript.Add(text, response.IsFinal || response.SpeechFinal)
		}
	}
}

type alternative struct {
	Transcript string `json:"transcript"`
}

type listenResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []alternative `json:"alternatives"`
	} `json:"channel"`

	Results struct {
		Channels []struct {
			Alternatives []alternative `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func extractTranscript(response listenResponse) string {
	if len(response.Channel.Alternatives) > 0 {
		if text := strings.TrimSpace(response.Channel.Alternatives[0].Transcript); text != "" {
			return text
		}
	}
	if len(response.Results.Channels) > 0 && len(response.Results.Channels[0].Alternatives) > 0 {
		return strings.TrimSpace(response.Results.Channels[0].Alternatives[0].Transcript)
	}
	return ""
}

// buildListenURL targets /listen for containerized audio, so encoding and
// sample rate are left for the service to read from the file header.
func buildListenURL(cfg Config, language string) (string, error) {
	base := strings.TrimSpace(cfg.APIBaseURL)
	if base == "" {
		base = defaultBaseURL
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	query := listenURL.Query()
	query.Set("model", cfg.Model)
	query.Set("punctuate", "true")
	query.Set("smart_format", fmt.Sprintf("%t", cfg.SmartFormat))
	if language != "" {
		query.Set("language", language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
