package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"lingomic/internal/domain"
	"lingomic/internal/ports"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// Transcriber uploads recordings to /audio/transcriptions.
type Transcriber struct {
	base
	client     *tracedClient
	identifier ports.LanguageIdentifier
}

func NewTranscriber(cfg Config, credentials ports.CredentialSource, identifier ports.LanguageIdentifier) *Transcriber {
	b := newBase(cfg, credentials, "transcriber")
	return &Transcriber{
		base:       b,
		client:     &tracedClient{client: b.cfg.HTTPClient, log: b.log},
		identifier: identifier,
	}
}

// Transcribe returns the plain-text transcript. An empty language lets the
// service detect it.
func (t *Transcriber) Transcribe(ctx context.Context, rec domain.Recording, language string) (string, error) {
	body, err := t.post(ctx, rec, formatText, language)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// TranscribeWithDetection requests a JSON transcript and identifies its
// language. Language is "" when it cannot be determined.
func (t *Transcriber) TranscribeWithDetection(ctx context.Context, rec domain.Recording) (domain.Transcript, error) {
	body, err := t.post(ctx, rec, formatJSON, "")
	if err != nil {
		return domain.Transcript{}, err
	}

	var resp struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Transcript{}, domain.DecodeError(err)
	}

	text := strings.TrimSpace(resp.Text)
	language := ""
	if looksLikeLanguageCode(resp.Language) {
		language = resp.Language
	} else if t.identifier != nil {
		language = t.identifier.Identify(text)
	}
	return domain.Transcript{Text: text, Language: language}, nil
}

func (t *Transcriber) post(ctx context.Context, rec domain.Recording, format string, language string) ([]byte, error) {
	key, err := t.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	audio, err := os.ReadFile(rec.Path)
	if err != nil {
		return nil, domain.FileIOError("Failed to read audio file", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	ext := strings.ToLower(filepath.Ext(rec.Path))
	if ext == "" {
		ext = ".flac"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="recording%s"`, ext))
	header.Set("Content-Type", audioContentType(ext))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write multipart file: %w", err)
	}

	fields := [][2]string{{"model", t.cfg.TranscriptionModel}, {"response_format", format}}
	if language != "" {
		fields = append(fields, [2]string{"language", language})
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("failed to write multipart field %s: %w", field[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	reqCtx, cancel := t.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, t.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	t.log.Debug().Str("format", format).Int("bytes", len(audio)).Dur("duration", rec.Duration).Msg("uploading recording")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.ServiceError(resp.StatusCode, string(resp.Body))
	}
	return resp.Body, nil
}

func audioContentType(ext string) string {
	switch ext {
	case ".flac":
		return "audio/flac"
	case ".m4a", ".mp4":
		return "audio/mp4"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func looksLikeLanguageCode(value string) bool {
	code := domain.NormalizeLanguageCode(value)
	return len(code) >= 2 && len(code) <= 3
}
