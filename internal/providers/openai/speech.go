package openai

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	goopenai "github.com/sashabaranov/go-openai"

	"lingomic/internal/domain"
	"lingomic/internal/ports"
)

// SpeechClient renders text through /audio/speech into AAC temp files.
type SpeechClient struct {
	base
}

func NewSpeechClient(cfg Config, credentials ports.CredentialSource) *SpeechClient {
	return &SpeechClient{base: newBase(cfg, credentials, "speech")}
}

// Synthesize writes the returned audio to a fresh temp file and returns its
// path. The caller deletes the file.
func (c *SpeechClient) Synthesize(ctx context.Context, text string, voice string) (string, error) {
	key, err := c.apiKey(ctx)
	if err != nil {
		return "", err
	}
	if voice == "" {
		voice = domain.DefaultVoice
	}

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.sdkClient(key).CreateSpeech(reqCtx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(c.cfg.SpeechModel),
		Input:          text,
		Voice:          goopenai.SpeechVoice(voice),
		ResponseFormat: goopenai.SpeechResponseFormatAac,
	})
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Close()

	path := speechPath(c.cfg.TempDir)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", domain.FileIOError("Failed to create speech file", err)
	}

	written, copyErr := io.Copy(file, resp)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return "", classifyError(copyErr)
		}
		return "", domain.FileIOError("Failed to write speech file", closeErr)
	}
	if written == 0 {
		_ = os.Remove(path)
		return "", domain.ErrEmptyResponse
	}

	c.log.Debug().Str("voice", voice).Int64("bytes", written).Msg("speech synthesized")
	return path, nil
}

func speechPath(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "speech-"+uuid.NewString()+".aac")
}
