package openai

import (
	"context"
	"math"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"lingomic/internal/domain"
	"lingomic/internal/ports"
)

const (
	translateSystemPrompt = "You are a helpful translation assistant."
	improveSystemPrompt   = "You are a writing improvement assistant. Please improve the following text by correcting grammar, enhancing clarity, and making it more coherent while maintaining the original meaning."
	keepChineseSuffix     = " Keep the output in Simplified Chinese."
	simplifiedChinese     = "Simplified Chinese"
)

// TextClient runs chat completions.
type TextClient struct {
	base
}

func NewTextClient(cfg Config, credentials ports.CredentialSource) *TextClient {
	return &TextClient{base: newBase(cfg, credentials, "chat")}
}

// Complete sends messages and returns the first choice's content.
func (c *TextClient) Complete(ctx context.Context, messages []domain.Message, temperature float64) (string, error) {
	key, err := c.apiKey(ctx)
	if err != nil {
		return "", err
	}

	req := goopenai.ChatCompletionRequest{
		Model:       c.cfg.ChatModel,
		Messages:    make([]goopenai.ChatCompletionMessage, 0, len(messages)),
		Temperature: sdkTemperature(temperature),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.sdkClient(key).CreateChatCompletion(reqCtx, req)
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", domain.ErrEmptyResponse
	}

	c.log.Debug().Str("model", resp.Model).Int("tokens", resp.Usage.TotalTokens).Msg("completion received")
	return resp.Choices[0].Message.Content, nil
}

// Translate asks for text rendered in target. A Chinese target always
// requests Simplified Chinese.
func (c *TextClient) Translate(ctx context.Context, text string, target domain.Language, temperature float64) (string, error) {
	return c.Complete(ctx, TranslateMessages(text, target), temperature)
}

// Improve asks for a grammar and clarity pass over text.
func (c *TextClient) Improve(ctx context.Context, text string, sourceCode string, temperature float64) (string, error) {
	return c.Complete(ctx, ImproveMessages(text, sourceCode), temperature)
}

func TranslateMessages(text string, target domain.Language) []domain.Message {
	name := target.Name
	if domain.NormalizeLanguageCode(target.Code) == "zh" {
		name = simplifiedChinese
	}
	if name == "" {
		name = target.Code
	}
	return []domain.Message{
		{Role: domain.RoleSystem, Content: translateSystemPrompt},
		{Role: domain.RoleUser, Content: "Translate the following text to " + name + ":\n\n" + text},
	}
}

func ImproveMessages(text string, sourceCode string) []domain.Message {
	system := improveSystemPrompt
	if domain.NormalizeLanguageCode(sourceCode) == "zh" {
		system += keepChineseSuffix
	}
	return []domain.Message{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: text},
	}
}

// sdkTemperature keeps an explicit zero on the wire; the SDK drops a plain
// zero as omitempty.
func sdkTemperature(temperature float64) float32 {
	if temperature <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(temperature)
}
