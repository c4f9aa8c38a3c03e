package correction

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICorrector corrects OCR text through a chat-completion model. It
// is an optional provider; the dictionary corrector remains the default.
type OpenAICorrector struct {
	client   *openai.Client
	model    string
	language string
}

// NewOpenAICorrector builds an LLM-backed corrector for one language.
func NewOpenAICorrector(apiKey, model, language string) (*OpenAICorrector, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai corrector requires an API key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAICorrector{
		client:   openai.NewClient(apiKey),
		model:    model,
		language: language,
	}, nil
}

// Correct asks the model to fix OCR errors without rewriting the text.
func (c *OpenAICorrector) Correct(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	system := fmt.Sprintf(
		"You fix OCR errors in %s text. Correct misspellings and broken words only. "+
			"Do not rephrase, translate, or add content. Reply with the corrected text and nothing else.",
		c.language)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("openai correction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai correction: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
