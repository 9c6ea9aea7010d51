package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type ClaudeSummarizer struct {
	client    *anthropic.Client
	model     string
	prompt    string
	maxTokens int64
}

func NewClaudeSummarizer(apiKey, model, prompt string, maxTokens int64, opts ...option.RequestOption) (*ClaudeSummarizer, error) {
	if apiKey != "" {
		opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	client := anthropic.NewClient(opts...)
	return &ClaudeSummarizer{
		client:    &client,
		model:     model,
		prompt:    prompt,
		maxTokens: maxTokens,
	}, nil
}

func (c *ClaudeSummarizer) Summarize(ctx context.Context, content, customPrompt string) (string, error) {
	fullPrompt, err := buildPrompt(c.prompt, customPrompt, content)
	if err != nil {
		return "", err
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fullPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	// Extract text from response
	var result strings.Builder
	for _, block := range message.Content {
		if text := block.AsText().Text; text != "" {
			result.WriteString(text)
		}
	}

	return strings.TrimSpace(result.String()), nil
}
