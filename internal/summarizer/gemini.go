package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiSummarizer struct {
	client *genai.Client
	model  string
	prompt string
}

func NewGeminiSummarizer(ctx context.Context, apiKey, model, prompt string) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiSummarizer{
		client: client,
		model:  model,
		prompt: prompt,
	}, nil
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, content, customPrompt string) (string, error) {
	fullPrompt, err := buildPrompt(g.prompt, customPrompt, content)
	if err != nil {
		return "", err
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(fullPrompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	// Extract text from response
	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(text.String()), nil
}
