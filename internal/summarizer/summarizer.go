package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyContent is returned when there is nothing to summarize.
var ErrEmptyContent = errors.New("content is empty")

type Summarizer interface {
	Summarize(ctx context.Context, content, customPrompt string) (string, error)
}

type Config struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	AnthropicKey string `yaml:"anthropic_api_key"`
	GoogleKey    string `yaml:"google_api_key"`
	Prompt       string `yaml:"prompt"`
	MaxTokens    int64  `yaml:"max_tokens"`
}

const DefaultNewsPrompt = `あなたはニュースキャスターの原稿作成者です。以下のニュース記事を、読み上げ用の短い日本語の原稿に要約してください。

- 300文字程度にまとめる
- 最初の一文で最も重要な事実を伝える
- 固有名詞や数字は正確に残す
- 箇条書きや見出しは使わず、そのまま読み上げられる文章にする`

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash"
	default:
		return "claude-3-7-sonnet-latest"
	}
}

// New builds the summarizer for cfg.Provider; anything but "gemini" means Claude.
func New(ctx context.Context, cfg Config) (Summarizer, error) {
	provider := strings.ToLower(cfg.Provider)
	model := cfg.Model
	if model == "" {
		model = DefaultModel(provider)
	}

	switch provider {
	case "gemini":
		return NewGeminiSummarizer(ctx, cfg.GoogleKey, model, cfg.Prompt)
	default:
		return NewClaudeSummarizer(cfg.AnthropicKey, model, cfg.Prompt, cfg.MaxTokens)
	}
}

func buildPrompt(defaultPrompt, customPrompt, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	prompt := customPrompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	if prompt == "" {
		prompt = DefaultNewsPrompt
	}

	return fmt.Sprintf("%s\n\n---\n\nArticle:\n\n%s", prompt, content), nil
}
