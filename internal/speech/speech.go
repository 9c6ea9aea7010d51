package speech

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/clobrano/newscast/internal/models"
)

// ErrEmptyText is the validation failure for blank input.
var ErrEmptyText = errors.New("text is required")

type ConvertRequest struct {
	Text         string
	ModelID      string
	OutputFormat string
	Settings     VoiceSettings
}

type Voice struct {
	VoiceID    string            `json:"voice_id"`
	Name       string            `json:"name"`
	Category   string            `json:"category,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
	PreviewURL string            `json:"preview_url,omitempty"`
}

// Provider is a text-to-speech backend.
type Provider interface {
	Convert(ctx context.Context, voiceID string, req ConvertRequest) (AudioPayload, error)
	Voices(ctx context.Context) ([]Voice, error)
}

// Overrides replace individual defaults when non-nil.
type Overrides struct {
	VoiceID         *string  `json:"voiceId,omitempty"`
	ModelID         *string  `json:"modelId,omitempty"`
	OutputFormat    *string  `json:"outputFormat,omitempty"`
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarityBoost,omitempty"`
	Style           *float64 `json:"style,omitempty"`
	UseSpeakerBoost *bool    `json:"useSpeakerBoost,omitempty"`
}

type Client struct {
	provider Provider
	cfg      Config
	logger   *slog.Logger
}

func NewClient(provider Provider, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = defaults.OutputFormat
	}
	if len(cfg.Voices) == 0 {
		cfg.Voices = defaults.Voices
	}
	if cfg.DefaultVoice == "" {
		cfg.DefaultVoice = defaults.DefaultVoice
	}
	if cfg.Presets == nil {
		cfg.Presets = defaults.Presets
	}
	return &Client{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With("component", "speech"),
	}
}

// VoiceID maps a voice type to a provider voice, falling back to the default voice.
func (c *Client) VoiceID(voiceType string) string {
	if id, ok := c.cfg.Voices[voiceType]; ok && id != "" {
		return id
	}
	if id, ok := c.cfg.Voices[c.cfg.DefaultVoice]; ok {
		return id
	}
	return c.cfg.DefaultVoice
}

// Settings applies overrides on top of the configured defaults.
func (c *Client) Settings(o Overrides) VoiceSettings {
	s := c.cfg.Defaults
	if o.Stability != nil {
		s.Stability = *o.Stability
	}
	if o.SimilarityBoost != nil {
		s.SimilarityBoost = *o.SimilarityBoost
	}
	if o.Style != nil {
		s.Style = *o.Style
	}
	if o.UseSpeakerBoost != nil {
		s.UseSpeakerBoost = *o.UseSpeakerBoost
	}
	return s
}

// Synthesize never returns an error: failures land in the result.
func (c *Client) Synthesize(ctx context.Context, text, voiceType string, o Overrides) models.SpeechResult {
	if strings.TrimSpace(text) == "" {
		return models.SpeechResult{Error: ErrEmptyText.Error()}
	}

	voiceID := c.VoiceID(voiceType)
	if o.VoiceID != nil && *o.VoiceID != "" {
		voiceID = *o.VoiceID
	}
	req := ConvertRequest{
		Text:         text,
		ModelID:      c.cfg.Model,
		OutputFormat: c.cfg.OutputFormat,
		Settings:     c.Settings(o),
	}
	if o.ModelID != nil && *o.ModelID != "" {
		req.ModelID = *o.ModelID
	}
	if o.OutputFormat != nil && *o.OutputFormat != "" {
		req.OutputFormat = *o.OutputFormat
	}

	payload, err := c.provider.Convert(ctx, voiceID, req)
	if err != nil {
		c.logger.Error("speech synthesis failed", "voice", voiceID, "error", err)
		return models.SpeechResult{Error: err.Error()}
	}

	audio, err := readAudio(payload)
	if err != nil {
		c.logger.Error("audio conversion failed", "voice", voiceID, "error", err)
		return models.SpeechResult{Error: err.Error()}
	}

	duration := EstimateDuration(text)
	c.logger.Info("speech synthesized", "voice", voiceID, "model", req.ModelID, "bytes", len(audio), "duration", duration)

	return models.SpeechResult{
		Audio:             audio,
		EstimatedDuration: duration,
		Success:           true,
	}
}

func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	return c.provider.Voices(ctx)
}

func (c *Client) Presets() map[string]VoiceSettings {
	return c.cfg.Presets
}
