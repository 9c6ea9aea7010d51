package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrMissingAPIKey is returned when no ElevenLabs key is configured.
var ErrMissingAPIKey = errors.New("ELEVENLABS_API_KEY is not set")

// ProviderError is a non-2xx answer from the speech provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("elevenlabs returned status %d: %s", e.StatusCode, e.Body)
}

// ElevenLabs talks to the ElevenLabs REST API.
type ElevenLabs struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ Provider = (*ElevenLabs)(nil)

func NewElevenLabs(cfg Config) *ElevenLabs {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &ElevenLabs{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type convertBody struct {
	Text          string            `json:"text"`
	ModelID       string            `json:"model_id"`
	VoiceSettings voiceSettingsBody `json:"voice_settings"`
}

type voiceSettingsBody struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Convert requests synthesis and hands back the unread response.
func (e *ElevenLabs) Convert(ctx context.Context, voiceID string, req ConvertRequest) (AudioPayload, error) {
	if e.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(convertBody{
		Text:    req.Text,
		ModelID: req.ModelID,
		VoiceSettings: voiceSettingsBody{
			Stability:       req.Settings.Stability,
			SimilarityBoost: req.Settings.SimilarityBoost,
			Style:           req.Settings.Style,
			UseSpeakerBoost: req.Settings.UseSpeakerBoost,
		},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		e.baseURL, url.PathEscape(voiceID), url.QueryEscape(req.OutputFormat))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("xi-api-key", e.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: readSnippet(resp.Body)}
	}

	return ResponseAudio{Response: resp}, nil
}

// Voices lists the voice catalog of the account.
func (e *ElevenLabs) Voices(ctx context.Context) ([]Voice, error) {
	if e.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: readSnippet(resp.Body)}
	}

	var out struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode voices: %w", err)
	}
	return out.Voices, nil
}

func readSnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 2048))
	return strings.TrimSpace(string(data))
}
