package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/clobrano/newscast/internal/models"
)

// Options are per-request choices; empty fields take the configured defaults.
type Options struct {
	PresenterID    string        `json:"presenterId,omitempty"`
	DriverID       string        `json:"driverId,omitempty"`
	BackgroundType string        `json:"backgroundType,omitempty"`
	BackgroundURL  string        `json:"backgroundUrl,omitempty"`
	AudioURL       string        `json:"audioUrl,omitempty"`
	Voice          *VoiceOptions `json:"voice,omitempty"`
}

type VoiceOptions struct {
	Type         string `json:"type,omitempty"`
	Input        string `json:"input,omitempty"`
	ResultFormat string `json:"resultFormat,omitempty"`
	Quality      string `json:"quality,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
}

type talkRequest struct {
	Script      talkScript      `json:"script"`
	Config      RenderConfig    `json:"config"`
	PresenterID string          `json:"presenter_id,omitempty"`
	DriverID    string          `json:"driver_id,omitempty"`
	SourceURL   string          `json:"source_url,omitempty"`
	Background  *talkBackground `json:"background,omitempty"`
}

type talkScript struct {
	Type     string         `json:"type"`
	Input    string         `json:"input"`
	AudioURL string         `json:"audio_url,omitempty"`
	Provider *voiceProvider `json:"provider,omitempty"`
}

type voiceProvider struct {
	Type    string `json:"type"`
	VoiceID string `json:"voice_id"`
}

type talkBackground struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// DID is a client for the D-ID talks API.
type DID struct {
	cfg     Config
	baseURL string
	client  *http.Client
}

var _ API = (*DID)(nil)

func NewDID(cfg Config) *DID {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &DID{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// buildRequest merges caller options over the configured defaults. The
// script is audio driven when an audio URL is given, otherwise the provider
// voices the text itself.
func (d *DID) buildRequest(text string, opts Options) talkRequest {
	req := talkRequest{
		Config:      d.cfg.Render,
		PresenterID: d.cfg.PresenterID,
		DriverID:    opts.DriverID,
		SourceURL:   d.cfg.SourceURL,
	}
	if opts.PresenterID != "" {
		req.PresenterID = opts.PresenterID
	}

	if opts.AudioURL != "" {
		req.Script = talkScript{Type: "audio", Input: text, AudioURL: opts.AudioURL}
	} else {
		voiceID := d.cfg.VoiceID
		provider := d.cfg.VoiceProvider
		if opts.Voice != nil && opts.Voice.Input != "" {
			voiceID = opts.Voice.Input
		}
		if voiceID == "" {
			voiceID = DefaultTextVoice
		}
		if provider == "" {
			provider = "microsoft"
		}
		req.Script = talkScript{Type: "text", Input: text, Provider: &voiceProvider{Type: provider, VoiceID: voiceID}}
	}

	if v := opts.Voice; v != nil {
		if v.ResultFormat != "" {
			req.Config.ResultFormat = v.ResultFormat
		}
		if v.Quality != "" {
			req.Config.Quality = v.Quality
		}
		if v.Resolution != "" {
			req.Config.Resolution = v.Resolution
		}
	}

	if opts.BackgroundURL != "" {
		bgType := opts.BackgroundType
		if bgType == "" {
			bgType = d.cfg.BackgroundType
		}
		req.Background = &talkBackground{Type: bgType, URL: opts.BackgroundURL}
	}

	return req
}

// Submit creates a talk and returns the provider job id.
func (d *DID) Submit(ctx context.Context, text string, opts Options) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	body, err := json.Marshal(d.buildRequest(text, opts))
	if err != nil {
		return "", err
	}

	raw, err := d.do(ctx, http.MethodPost, "/talks", body)
	if err != nil {
		return "", err
	}

	id := gjson.GetBytes(raw, "id").String()
	if id == "" {
		return "", fmt.Errorf("D-ID response has no job id: %s", truncate(string(raw), 200))
	}
	return id, nil
}

// Status fetches the job and normalizes the variably shaped response.
func (d *DID) Status(ctx context.Context, jobID string) (models.VideoJob, error) {
	raw, err := d.do(ctx, http.MethodGet, "/talks/"+url.PathEscape(jobID), nil)
	if err != nil {
		return models.VideoJob{}, err
	}

	doc := gjson.ParseBytes(raw)
	job := models.VideoJob{
		ID:       doc.Get("id").String(),
		Status:   doc.Get("status").String(),
		Duration: resolveDuration(doc),
	}
	if job.ID == "" {
		job.ID = jobID
	}
	if job.Status == models.VideoStatusDone {
		job.ResultURL = resolveResultURL(doc)
	}
	if job.Status == models.VideoStatusError {
		job.ErrorMessage = resolveErrorMessage(doc)
	}
	return job, nil
}

func (d *DID) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if d.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+d.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("D-ID request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read D-ID response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newProviderError(resp.StatusCode, truncate(strings.TrimSpace(string(raw)), 500))
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
