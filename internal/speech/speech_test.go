package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

type fakeProvider struct {
	payload AudioPayload
	err     error

	calls   int
	voiceID string
	req     ConvertRequest
}

func (f *fakeProvider) Convert(_ context.Context, voiceID string, req ConvertRequest) (AudioPayload, error) {
	f.calls++
	f.voiceID = voiceID
	f.req = req
	return f.payload, f.err
}

func (f *fakeProvider) Voices(context.Context) ([]Voice, error) {
	return []Voice{{VoiceID: "v1", Name: "One"}}, nil
}

type oddPayload struct{}

func (oddPayload) audioPayload() {}

func newTestClient(p Provider) *Client {
	return NewClient(p, DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSynthesize_EmptyTextNeverCallsProvider(t *testing.T) {
	provider := &fakeProvider{payload: BufferedAudio("x")}
	c := newTestClient(provider)

	for _, text := range []string{"", "   ", "\n\t"} {
		result := c.Synthesize(context.Background(), text, "female_voice", Overrides{})
		if result.Success {
			t.Errorf("Synthesize(%q) succeeded, want validation failure", text)
		}
		if result.Error != ErrEmptyText.Error() {
			t.Errorf("Synthesize(%q) error = %q", text, result.Error)
		}
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times, want 0", provider.calls)
	}
}

func TestSynthesize_PayloadVariants(t *testing.T) {
	tests := []struct {
		name    string
		payload AudioPayload
	}{
		{name: "buffer", payload: BufferedAudio("audio-bytes")},
		{name: "stream", payload: StreamAudio{ReadCloser: io.NopCloser(strings.NewReader("audio-bytes"))}},
		{name: "response", payload: ResponseAudio{Response: &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("audio-bytes")),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(&fakeProvider{payload: tt.payload})
			result := c.Synthesize(context.Background(), "こんにちは。", "female_voice", Overrides{})
			if !result.Success {
				t.Fatalf("Synthesize() failed: %s", result.Error)
			}
			if !bytes.Equal(result.Audio, []byte("audio-bytes")) {
				t.Errorf("Audio = %q", result.Audio)
			}
			if result.EstimatedDuration < 1.69 || result.EstimatedDuration > 1.71 {
				t.Errorf("EstimatedDuration = %v, want 1.7", result.EstimatedDuration)
			}
		})
	}
}

func TestSynthesize_UnsupportedPayload(t *testing.T) {
	for _, payload := range []AudioPayload{oddPayload{}, nil, StreamAudio{}} {
		c := newTestClient(&fakeProvider{payload: payload})
		result := c.Synthesize(context.Background(), "hello", "", Overrides{})
		if result.Success {
			t.Errorf("payload %T: want failure", payload)
		}
		if !strings.Contains(result.Error, ErrUnsupportedAudioFormat.Error()) {
			t.Errorf("payload %T: error = %q, want unsupported format", payload, result.Error)
		}
	}
}

func TestSynthesize_ProviderFailureIsResult(t *testing.T) {
	c := newTestClient(&fakeProvider{err: &ProviderError{StatusCode: 401, Body: "bad key"}})
	result := c.Synthesize(context.Background(), "hello", "male_news", Overrides{})
	if result.Success {
		t.Fatal("want failure")
	}
	if !strings.Contains(result.Error, "401") {
		t.Errorf("Error = %q, want provider status", result.Error)
	}
}

func TestSynthesize_VoiceAndSettingsResolution(t *testing.T) {
	stability := 0.9
	boost := false

	tests := []struct {
		name      string
		voiceType string
		overrides Overrides
		wantVoice string
		wantSet   VoiceSettings
	}{
		{
			name:      "known voice type with defaults",
			voiceType: "male_news",
			wantVoice: "AZnzlk1XvdvUeBnXmlld",
			wantSet:   VoiceSettings{Stability: 0.5, SimilarityBoost: 0.75, Style: 0, UseSpeakerBoost: true},
		},
		{
			name:      "unknown voice type falls back to default voice",
			voiceType: "robot",
			wantVoice: "JBFqnCBsd6RMkjVDRZzb",
			wantSet:   VoiceSettings{Stability: 0.5, SimilarityBoost: 0.75, Style: 0, UseSpeakerBoost: true},
		},
		{
			name:      "overrides win",
			voiceType: "female_news",
			overrides: Overrides{Stability: &stability, UseSpeakerBoost: &boost},
			wantVoice: "21m00Tcm4TlvDq8ikWAM",
			wantSet:   VoiceSettings{Stability: 0.9, SimilarityBoost: 0.75, Style: 0, UseSpeakerBoost: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{payload: BufferedAudio("a")}
			c := newTestClient(provider)
			c.Synthesize(context.Background(), "hello", tt.voiceType, tt.overrides)

			if provider.voiceID != tt.wantVoice {
				t.Errorf("voice = %s, want %s", provider.voiceID, tt.wantVoice)
			}
			if provider.req.Settings != tt.wantSet {
				t.Errorf("settings = %+v, want %+v", provider.req.Settings, tt.wantSet)
			}
			if provider.req.ModelID != DefaultModel || provider.req.OutputFormat != DefaultOutputFormat {
				t.Errorf("model/format = %s/%s", provider.req.ModelID, provider.req.OutputFormat)
			}
		})
	}
}

func TestReadAudio_StreamError(t *testing.T) {
	_, err := readAudio(StreamAudio{ReadCloser: io.NopCloser(&failingReader{})})
	if err == nil || errors.Is(err, ErrUnsupportedAudioFormat) {
		t.Errorf("readAudio() error = %v, want read failure", err)
	}
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestPresets(t *testing.T) {
	c := newTestClient(&fakeProvider{})
	presets := c.Presets()
	for _, name := range []string{"news", "casual", "professional"} {
		if _, ok := presets[name]; !ok {
			t.Errorf("missing preset %q", name)
		}
	}
	if presets["casual"].UseSpeakerBoost {
		t.Error("casual preset should not use speaker boost")
	}
}
