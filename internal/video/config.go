package video

import "time"

const (
	DefaultBaseURL     = "https://api.d-id.com"
	DefaultPresenterID = "amy-Aq6OmG2joV"
	DefaultSourceURL   = "https://d-id-public-bucket.s3.amazonaws.com/alice.jpg"
	DefaultTextVoice   = "ja-JP-NanamiNeural"
	DefaultMaxWait     = 300 * time.Second
	DefaultInterval    = 5 * time.Second
)

type Presenter struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type Driver struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// RenderConfig is sent as the provider's "config" block.
type RenderConfig struct {
	Fluent       bool    `yaml:"fluent" json:"fluent"`
	PadAudio     float64 `yaml:"pad_audio" json:"pad_audio"`
	Stitch       bool    `yaml:"stitch" json:"stitch"`
	ResultFormat string  `yaml:"result_format" json:"result_format,omitempty"`
	Quality      string  `yaml:"quality" json:"quality,omitempty"`
	Resolution   string  `yaml:"resolution" json:"resolution,omitempty"`
}

type Config struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	SourceURL      string        `yaml:"source_url"`
	PresenterID    string        `yaml:"presenter_id"`
	BackgroundType string        `yaml:"background_type"`
	VoiceProvider  string        `yaml:"voice_provider"`
	VoiceID        string        `yaml:"voice_id"`
	Render         RenderConfig  `yaml:"render"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxWait        time.Duration `yaml:"max_wait"`
	Interval       time.Duration `yaml:"interval"`
	Presenters     []Presenter   `yaml:"presenters"`
	Drivers        []Driver      `yaml:"drivers"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		SourceURL:      DefaultSourceURL,
		PresenterID:    DefaultPresenterID,
		BackgroundType: "color",
		VoiceProvider:  "microsoft",
		VoiceID:        DefaultTextVoice,
		Render: RenderConfig{
			Fluent:       true,
			PadAudio:     0,
			Stitch:       true,
			ResultFormat: "mp4",
			Quality:      "premium",
			Resolution:   "720p",
		},
		Timeout:  30 * time.Second,
		MaxWait:  DefaultMaxWait,
		Interval: DefaultInterval,
		Presenters: []Presenter{
			{ID: "amy-Aq6OmG2joV", Name: "Amy"},
			{ID: "john-doe", Name: "John"},
			{ID: "sarah-jones", Name: "Sarah"},
		},
		Drivers: []Driver{
			{ID: "audio", Name: "Audio Driver"},
			{ID: "video", Name: "Video Driver"},
		},
	}
}
