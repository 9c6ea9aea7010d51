package speech

import "time"

const (
	DefaultBaseURL      = "https://api.elevenlabs.io"
	DefaultModel        = "eleven_multilingual_v2"
	DefaultOutputFormat = "mp3_44100_128"
	DefaultVoiceType    = "female_voice"
)

type VoiceSettings struct {
	Stability       float64 `yaml:"stability" json:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost" json:"similarityBoost"`
	Style           float64 `yaml:"style" json:"style"`
	UseSpeakerBoost bool    `yaml:"use_speaker_boost" json:"useSpeakerBoost"`
}

type Config struct {
	APIKey       string                   `yaml:"api_key"`
	BaseURL      string                   `yaml:"base_url"`
	Model        string                   `yaml:"model"`
	OutputFormat string                   `yaml:"output_format"`
	Timeout      time.Duration            `yaml:"timeout"`
	DefaultVoice string                   `yaml:"default_voice"`
	Voices       map[string]string        `yaml:"voices"`
	Defaults     VoiceSettings            `yaml:"defaults"`
	Presets      map[string]VoiceSettings `yaml:"presets"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Model:        DefaultModel,
		OutputFormat: DefaultOutputFormat,
		Timeout:      60 * time.Second,
		DefaultVoice: DefaultVoiceType,
		Voices: map[string]string{
			"female_voice":    "JBFqnCBsd6RMkjVDRZzb",
			"male_voice":      "pNInz6obpgDQGcFmaJgB",
			"female_news":     "21m00Tcm4TlvDq8ikWAM",
			"male_news":       "AZnzlk1XvdvUeBnXmlld",
			"female_japanese": "JBFqnCBsd6RMkjVDRZzb",
			"male_japanese":   "pNInz6obpgDQGcFmaJgB",
		},
		Defaults: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
		Presets: map[string]VoiceSettings{
			"news":         {Stability: 0.7, SimilarityBoost: 0.8, Style: 0.0, UseSpeakerBoost: true},
			"casual":       {Stability: 0.3, SimilarityBoost: 0.6, Style: 0.3, UseSpeakerBoost: false},
			"professional": {Stability: 0.8, SimilarityBoost: 0.9, Style: 0.0, UseSpeakerBoost: true},
		},
	}
}
