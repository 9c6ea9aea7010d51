package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/clobrano/newscast/internal/extractor"
	"github.com/clobrano/newscast/internal/logging"
	"github.com/clobrano/newscast/internal/speech"
	"github.com/clobrano/newscast/internal/summarizer"
	"github.com/clobrano/newscast/internal/video"
)

const configPathEnv = "NEWSCAST_CONFIG"

type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Logging   logging.Config    `yaml:"logging"`
	Extractor extractor.Config  `yaml:"extractor"`
	Speech    speech.Config     `yaml:"speech"`
	Video     video.Config      `yaml:"video"`
	LLM       summarizer.Config `yaml:"llm"`
	Inbox     InboxConfig       `yaml:"inbox"`
	Notify    NotifyConfig      `yaml:"notify"`
	Catalog   CatalogConfig     `yaml:"catalog"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	PublicDir       string        `yaml:"public_dir"`
	JWTSecret       string        `yaml:"jwt_secret"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// InboxConfig drives the file-drop pipeline.
type InboxConfig struct {
	Enabled   bool   `yaml:"enabled"`
	WatchDir  string `yaml:"watch_dir"`
	OutputDir string `yaml:"output_dir"`
	VoiceType string `yaml:"voice_type"`
	WithVideo bool   `yaml:"with_video"`
}

type NotifyConfig struct {
	NtfyServer string `yaml:"ntfy_server"`
	NtfyTopic  string `yaml:"ntfy_topic"`
}

type CatalogConfig struct {
	DSN string `yaml:"dsn"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			PublicDir:       "public",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
		},
		Extractor: extractor.DefaultConfig(),
		Speech:    speech.DefaultConfig(),
		Video:     video.DefaultConfig(),
		LLM: summarizer.Config{
			Provider: "claude",
		},
		Inbox: InboxConfig{
			WatchDir:  "/data/inbox",
			OutputDir: "/data/output",
			VoiceType: speech.DefaultVoiceType,
		},
		Notify: NotifyConfig{
			NtfyServer: "https://ntfy.sh",
		},
	}
}

// Load reads .env (if present), then the YAML file named by NEWSCAST_CONFIG
// (default config.yaml, optional), then environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("cannot read .env", "error", err)
	}

	cfg := Default()

	path := getEnv(configPathEnv, "config.yaml")
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Addr = getEnv("NEWSCAST_ADDR", c.Server.Addr)
	c.Server.PublicDir = getEnv("NEWSCAST_PUBLIC_DIR", c.Server.PublicDir)
	c.Server.JWTSecret = getEnv("NEWSCAST_JWT_SECRET", c.Server.JWTSecret)

	c.Logging.Level = getEnv("NEWSCAST_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("NEWSCAST_LOG_FORMAT", c.Logging.Format)
	c.Logging.SentryDSN = getEnv("SENTRY_DSN", c.Logging.SentryDSN)

	c.Speech.APIKey = getEnv("ELEVENLABS_API_KEY", c.Speech.APIKey)
	c.Video.APIKey = getEnv("DID_API_KEY", c.Video.APIKey)
	c.Video.SourceURL = getEnv("DID_SOURCE_URL", c.Video.SourceURL)

	c.LLM.Provider = strings.ToLower(getEnv("NEWSCAST_LLM_PROVIDER", c.LLM.Provider))
	c.LLM.Model = getEnv("NEWSCAST_LLM_MODEL", c.LLM.Model)
	c.LLM.AnthropicKey = getEnv("ANTHROPIC_API_KEY", c.LLM.AnthropicKey)
	c.LLM.GoogleKey = getEnv("GOOGLE_API_KEY", c.LLM.GoogleKey)

	c.Inbox.Enabled = getEnvBool("NEWSCAST_INBOX_ENABLED", c.Inbox.Enabled)
	c.Inbox.WatchDir = getEnv("NEWSCAST_WATCH_DIR", c.Inbox.WatchDir)
	c.Inbox.OutputDir = getEnv("NEWSCAST_OUTPUT_DIR", c.Inbox.OutputDir)

	c.Notify.NtfyTopic = getEnv("NEWSCAST_NTFY_TOPIC", c.Notify.NtfyTopic)
	c.Catalog.DSN = getEnv("DATABASE_DSN", c.Catalog.DSN)
}

// Validate rejects impossible values and fills what was left empty.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.PublicDir == "" {
		return errors.New("server.public_dir is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Extractor.MaxRetries < 0 {
		return fmt.Errorf("extractor.max_retries must be >= 0, got %d", c.Extractor.MaxRetries)
	}
	if c.Extractor.Concurrency <= 0 {
		c.Extractor.Concurrency = extractor.DefaultConcurrency
	}

	if c.Video.Interval < 0 || c.Video.MaxWait < 0 {
		return errors.New("video.interval and video.max_wait must not be negative")
	}
	if c.Video.Interval > 0 && c.Video.MaxWait > 0 && c.Video.Interval > c.Video.MaxWait {
		return fmt.Errorf("video.interval (%s) is longer than video.max_wait (%s)", c.Video.Interval, c.Video.MaxWait)
	}

	switch c.LLM.Provider {
	case "":
		c.LLM.Provider = "claude"
	case "claude", "gemini":
	default:
		return fmt.Errorf("llm.provider must be claude or gemini, got %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		c.LLM.Model = summarizer.DefaultModel(c.LLM.Provider)
	}

	if _, ok := c.Speech.Voices[c.Speech.DefaultVoice]; !ok {
		return fmt.Errorf("speech.default_voice %q is not in speech.voices", c.Speech.DefaultVoice)
	}

	if c.Inbox.Enabled && (c.Inbox.WatchDir == "" || c.Inbox.OutputDir == "") {
		return errors.New("inbox.watch_dir and inbox.output_dir are required when the inbox is enabled")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		slog.Warn("ignoring non-boolean env value", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return b
}
