package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.PublicDir != "public" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Extractor.MaxRetries != 3 || cfg.Extractor.Timeout != 10*time.Second || cfg.Extractor.Concurrency != 3 {
		t.Errorf("extractor = %+v", cfg.Extractor)
	}
	if cfg.Video.MaxWait != 300*time.Second || cfg.Video.Interval != 5*time.Second {
		t.Errorf("video wait = %s / %s", cfg.Video.MaxWait, cfg.Video.Interval)
	}
	if cfg.LLM.Provider != "claude" || cfg.LLM.Model == "" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
extractor:
  timeout: 3s
speech:
  voices:
    anchor: abc123
  default_voice: anchor
video:
  max_wait: 60s
  interval: 2s
llm:
  provider: gemini
`)
	t.Setenv(configPathEnv, path)
	t.Setenv("ELEVENLABS_API_KEY", "el-key")
	t.Setenv("NEWSCAST_ADDR", ":7070")
	t.Setenv("NEWSCAST_INBOX_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("env should override file addr, got %q", cfg.Server.Addr)
	}
	if cfg.Extractor.Timeout != 3*time.Second || cfg.Extractor.MaxRetries != 3 {
		t.Errorf("extractor = %+v", cfg.Extractor)
	}
	if cfg.Speech.APIKey != "el-key" {
		t.Errorf("speech api key = %q", cfg.Speech.APIKey)
	}
	if cfg.Speech.Voices["anchor"] != "abc123" || cfg.Speech.Voices["female_voice"] == "" {
		t.Errorf("voices should merge with defaults: %v", cfg.Speech.Voices)
	}
	if cfg.Video.MaxWait != time.Minute || cfg.Video.Interval != 2*time.Second {
		t.Errorf("video = %s / %s", cfg.Video.MaxWait, cfg.Video.Interval)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if !cfg.Inbox.Enabled {
		t.Error("inbox should be enabled from env")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Setenv(configPathEnv, writeConfig(t, "server: [unclosed"))
	if _, err := Load(); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown llm provider",
			mutate:  func(c *Config) { c.LLM.Provider = "openai" },
			wantErr: "llm.provider",
		},
		{
			name:    "interval longer than max wait",
			mutate:  func(c *Config) { c.Video.Interval = time.Hour },
			wantErr: "video.interval",
		},
		{
			name:    "unknown default voice",
			mutate:  func(c *Config) { c.Speech.DefaultVoice = "robot" },
			wantErr: "speech.default_voice",
		},
		{
			name:    "inbox without dirs",
			mutate:  func(c *Config) { c.Inbox.Enabled = true; c.Inbox.WatchDir = "" },
			wantErr: "inbox",
		},
		{
			name:    "empty public dir",
			mutate:  func(c *Config) { c.Server.PublicDir = "" },
			wantErr: "public_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := Default()
	cfg.Extractor.Concurrency = 0
	cfg.LLM.Provider = ""
	cfg.LLM.Model = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Extractor.Concurrency != 3 || cfg.LLM.Provider != "claude" || cfg.LLM.Model == "" {
		t.Errorf("defaults not filled: %+v %+v", cfg.Extractor, cfg.LLM)
	}
}
