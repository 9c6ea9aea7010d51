package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one inbox request: a URL to turn into a spoken news summary.
type Job struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	FilePath     string    `json:"file_path"`
	URL          string    `json:"url"`
	CustomPrompt string    `json:"custom_prompt,omitempty"`
	VoiceType    string    `json:"voice_type,omitempty"`
	WithVideo    bool      `json:"with_video,omitempty"`
	Status       JobStatus `json:"status"`
	Title        string    `json:"title,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	AudioFile    string    `json:"audio_file,omitempty"`
	VideoFile    string    `json:"video_file,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Retries      int       `json:"retries"`
}

// JobRequest carries what the inbox file asked for.
type JobRequest struct {
	URL       string
	Prompt    string
	VoiceType string
	WithVideo bool
}

func NewJob(filePath string, req JobRequest) *Job {
	now := time.Now()
	// Extract filename without extension
	base := filepath.Base(filePath)
	filename := strings.TrimSuffix(base, filepath.Ext(base))

	return &Job{
		ID:           uuid.NewString(),
		Filename:     filename,
		FilePath:     filePath,
		URL:          req.URL,
		CustomPrompt: req.Prompt,
		VoiceType:    req.VoiceType,
		WithVideo:    req.WithVideo,
		Status:       JobStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
