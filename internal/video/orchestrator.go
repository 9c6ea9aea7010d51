package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clobrano/newscast/internal/models"
)

type State string

const (
	StateSubmitted State = "submitted"
	StatePolling   State = "polling"
	StateDone      State = "done"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// API is the video provider as seen by the orchestrator.
type API interface {
	Submit(ctx context.Context, text string, opts Options) (string, error)
	Status(ctx context.Context, jobID string) (models.VideoJob, error)
}

type WaitOptions struct {
	MaxWait  time.Duration
	Interval time.Duration
}

// Outcome is where a job ended up. Err is set unless State is StateDone.
type Outcome struct {
	State State
	Job   models.VideoJob
	Polls int
	Err   error
}

func (o Outcome) Success() bool {
	return o.State == StateDone
}

// Orchestrator drives a job from submission to a terminal state.
type Orchestrator struct {
	api        API
	clock      Clock
	wait       WaitOptions
	presenters []Presenter
	drivers    []Driver
	logger     *slog.Logger
}

func NewOrchestrator(api API, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	wait := WaitOptions{MaxWait: cfg.MaxWait, Interval: cfg.Interval}
	if wait.MaxWait <= 0 {
		wait.MaxWait = DefaultMaxWait
	}
	if wait.Interval <= 0 {
		wait.Interval = DefaultInterval
	}
	return &Orchestrator{
		api:        api,
		clock:      realClock{},
		wait:       wait,
		presenters: cfg.Presenters,
		drivers:    cfg.Drivers,
		logger:     logger.With("component", "video"),
	}
}

// WithClock replaces the time source, for tests.
func (o *Orchestrator) WithClock(c Clock) *Orchestrator {
	o.clock = c
	return o
}

func (o *Orchestrator) Presenters() []Presenter { return o.presenters }

func (o *Orchestrator) Drivers() []Driver { return o.drivers }

// Submit starts a job. Provider errors are returned as *ProviderError and are not retried.
func (o *Orchestrator) Submit(ctx context.Context, text string, opts Options) (string, error) {
	id, err := o.api.Submit(ctx, text, opts)
	if err != nil {
		return "", err
	}
	o.logger.Info("video job submitted", "job", id, "audio_driven", opts.AudioURL != "")
	return id, nil
}

func (o *Orchestrator) Poll(ctx context.Context, jobID string) (models.VideoJob, error) {
	return o.api.Status(ctx, jobID)
}

// WaitForCompletion polls until the job is terminal or MaxWait has elapsed.
// Every non-terminal poll is followed by a full Interval sleep.
func (o *Orchestrator) WaitForCompletion(ctx context.Context, jobID string, opts WaitOptions) Outcome {
	if opts.MaxWait <= 0 {
		opts.MaxWait = o.wait.MaxWait
	}
	if opts.Interval <= 0 {
		opts.Interval = o.wait.Interval
	}

	start := o.clock.Now()
	out := Outcome{State: StatePolling, Job: models.VideoJob{ID: jobID}}

	for o.clock.Now().Sub(start) < opts.MaxWait {
		job, err := o.api.Status(ctx, jobID)
		out.Polls++
		if err != nil {
			out.State = StateFailed
			out.Err = fmt.Errorf("status check failed: %w", err)
			o.logger.Error("video status check failed", "job", jobID, "error", err)
			return out
		}
		out.Job = job

		switch job.Status {
		case models.VideoStatusDone:
			if job.ResultURL == "" {
				out.State = StateFailed
				out.Err = ErrMissingResultURL
				o.logger.Error("video job done without result URL", "job", jobID)
				return out
			}
			out.State = StateDone
			o.logger.Info("video job done", "job", jobID, "url", job.ResultURL, "polls", out.Polls)
			return out
		case models.VideoStatusError:
			out.State = StateFailed
			if job.ErrorMessage != "" {
				out.Err = fmt.Errorf("%w: %s", ErrJobFailed, job.ErrorMessage)
			} else {
				out.Err = ErrJobFailed
			}
			o.logger.Error("video job failed", "job", jobID, "error", job.ErrorMessage)
			return out
		}

		o.logger.Debug("video job in progress", "job", jobID, "status", job.Status)
		if err := o.clock.Sleep(ctx, opts.Interval); err != nil {
			out.State = StateFailed
			out.Err = err
			return out
		}
	}

	out.State = StateTimedOut
	out.Err = ErrTimeout
	o.logger.Warn("video job timed out", "job", jobID, "max_wait", opts.MaxWait, "polls", out.Polls)
	return out
}

// SubmitAndWait submits and waits with the configured limits. A failed
// submission is returned without polling.
func (o *Orchestrator) SubmitAndWait(ctx context.Context, text string, opts Options) Outcome {
	id, err := o.Submit(ctx, text, opts)
	if err != nil {
		o.logger.Error("video submission failed", "error", err)
		return Outcome{State: StateFailed, Err: err}
	}
	return o.WaitForCompletion(ctx, id, o.wait)
}

// IsTimeout reports whether err ended a wait by exceeding MaxWait.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
