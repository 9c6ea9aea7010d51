package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clobrano/newscast/internal/config"
	"github.com/clobrano/newscast/internal/extractor"
	"github.com/clobrano/newscast/internal/metrics"
	"github.com/clobrano/newscast/internal/models"
	"github.com/clobrano/newscast/internal/notifier"
	"github.com/clobrano/newscast/internal/queue"
	"github.com/clobrano/newscast/internal/speech"
	"github.com/clobrano/newscast/internal/summarizer"
	"github.com/clobrano/newscast/internal/video"
)

// ErrOutputExists is returned when attempting to write a summary that already exists
var ErrOutputExists = errors.New("output file already exists")

const (
	maxRetries  = 3
	baseBackoff = 5 * time.Second
	jobTimeout  = 15 * time.Minute

	videoCharacter = "anchor"
	videoQuality   = "standard"
)

type ArticleExtractor interface {
	ExtractFromURL(ctx context.Context, rawURL string, opts extractor.Options) (models.ExtractedArticle, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceType string, o speech.Overrides) models.SpeechResult
}

type VideoMaker interface {
	SubmitAndWait(ctx context.Context, text string, opts video.Options) video.Outcome
}

type MediaSaver interface {
	StoreAudio(ctx context.Context, data []byte, summary, voiceType string) (models.SavedMediaFile, error)
	SaveVideo(ctx context.Context, videoURL, summary, character, quality string) (models.SavedMediaFile, error)
}

// Deps are the pipeline stages. Video, Notifier and Metrics may be nil.
type Deps struct {
	Extractor  ArticleExtractor
	Summarizer summarizer.Summarizer
	Speech     Synthesizer
	Video      VideoMaker
	Media      MediaSaver
	Notifier   *notifier.Notifier
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

type Processor struct {
	outputDir  string
	queue      *queue.Queue
	extractor  ArticleExtractor
	summarizer summarizer.Summarizer
	speech     Synthesizer
	video      VideoMaker
	media      MediaSaver
	notifier   *notifier.Notifier
	metrics    *metrics.Metrics
	logger     *slog.Logger

	backoff func(retries int) time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(cfg config.InboxConfig, q *queue.Queue, deps Deps) *Processor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		outputDir:  cfg.OutputDir,
		queue:      q,
		extractor:  deps.Extractor,
		summarizer: deps.Summarizer,
		speech:     deps.Speech,
		video:      deps.Video,
		media:      deps.Media,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     logger.With("component", "processor"),
		backoff: func(retries int) time.Duration {
			return time.Duration(retries) * baseBackoff
		},
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (p *Processor) Start() {
	go p.run()
}

// Stop ends the loop and cancels the job in flight.
func (p *Processor) Stop() {
	close(p.done)
	p.cancel()
}

func (p *Processor) run() {
	for {
		select {
		case <-p.done:
			return
		case <-p.queue.Wait():
			p.processQueue()
		}
	}
}

func (p *Processor) processQueue() {
	for {
		job := p.queue.Dequeue()
		if job == nil {
			return
		}

		select {
		case <-p.done:
			return
		default:
			p.processJob(job)
		}
	}
}

func (p *Processor) processJob(job *models.Job) {
	logger := p.logger.With("job", job.ID, "file", job.Filename)
	logger.Info("processing job", "url", job.URL, "attempt", job.Retries+1)

	ctx, cancel := context.WithTimeout(p.ctx, jobTimeout)
	defer cancel()

	if _, err := extractor.ValidateURL(job.URL); err != nil {
		p.failJob(job, err)
		return
	}

	exists, err := p.outputExists(job)
	if err != nil {
		p.failJob(job, err)
		return
	}
	if exists {
		p.skipJob(ctx, job, "output file already exists")
		return
	}

	// Start notification only on the first attempt
	if job.Retries == 0 {
		if err := p.notifier.SendStart(ctx, job); err != nil {
			logger.Warn("failed to send start notification", "error", err)
		}
	}

	article, err := p.extractor.ExtractFromURL(ctx, job.URL, extractor.Options{})
	p.count(func(m *metrics.Metrics) { m.Extractions.WithLabelValues(metrics.Result(err)).Inc() })
	if err != nil {
		p.handleError(job, fmt.Errorf("extract: %w", err))
		return
	}
	job.Title = article.Title

	summary, err := p.summarizer.Summarize(ctx, article.ContentText, job.CustomPrompt)
	p.count(func(m *metrics.Metrics) { m.Summaries.WithLabelValues(metrics.Result(err)).Inc() })
	if err != nil {
		p.handleError(job, fmt.Errorf("summarize: %w", err))
		return
	}
	job.Summary = summary

	result := p.speech.Synthesize(ctx, summary, job.VoiceType, speech.Overrides{})
	p.count(func(m *metrics.Metrics) {
		if result.Success {
			m.SpeechRequests.WithLabelValues("success").Inc()
		} else {
			m.SpeechRequests.WithLabelValues("error").Inc()
		}
	})
	if !result.Success {
		p.handleError(job, fmt.Errorf("speech: %s", result.Error))
		return
	}

	audio, err := p.media.StoreAudio(ctx, result.Audio, summary, job.VoiceType)
	if err != nil {
		p.handleError(job, fmt.Errorf("save audio: %w", err))
		return
	}
	p.count(func(m *metrics.Metrics) { m.MediaSavedBytes.WithLabelValues(string(models.MediaAudio)).Add(float64(audio.Size)) })
	job.AudioFile = audio.PublicURL

	var videoNote string
	if job.WithVideo && p.video != nil {
		job.VideoFile, videoNote = p.makeVideo(ctx, job, logger)
	}

	if err := p.saveSummary(job, article, videoNote); err != nil {
		if errors.Is(err, ErrOutputExists) {
			p.skipJob(ctx, job, "output file created by concurrent worker")
			return
		}
		p.failJob(job, fmt.Errorf("failed to save summary: %w", err))
		return
	}

	if err := p.notifier.SendSuccess(ctx, job); err != nil {
		logger.Warn("failed to send success notification", "error", err)
	}

	p.completeJob(job)
}

// makeVideo never fails the job: the audio is already saved, so a missing
// video is reported in the summary file instead.
func (p *Processor) makeVideo(ctx context.Context, job *models.Job, logger *slog.Logger) (string, string) {
	outcome := p.video.SubmitAndWait(ctx, job.Summary, video.Options{})
	p.count(func(m *metrics.Metrics) { m.ObserveVideo(string(outcome.State), outcome.Polls) })
	if !outcome.Success() {
		logger.Warn("video generation failed", "state", outcome.State, "polls", outcome.Polls, "error", outcome.Err)
		return "", fmt.Sprintf("unavailable (%s)", outcome.State)
	}

	saved, err := p.media.SaveVideo(ctx, outcome.Job.ResultURL, job.Summary, videoCharacter, videoQuality)
	if err != nil {
		logger.Warn("video download failed", "url", outcome.Job.ResultURL, "error", err)
		return "", "unavailable (download failed)"
	}
	p.count(func(m *metrics.Metrics) { m.MediaSavedBytes.WithLabelValues(string(models.MediaVideo)).Add(float64(saved.Size)) })
	return saved.PublicURL, ""
}

func (p *Processor) count(f func(*metrics.Metrics)) {
	if p.metrics != nil {
		f(p.metrics)
	}
}

// isPermanent reports errors that another attempt cannot fix.
func isPermanent(err error) bool {
	if errors.Is(err, extractor.ErrInvalidURL) ||
		errors.Is(err, extractor.ErrNoContent) ||
		errors.Is(err, summarizer.ErrEmptyContent) {
		return true
	}
	var httpErr *extractor.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && httpErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

func (p *Processor) handleError(job *models.Job, err error) {
	if !isPermanent(err) && job.Retries < maxRetries {
		p.retryJob(job, err)
		return
	}
	p.failJob(job, err)
}

func (p *Processor) retryJob(job *models.Job, err error) {
	job.Retries++
	job.Status = models.JobStatusPending
	job.Error = err.Error()
	job.UpdatedAt = time.Now()

	backoff := p.backoff(job.Retries)
	p.logger.Warn("job failed, retrying",
		"job", job.ID, "attempt", job.Retries, "max", maxRetries, "backoff", backoff, "error", err)

	p.queue.Update(job)

	go func() {
		select {
		case <-time.After(backoff):
			p.queue.Notify()
		case <-p.done:
		}
	}()
}

func (p *Processor) failJob(job *models.Job, err error) {
	job.Status = models.JobStatusFailed
	job.Error = err.Error()
	job.UpdatedAt = time.Now()

	p.logger.Error("job failed permanently", "job", job.ID, "file", job.Filename, "error", err)
	p.count(func(m *metrics.Metrics) { m.PipelineJobs.WithLabelValues(string(models.JobStatusFailed)).Inc() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if notifyErr := p.notifier.SendFailure(ctx, job); notifyErr != nil {
		p.logger.Warn("failed to send failure notification", "job", job.ID, "error", notifyErr)
	}

	p.queue.Update(job)
}

func (p *Processor) skipJob(ctx context.Context, job *models.Job, reason string) {
	p.logger.Info("skipping job", "job", job.ID, "file", job.Filename, "reason", reason)
	if err := p.notifier.SendSkipped(ctx, job); err != nil {
		p.logger.Warn("failed to send skipped notification", "job", job.ID, "error", err)
	}
	p.completeJob(job)
}

func (p *Processor) completeJob(job *models.Job) {
	job.Status = models.JobStatusCompleted
	job.UpdatedAt = time.Now()

	p.logger.Info("job completed", "job", job.ID, "file", job.Filename, "audio", job.AudioFile, "video", job.VideoFile)
	p.count(func(m *metrics.Metrics) { m.PipelineJobs.WithLabelValues(string(models.JobStatusCompleted)).Inc() })

	if job.FilePath != "" {
		os.Remove(job.FilePath)
	}

	p.queue.Remove(job.ID)
}

func (p *Processor) getOutputPath(job *models.Job) string {
	baseName := job.ID
	if job.FilePath != "" {
		baseName = filepath.Base(job.FilePath)
		baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	}
	return filepath.Join(p.outputDir, baseName+".md")
}

func (p *Processor) outputExists(job *models.Job) (bool, error) {
	_, err := os.Stat(p.getOutputPath(job))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check output file: %w", err)
}

func (p *Processor) saveSummary(job *models.Job, article models.ExtractedArticle, videoNote string) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", article.Title)
	fmt.Fprintf(&b, "**URL:** %s\n", job.URL)
	if article.SiteName != "" {
		fmt.Fprintf(&b, "**Source:** %s\n", article.SiteName)
	}
	fmt.Fprintf(&b, "**Reading time:** %d min\n", article.ReadingTime)
	fmt.Fprintf(&b, "**Audio:** %s\n", job.AudioFile)
	switch {
	case job.VideoFile != "":
		fmt.Fprintf(&b, "**Video:** %s\n", job.VideoFile)
	case videoNote != "":
		fmt.Fprintf(&b, "**Video:** %s\n", videoNote)
	}
	fmt.Fprintf(&b, "**Generated:** %s\n\n---\n\n%s\n", time.Now().Format(time.RFC3339), job.Summary)

	// O_EXCL: a concurrent worker may have written the same output
	f, err := os.OpenFile(p.getOutputPath(job), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return ErrOutputExists
		}
		return err
	}
	defer f.Close()

	_, err = f.WriteString(b.String())
	return err
}
