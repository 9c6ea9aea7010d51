package processor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/clobrano/newscast/internal/config"
	"github.com/clobrano/newscast/internal/extractor"
	"github.com/clobrano/newscast/internal/metrics"
	"github.com/clobrano/newscast/internal/models"
	"github.com/clobrano/newscast/internal/queue"
	"github.com/clobrano/newscast/internal/speech"
	"github.com/clobrano/newscast/internal/video"
)

type fakeExtractor struct {
	article models.ExtractedArticle
	err     error
}

func (f *fakeExtractor) ExtractFromURL(ctx context.Context, rawURL string, opts extractor.Options) (models.ExtractedArticle, error) {
	if f.err != nil {
		return models.ExtractedArticle{}, f.err
	}
	a := f.article
	a.URL = rawURL
	return a, nil
}

type fakeSummarizer struct {
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, content, customPrompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "要約: " + content, nil
}

type fakeSpeech struct{}

func (fakeSpeech) Synthesize(ctx context.Context, text, voiceType string, o speech.Overrides) models.SpeechResult {
	return models.SpeechResult{Audio: []byte("ID3audio"), EstimatedDuration: 1.5, Success: true}
}

type fakeVideo struct {
	outcome video.Outcome
}

func (f fakeVideo) SubmitAndWait(ctx context.Context, text string, opts video.Options) video.Outcome {
	return f.outcome
}

type fakeMedia struct {
	audio []string
	video []string
}

func (f *fakeMedia) StoreAudio(ctx context.Context, data []byte, summary, voiceType string) (models.SavedMediaFile, error) {
	name := "audio-" + voiceType + ".mp3"
	f.audio = append(f.audio, name)
	return models.SavedMediaFile{Filename: name, PublicURL: "/generated-audio/" + name, Size: int64(len(data))}, nil
}

func (f *fakeMedia) SaveVideo(ctx context.Context, videoURL, summary, character, quality string) (models.SavedMediaFile, error) {
	f.video = append(f.video, videoURL)
	return models.SavedMediaFile{Filename: "v.mp4", PublicURL: "/generated-videos/v.mp4", Size: 2048}, nil
}

type fixture struct {
	proc    *Processor
	queue   *queue.Queue
	sum     *fakeSummarizer
	media   *fakeMedia
	metrics *metrics.Metrics
	inbox   string
	output  string
}

func newFixture(t *testing.T, ext *fakeExtractor, vid VideoMaker) *fixture {
	t.Helper()
	q, err := queue.New("")
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		queue:   q,
		sum:     &fakeSummarizer{},
		media:   &fakeMedia{},
		metrics: metrics.New(),
		inbox:   t.TempDir(),
		output:  t.TempDir(),
	}
	f.proc = New(config.InboxConfig{OutputDir: f.output}, q, Deps{
		Extractor:  ext,
		Summarizer: f.sum,
		Speech:     fakeSpeech{},
		Video:      vid,
		Media:      f.media,
		Metrics:    f.metrics,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	f.proc.backoff = func(int) time.Duration { return 0 }
	t.Cleanup(f.proc.Stop)
	return f
}

// enqueue drops an inbox file and returns its dequeued job.
func (f *fixture) enqueue(t *testing.T, name string, req models.JobRequest) *models.Job {
	t.Helper()
	path := filepath.Join(f.inbox, name)
	if err := os.WriteFile(path, []byte(req.URL), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := f.queue.Enqueue(models.NewJob(path, req)); err != nil {
		t.Fatal(err)
	}
	return f.queue.Dequeue()
}

func article() *fakeExtractor {
	return &fakeExtractor{article: models.ExtractedArticle{
		Title:       "新しい交通計画",
		ContentText: "東京都は本日新しい交通計画を発表しました。",
		SiteName:    "Example News",
		ReadingTime: 1,
	}}
}

func TestProcessJob_Success(t *testing.T) {
	vid := fakeVideo{outcome: video.Outcome{
		State: video.StateDone,
		Job:   models.VideoJob{ID: "tlk_1", Status: models.VideoStatusDone, ResultURL: "https://cdn.example.com/v.mp4"},
		Polls: 3,
	}}
	f := newFixture(t, article(), vid)
	job := f.enqueue(t, "story.url", models.JobRequest{
		URL:       "https://example.com/news/1",
		VoiceType: "female_news",
		WithVideo: true,
	})

	f.proc.processJob(job)

	out, err := os.ReadFile(filepath.Join(f.output, "story.md"))
	if err != nil {
		t.Fatalf("summary file not written: %v", err)
	}
	for _, want := range []string{
		"# 新しい交通計画",
		"**URL:** https://example.com/news/1",
		"**Source:** Example News",
		"**Audio:** /generated-audio/audio-female_news.mp3",
		"**Video:** /generated-videos/v.mp4",
		"要約: 東京都は本日新しい交通計画を発表しました。",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("summary file missing %q:\n%s", want, out)
		}
	}

	if _, err := os.Stat(job.FilePath); !os.IsNotExist(err) {
		t.Error("inbox file should be removed after completion")
	}
	if f.queue.Len() != 0 {
		t.Errorf("queue length = %d, want 0", f.queue.Len())
	}
	if len(f.media.video) != 1 || f.media.video[0] != "https://cdn.example.com/v.mp4" {
		t.Errorf("saved videos = %v", f.media.video)
	}
	if got := testutil.ToFloat64(f.metrics.PipelineJobs.WithLabelValues("completed")); got != 1 {
		t.Errorf("completed jobs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(f.metrics.VideoPolls); got != 3 {
		t.Errorf("video polls = %v, want 3", got)
	}
}

func TestProcessJob_VideoFailureKeepsAudio(t *testing.T) {
	vid := fakeVideo{outcome: video.Outcome{State: video.StateTimedOut, Polls: 60, Err: video.ErrTimeout}}
	f := newFixture(t, article(), vid)
	job := f.enqueue(t, "story.url", models.JobRequest{URL: "https://example.com/news/2", WithVideo: true})

	f.proc.processJob(job)

	out, err := os.ReadFile(filepath.Join(f.output, "story.md"))
	if err != nil {
		t.Fatalf("summary file not written: %v", err)
	}
	if !strings.Contains(string(out), "**Video:** unavailable (timed_out)") {
		t.Errorf("summary should note the missing video:\n%s", out)
	}
	if len(f.media.audio) != 1 || len(f.media.video) != 0 {
		t.Errorf("audio = %v, video = %v", f.media.audio, f.media.video)
	}
	if job.Status != models.JobStatusCompleted {
		t.Errorf("status = %s, want completed", job.Status)
	}
}

func TestProcessJob_QueueReadableWhileRunning(t *testing.T) {
	f := newFixture(t, article(), nil)
	job := f.enqueue(t, "story.url", models.JobRequest{URL: "https://example.com/news/3"})
	f.enqueue(t, "other.url", models.JobRequest{URL: "https://example.com/news/4"})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				for _, j := range f.queue.List() {
					_ = j.Title + j.Summary + j.AudioFile + string(j.Status)
				}
				f.queue.Get(job.ID)
			}
		}
	}()

	f.proc.processJob(job)
	close(stop)
	wg.Wait()

	if _, ok := f.queue.Get(job.ID); ok {
		t.Error("completed job should leave the queue")
	}
	if f.queue.Len() != 1 {
		t.Errorf("Len() = %d, want the other job only", f.queue.Len())
	}
}

func TestProcessJob_PermanentFailure(t *testing.T) {
	f := newFixture(t, &fakeExtractor{err: extractor.ErrNoContent}, nil)
	job := f.enqueue(t, "empty.url", models.JobRequest{URL: "https://example.com/empty"})

	f.proc.processJob(job)

	got, ok := f.queue.Get(job.ID)
	if !ok {
		t.Fatal("failed job should stay in the queue")
	}
	if got.Status != models.JobStatusFailed || got.Retries != 0 {
		t.Errorf("job = %s after %d retries, want failed without retry", got.Status, got.Retries)
	}
	if !strings.Contains(got.Error, "no article content") {
		t.Errorf("error = %q", got.Error)
	}
	if f.sum.calls != 0 {
		t.Error("summarizer should not run after a failed extraction")
	}
	if _, err := os.Stat(job.FilePath); err != nil {
		t.Error("inbox file of a failed job should be kept")
	}
}

func TestProcessJob_TransientFailureRetries(t *testing.T) {
	f := newFixture(t, article(), nil)
	f.sum.err = errors.New("overloaded")
	job := f.enqueue(t, "busy.url", models.JobRequest{URL: "https://example.com/busy"})

	f.proc.processJob(job)

	got, _ := f.queue.Get(job.ID)
	if got.Status != models.JobStatusPending || got.Retries != 1 {
		t.Fatalf("job = %s after %d retries, want pending after 1", got.Status, got.Retries)
	}

	job.Retries = maxRetries
	job.Status = models.JobStatusProcessing
	f.proc.processJob(job)

	got, _ = f.queue.Get(job.ID)
	if got.Status != models.JobStatusFailed {
		t.Errorf("status after exhausting retries = %s, want failed", got.Status)
	}
}

func TestProcessJob_SkipsExistingOutput(t *testing.T) {
	f := newFixture(t, article(), nil)
	job := f.enqueue(t, "done.url", models.JobRequest{URL: "https://example.com/done"})
	os.WriteFile(filepath.Join(f.output, "done.md"), []byte("old"), 0644)

	f.proc.processJob(job)

	if f.sum.calls != 0 {
		t.Error("existing output should skip the pipeline")
	}
	if job.Status != models.JobStatusCompleted || f.queue.Len() != 0 {
		t.Errorf("status = %s, queue = %d", job.Status, f.queue.Len())
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid url", extractor.ErrInvalidURL, true},
		{"not found", &extractor.ExtractionError{Attempts: 3, Err: &extractor.HTTPError{StatusCode: 404}}, true},
		{"rate limited", &extractor.ExtractionError{Attempts: 3, Err: &extractor.HTTPError{StatusCode: 429}}, false},
		{"server error", &extractor.ExtractionError{Attempts: 3, Err: &extractor.HTTPError{StatusCode: 503}}, false},
		{"network", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPermanent(tt.err); got != tt.want {
				t.Errorf("isPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}
