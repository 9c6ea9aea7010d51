package watcher

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/clobrano/newscast/internal/extractor"
	"github.com/clobrano/newscast/internal/models"
	"github.com/clobrano/newscast/internal/queue"
)

// Defaults fill the request fields an inbox file leaves out.
type Defaults struct {
	VoiceType string
	WithVideo bool
}

type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	watchDir     string
	queue        *queue.Queue
	defaults     Defaults
	logger       *slog.Logger
	debounceTime time.Duration
	pending      map[string]time.Time
	mu           sync.Mutex
	done         chan struct{}
}

func New(watchDir string, q *queue.Queue, defaults Defaults, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		fsWatcher:    fsw,
		watchDir:     watchDir,
		queue:        q,
		defaults:     defaults,
		logger:       logger.With("component", "watcher"),
		debounceTime: 500 * time.Millisecond,
		pending:      make(map[string]time.Time),
		done:         make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.watchDir); err != nil {
		return err
	}

	if err := w.processExisting(); err != nil {
		w.logger.Warn("error processing existing files", "error", err)
	}

	go w.run()
	go w.debounceLoop()

	return nil
}

func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) processExisting() error {
	entries, err := os.ReadDir(w.watchDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isValidFile(entry.Name()) {
			w.processFile(filepath.Join(w.watchDir, entry.Name()))
		}
	}

	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				if isValidFile(filepath.Base(event.Name)) {
					w.scheduleProcess(event.Name)
				}
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleProcess(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now().Add(w.debounceTime)
}

func (w *Watcher) debounceLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.mu.Lock()
			now := time.Now()
			var toProcess []string
			for path, deadline := range w.pending {
				if now.After(deadline) {
					toProcess = append(toProcess, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range toProcess {
				w.processFile(path)
			}
		}
	}
}

func (w *Watcher) processFile(path string) {
	req, err := parseInputFile(path)
	if err != nil {
		w.logger.Error("cannot parse inbox file", "file", path, "error", err)
		return
	}
	if req.VoiceType == "" {
		req.VoiceType = w.defaults.VoiceType
	}
	if !req.WithVideo {
		req.WithVideo = w.defaults.WithVideo
	}

	job := models.NewJob(path, req)
	added, err := w.queue.Enqueue(job)
	if err != nil {
		w.logger.Error("cannot enqueue job", "file", path, "error", err)
		return
	}
	if !added {
		w.logger.Debug("file already queued", "file", path)
		return
	}

	w.logger.Info("job queued", "job", job.ID, "url", req.URL)
}

func isValidFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".newscast" || ext == ".url" || ext == ".txt"
}

type inputFile struct {
	URL    string `yaml:"url"`
	Prompt string `yaml:"prompt"`
	Voice  string `yaml:"voice"`
	Video  bool   `yaml:"video"`
}

// parseInputFile accepts either a bare URL on the first non-empty line or
// YAML front matter with url, prompt, voice and video keys.
func parseInputFile(path string) (models.JobRequest, error) {
	file, err := os.Open(path)
	if err != nil {
		return models.JobRequest{}, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return models.JobRequest{}, err
	}

	content := strings.TrimSpace(strings.Join(lines, "\n"))

	var req models.JobRequest
	if strings.HasPrefix(content, "---") {
		parts := strings.SplitN(content, "---", 3)
		if len(parts) >= 3 {
			var input inputFile
			if err := yaml.Unmarshal([]byte(parts[1]), &input); err == nil && input.URL != "" {
				req = models.JobRequest{
					URL:       strings.TrimSpace(input.URL),
					Prompt:    strings.TrimSpace(input.Prompt),
					VoiceType: strings.TrimSpace(input.Voice),
					WithVideo: input.Video,
				}
			}
		}
	}

	if req.URL == "" {
		for _, line := range lines {
			if line = strings.TrimSpace(line); line != "" {
				req.URL = line
				break
			}
		}
	}

	if req.URL == "" {
		return models.JobRequest{}, fmt.Errorf("no URL in %s", filepath.Base(path))
	}
	if _, err := extractor.ValidateURL(req.URL); err != nil {
		return models.JobRequest{}, err
	}
	return req, nil
}
