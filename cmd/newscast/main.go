package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/clobrano/newscast/internal/catalog"
	"github.com/clobrano/newscast/internal/config"
	"github.com/clobrano/newscast/internal/extractor"
	"github.com/clobrano/newscast/internal/logging"
	"github.com/clobrano/newscast/internal/media"
	"github.com/clobrano/newscast/internal/metrics"
	"github.com/clobrano/newscast/internal/notifier"
	"github.com/clobrano/newscast/internal/processor"
	"github.com/clobrano/newscast/internal/queue"
	"github.com/clobrano/newscast/internal/server"
	"github.com/clobrano/newscast/internal/speech"
	"github.com/clobrano/newscast/internal/summarizer"
	"github.com/clobrano/newscast/internal/video"
	"github.com/clobrano/newscast/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	flush, err := logging.InitSentry(cfg.Logging)
	if err != nil {
		logger.Warn("sentry disabled", "error", err)
	}
	defer flush()

	if err := run(cfg, logger); err != nil {
		logging.Capture(err)
		logger.Error("newscast stopped with error", "error", err)
		flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	warnMissingKeys(cfg, logger)

	if err := os.MkdirAll(cfg.Server.PublicDir, 0755); err != nil {
		return err
	}
	if err := checkWritePermission(cfg.Server.PublicDir); err != nil {
		return err
	}

	m := metrics.New()

	store := media.NewStore(cfg.Server.PublicDir, logger)
	var cat *catalog.Postgres
	if cfg.Catalog.DSN != "" {
		pg, err := catalog.Open(ctx, cfg.Catalog.DSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		cat = pg
		store.WithCatalog(pg)
		logger.Info("media catalog enabled")
	}

	articles := extractor.New(extractor.NewFetcher(cfg.Extractor, logger), cfg.Extractor, logger)
	voice := speech.NewClient(speech.NewElevenLabs(cfg.Speech), cfg.Speech, logger)
	videos := video.NewOrchestrator(video.NewDID(cfg.Video), cfg.Video, logger)

	sum, err := summarizer.New(ctx, cfg.LLM)
	if err != nil {
		logger.Warn("summarizer disabled", "provider", cfg.LLM.Provider, "error", err)
		// drop the typed nil so handlers see "not configured"
		sum = nil
	} else {
		logger.Info("summarizer initialized", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}

	deps := server.Deps{
		Articles:   articles,
		Summarizer: sum,
		Speech:     voice,
		Videos:     videos,
		Library:    store,
		Metrics:    m,
		Logger:     logger,
	}
	if cat != nil {
		deps.Catalog = cat
	}

	if cfg.Inbox.Enabled {
		if sum == nil {
			return errors.New("inbox requires a working summarizer")
		}
		q, stopInbox, err := startInbox(cfg, logger, processor.Deps{
			Extractor:  articles,
			Summarizer: sum,
			Speech:     voice,
			Video:      videos,
			Media:      store,
			Notifier:   notifier.New(cfg.Notify.NtfyServer, cfg.Notify.NtfyTopic),
			Metrics:    m,
			Logger:     logger,
		})
		if err != nil {
			return err
		}
		defer stopInbox()
		deps.Jobs = q
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(cfg.Server, deps).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("newscast listening", "addr", cfg.Server.Addr, "public_dir", cfg.Server.PublicDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startInbox wires watcher, queue and processor. The returned func stops them.
func startInbox(cfg *config.Config, logger *slog.Logger, deps processor.Deps) (*queue.Queue, func(), error) {
	for _, dir := range []string{cfg.Inbox.WatchDir, cfg.Inbox.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, err
		}
		if err := checkWritePermission(dir); err != nil {
			return nil, nil, err
		}
	}

	queuePath := filepath.Join(cfg.Inbox.OutputDir, ".queue.json")
	q, err := queue.New(queuePath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("queue initialized", "persistence", queuePath, "pending", q.PendingCount())

	proc := processor.New(cfg.Inbox, q, deps)
	proc.Start()
	q.Notify()

	watch, err := watcher.New(cfg.Inbox.WatchDir, q, watcher.Defaults{
		VoiceType: cfg.Inbox.VoiceType,
		WithVideo: cfg.Inbox.WithVideo,
	}, logger)
	if err != nil {
		proc.Stop()
		return nil, nil, err
	}
	if err := watch.Start(); err != nil {
		proc.Stop()
		return nil, nil, err
	}
	logger.Info("watching inbox", "dir", cfg.Inbox.WatchDir)

	return q, func() {
		watch.Stop()
		proc.Stop()
	}, nil
}

func warnMissingKeys(cfg *config.Config, logger *slog.Logger) {
	if cfg.Speech.APIKey == "" {
		logger.Warn("ELEVENLABS_API_KEY not set, speech synthesis will fail")
	}
	if cfg.Video.APIKey == "" {
		logger.Warn("DID_API_KEY not set, video generation will fail")
	}
	if cfg.LLM.Provider == "claude" && cfg.LLM.AnthropicKey == "" {
		logger.Warn("ANTHROPIC_API_KEY not set, Claude summarization will fail")
	}
	if cfg.LLM.Provider == "gemini" && cfg.LLM.GoogleKey == "" {
		logger.Warn("GOOGLE_API_KEY not set, Gemini summarization will fail")
	}
}

func checkWritePermission(dir string) error {
	testFile := filepath.Join(dir, ".write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return err
	}
	f.Close()
	os.Remove(testFile)
	return nil
}
