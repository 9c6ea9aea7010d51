package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clobrano/newscast/internal/config"
	"github.com/clobrano/newscast/internal/extractor"
	"github.com/clobrano/newscast/internal/logging"
	"github.com/clobrano/newscast/internal/media"
	"github.com/clobrano/newscast/internal/metrics"
	"github.com/clobrano/newscast/internal/models"
	"github.com/clobrano/newscast/internal/speech"
	"github.com/clobrano/newscast/internal/summarizer"
	"github.com/clobrano/newscast/internal/video"
)

type Articles interface {
	ExtractFromURL(ctx context.Context, rawURL string, opts extractor.Options) (models.ExtractedArticle, error)
	ExtractMany(ctx context.Context, urls []string, opts extractor.Options) []models.ExtractedArticle
}

type Speech interface {
	Synthesize(ctx context.Context, text, voiceType string, o speech.Overrides) models.SpeechResult
	Voices(ctx context.Context) ([]speech.Voice, error)
	Presets() map[string]speech.VoiceSettings
}

type Videos interface {
	SubmitAndWait(ctx context.Context, text string, opts video.Options) video.Outcome
	Presenters() []video.Presenter
	Drivers() []video.Driver
}

type Library interface {
	SaveAudio(ctx context.Context, base64Data, summary, voiceType string) (models.SavedMediaFile, error)
	SaveVideo(ctx context.Context, videoURL, summary, character, quality string) (models.SavedMediaFile, error)
	ListAudio() ([]models.ListedAudio, error)
	ListVideos() ([]models.ListedVideo, error)
	Dir(kind models.MediaKind) string
}

// Catalog reads back the media index.
type Catalog interface {
	Recent(ctx context.Context, kind models.MediaKind, limit uint64) ([]models.SavedMediaFile, error)
}

// Jobs exposes the inbox queue.
type Jobs interface {
	List() []models.Job
}

// Deps are the services behind the routes. Summarizer, Catalog and Jobs may be nil.
type Deps struct {
	Articles   Articles
	Summarizer summarizer.Summarizer
	Speech     Speech
	Videos     Videos
	Library    Library
	Catalog    Catalog
	Jobs       Jobs
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

type Server struct {
	engine    *gin.Engine
	deps      Deps
	metrics   *metrics.Metrics
	logger    *slog.Logger
	jwtSecret []byte
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		engine:    gin.New(),
		deps:      deps,
		metrics:   m,
		logger:    logger.With("component", "server"),
		jwtSecret: []byte(cfg.JWTSecret),
	}
	s.routes()
	return s
}

// Handler returns the router, for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery(), s.observe())

	s.engine.GET("/health", s.health)
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.engine.Static("/generated-audio", s.deps.Library.Dir(models.MediaAudio))
	s.engine.Static("/generated-videos", s.deps.Library.Dir(models.MediaVideo))

	api := s.engine.Group("/api")
	if len(s.jwtSecret) > 0 {
		api.Use(s.authMiddleware())
	}
	{
		api.POST("/extract-article", s.extractArticle)
		api.GET("/extract-article", s.extractArticleQuery)
		api.POST("/summarize", s.summarize)
		api.POST("/tts", s.synthesize)
		api.GET("/tts", s.voices)
		api.POST("/did-video", s.createVideo)
		api.GET("/did-video", s.videoOptions)
		api.POST("/save-audio", s.saveAudio)
		api.POST("/save-video", s.saveVideo)
		api.GET("/generated-audio", s.listAudio)
		api.GET("/videos", s.listVideos)
		api.GET("/media/recent", s.recentMedia)
		api.GET("/jobs", s.listJobs)
	}
}

// observe logs every request and records its latency by route template.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		s.metrics.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
		)
	}
}

// statusFor maps errors to HTTP status codes: bad input is 400, the rest 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, extractor.ErrInvalidURL),
		errors.Is(err, speech.ErrEmptyText),
		errors.Is(err, video.ErrEmptyText),
		errors.Is(err, media.ErrInvalidPayload),
		errors.Is(err, summarizer.ErrEmptyContent),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		logging.Capture(err)
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
