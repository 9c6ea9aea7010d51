package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clobrano/newscast/internal/extractor"
	"github.com/clobrano/newscast/internal/metrics"
	"github.com/clobrano/newscast/internal/models"
	"github.com/clobrano/newscast/internal/speech"
	"github.com/clobrano/newscast/internal/video"
)

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "UP"})
}

// fetchOptions mirrors extractor.Options with the timeout in milliseconds.
type fetchOptions struct {
	Timeout    int    `json:"timeout"`
	UserAgent  string `json:"userAgent"`
	MaxRetries int    `json:"maxRetries"`
}

func (o *fetchOptions) toExtractor() extractor.Options {
	if o == nil {
		return extractor.Options{}
	}
	return extractor.Options{
		Timeout:    time.Duration(o.Timeout) * time.Millisecond,
		UserAgent:  o.UserAgent,
		MaxRetries: o.MaxRetries,
	}
}

type extractRequest struct {
	URL     string        `json:"url"`
	URLs    []string      `json:"urls"`
	Options *fetchOptions `json:"options"`
}

func (s *Server) extractArticle(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}

	opts := req.Options.toExtractor()
	switch {
	case req.URL != "":
		s.extractOne(c, req.URL, opts)
	case req.URLs != nil:
		articles := s.deps.Articles.ExtractMany(c.Request.Context(), req.URLs, opts)
		s.metrics.Extractions.WithLabelValues("success").Add(float64(len(articles)))
		s.metrics.Extractions.WithLabelValues("error").Add(float64(len(req.URLs) - len(articles)))
		c.JSON(http.StatusOK, gin.H{"success": true, "data": articles})
	default:
		s.fail(c, badRequest("url or urls is required"))
	}
}

func (s *Server) extractArticleQuery(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		s.fail(c, badRequest("url query parameter is required"))
		return
	}
	s.extractOne(c, url, extractor.Options{})
}

func (s *Server) extractOne(c *gin.Context, url string, opts extractor.Options) {
	article, err := s.deps.Articles.ExtractFromURL(c.Request.Context(), url, opts)
	s.metrics.Extractions.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": article})
}

type summarizeRequest struct {
	Text   string `json:"text"`
	Prompt string `json:"prompt"`
}

func (s *Server) summarize(c *gin.Context) {
	if s.deps.Summarizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "summarizer is not configured"})
		return
	}

	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}

	summary, err := s.deps.Summarizer.Summarize(c.Request.Context(), req.Text, req.Prompt)
	s.metrics.Summaries.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

type ttsRequest struct {
	Text      string           `json:"text"`
	VoiceType string           `json:"voiceType"`
	Options   speech.Overrides `json:"options"`
}

func (s *Server) synthesize(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.fail(c, speech.ErrEmptyText)
		return
	}

	result := s.deps.Speech.Synthesize(c.Request.Context(), req.Text, req.VoiceType, req.Options)
	if !result.Success {
		s.metrics.SpeechRequests.WithLabelValues("error").Inc()
		s.fail(c, errors.New(result.Error))
		return
	}
	s.metrics.SpeechRequests.WithLabelValues("success").Inc()

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"audio":    base64.StdEncoding.EncodeToString(result.Audio),
		"duration": result.EstimatedDuration,
		"format":   "mp3",
	})
}

func (s *Server) voices(c *gin.Context) {
	voices, err := s.deps.Speech.Voices(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"voices":  voices,
		"presets": s.deps.Speech.Presets(),
	})
}

type videoRequest struct {
	Text     string        `json:"text"`
	AudioURL string        `json:"audioUrl"`
	Options  video.Options `json:"options"`
}

func (s *Server) createVideo(c *gin.Context) {
	var req videoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.fail(c, video.ErrEmptyText)
		return
	}
	if req.AudioURL != "" {
		req.Options.AudioURL = req.AudioURL
	}

	outcome := s.deps.Videos.SubmitAndWait(c.Request.Context(), req.Text, req.Options)
	s.metrics.ObserveVideo(string(outcome.State), outcome.Polls)
	if !outcome.Success() {
		s.fail(c, outcome.Err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"videoId":  outcome.Job.ID,
		"videoUrl": outcome.Job.ResultURL,
		"status":   outcome.Job.Status,
		"duration": outcome.Job.Duration,
	})
}

func (s *Server) videoOptions(c *gin.Context) {
	switch c.Query("action") {
	case "presenters":
		c.JSON(http.StatusOK, gin.H{"success": true, "presenters": s.deps.Videos.Presenters()})
	case "drivers":
		c.JSON(http.StatusOK, gin.H{"success": true, "drivers": s.deps.Videos.Drivers()})
	default:
		s.fail(c, badRequest("action must be presenters or drivers"))
	}
}

type saveAudioRequest struct {
	AudioData string `json:"audioData"`
	Summary   string `json:"summary"`
	VoiceType string `json:"voiceType"`
}

func (s *Server) saveAudio(c *gin.Context) {
	var req saveAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}

	file, err := s.deps.Library.SaveAudio(c.Request.Context(), req.AudioData, req.Summary, req.VoiceType)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.MediaSavedBytes.WithLabelValues(string(models.MediaAudio)).Add(float64(file.Size))
	c.JSON(http.StatusOK, gin.H{"success": true, "fileInfo": file})
}

type saveVideoRequest struct {
	VideoURL  string `json:"videoUrl"`
	Summary   string `json:"summary"`
	Character string `json:"character"`
	Quality   string `json:"quality"`
}

func (s *Server) saveVideo(c *gin.Context) {
	var req saveVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}

	file, err := s.deps.Library.SaveVideo(c.Request.Context(), req.VideoURL, req.Summary, req.Character, req.Quality)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.MediaSavedBytes.WithLabelValues(string(models.MediaVideo)).Add(float64(file.Size))
	c.JSON(http.StatusOK, gin.H{"success": true, "videoInfo": file})
}

func (s *Server) listAudio(c *gin.Context) {
	files, err := s.deps.Library.ListAudio()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "files": files, "totalCount": len(files)})
}

func (s *Server) listVideos(c *gin.Context) {
	videos, err := s.deps.Library.ListVideos()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "videos": videos})
}

func (s *Server) recentMedia(c *gin.Context) {
	if s.deps.Catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "media catalog is not configured"})
		return
	}

	kind := models.MediaKind(c.DefaultQuery("kind", string(models.MediaAudio)))
	if kind != models.MediaAudio && kind != models.MediaVideo {
		s.fail(c, badRequest("kind must be audio or video"))
		return
	}
	limit, err := strconv.ParseUint(c.DefaultQuery("limit", "20"), 10, 64)
	if err != nil || limit == 0 {
		s.fail(c, badRequest("limit must be a positive number"))
		return
	}

	files, err := s.deps.Catalog.Recent(c.Request.Context(), kind, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if files == nil {
		files = []models.SavedMediaFile{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "files": files})
}

func (s *Server) listJobs(c *gin.Context) {
	if s.deps.Jobs == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "jobs": []models.Job{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "jobs": s.deps.Jobs.List()})
}
