package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/clobrano/newscast/internal/models"
)

const (
	maxVideoSize   = 512 << 20
	createAttempts = 3
)

// Recorder indexes saved files somewhere other than the filesystem.
type Recorder interface {
	Record(ctx context.Context, kind models.MediaKind, file models.SavedMediaFile) error
}

// Store writes generated media under a public directory and lists it back.
type Store struct {
	root    string
	client  *http.Client
	catalog Recorder
	logger  *slog.Logger

	maxVideo int64

	now    func() time.Time
	random func() string
}

func NewStore(root string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		root: root,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger:   logger.With("component", "media"),
		maxVideo: maxVideoSize,
		now:      time.Now,
		random:   randomSuffix,
	}
}

// WithCatalog records every saved file in r. Catalog failures are logged only.
func (s *Store) WithCatalog(r Recorder) *Store {
	s.catalog = r
	return s
}

// Dir is the directory holding files of kind.
func (s *Store) Dir(kind models.MediaKind) string {
	return filepath.Join(s.root, kind.Dir())
}

// SaveAudio stores base64-encoded audio.
func (s *Store) SaveAudio(ctx context.Context, base64Data, summary, voiceType string) (models.SavedMediaFile, error) {
	if strings.TrimSpace(base64Data) == "" {
		return models.SavedMediaFile{}, fmt.Errorf("%w: audio data is required", ErrInvalidPayload)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(base64Data))
	if err != nil {
		return models.SavedMediaFile{}, fmt.Errorf("%w: audio data is not valid base64: %v", ErrInvalidPayload, err)
	}
	return s.StoreAudio(ctx, data, summary, voiceType)
}

// StoreAudio stores raw audio bytes.
func (s *Store) StoreAudio(ctx context.Context, data []byte, summary, voiceType string) (models.SavedMediaFile, error) {
	if voiceType == "" {
		voiceType = "unknown"
	}
	return s.save(ctx, models.MediaAudio, data, summary, voiceType)
}

// SaveVideo downloads videoURL completely, then stores it.
func (s *Store) SaveVideo(ctx context.Context, videoURL, summary, character, quality string) (models.SavedMediaFile, error) {
	if strings.TrimSpace(videoURL) == "" {
		return models.SavedMediaFile{}, fmt.Errorf("%w: video URL is required", ErrInvalidPayload)
	}
	if character == "" {
		character = "unknown"
	}
	if quality == "" {
		quality = "standard"
	}

	data, err := s.download(ctx, videoURL)
	if err != nil {
		return models.SavedMediaFile{}, err
	}
	return s.save(ctx, models.MediaVideo, data, summary, character, quality)
}

func (s *Store) download(ctx context.Context, videoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("video download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{URL: videoURL, StatusCode: resp.StatusCode}
	}

	if resp.ContentLength > s.maxVideo {
		return nil, &TooLargeError{URL: videoURL, Limit: s.maxVideo}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxVideo+1))
	if err != nil {
		return nil, fmt.Errorf("video download failed: %w", err)
	}
	if int64(len(data)) > s.maxVideo {
		return nil, &TooLargeError{URL: videoURL, Limit: s.maxVideo}
	}
	return data, nil
}

func (s *Store) save(ctx context.Context, kind models.MediaKind, data []byte, summary string, tags ...string) (models.SavedMediaFile, error) {
	dir := s.Dir(kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return models.SavedMediaFile{}, &PersistenceError{Path: dir, Err: err}
	}

	var (
		file models.SavedMediaFile
		err  error
	)
	for attempt := 0; attempt < createAttempts; attempt++ {
		now := s.now()
		name := Filename(kind, summary, now, s.random(), tags...)
		file, err = s.write(dir, name, data, now)
		if !os.IsExist(err) {
			break
		}
	}
	if err != nil {
		return models.SavedMediaFile{}, &PersistenceError{Path: dir, Err: err}
	}
	file.PublicURL = path.Join("/", kind.Dir(), file.Filename)

	s.logger.Info("media saved", "kind", kind, "file", file.Filename, "bytes", file.Size)

	if s.catalog != nil {
		if err := s.catalog.Record(ctx, kind, file); err != nil {
			s.logger.Warn("failed to record media in catalog", "file", file.Filename, "error", err)
		}
	}
	return file, nil
}

// write creates name exclusively so two saves never share a file.
func (s *Store) write(dir, name string, data []byte, now time.Time) (models.SavedMediaFile, error) {
	fullPath := filepath.Join(dir, name)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return models.SavedMediaFile{}, err
	}

	n, err := f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return models.SavedMediaFile{}, err
	}

	return models.SavedMediaFile{
		Filename:  name,
		Path:      fullPath,
		Size:      int64(n),
		CreatedAt: now,
	}, nil
}
