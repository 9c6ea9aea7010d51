package media

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/clobrano/newscast/internal/models"
)

type entry struct {
	name    string
	size    int64
	modTime time.Time
}

// entries returns files of kind, newest first. A missing directory is empty.
func (s *Store) entries(kind models.MediaKind) ([]entry, error) {
	dirEntries, err := os.ReadDir(s.Dir(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s files: %w", kind, err)
	}

	var out []entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), kind.Ext()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn("failed to stat media file", "file", de.Name(), "error", err)
			}
			continue
		}
		out = append(out, entry{name: de.Name(), size: info.Size(), modTime: info.ModTime()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].modTime.After(out[j].modTime)
	})
	return out, nil
}

func (s *Store) ListAudio() ([]models.ListedAudio, error) {
	entries, err := s.entries(models.MediaAudio)
	if err != nil {
		return nil, err
	}

	files := make([]models.ListedAudio, 0, len(entries))
	for _, e := range entries {
		files = append(files, models.ListedAudio{
			Filename:   e.name,
			PublicURL:  path.Join("/", models.MediaAudio.Dir(), e.name),
			Size:       e.size,
			CreatedAt:  e.modTime,
			ModifiedAt: e.modTime,
		})
	}
	return files, nil
}

// ListVideos reads title and quality back out of the generated filenames.
func (s *Store) ListVideos() ([]models.ListedVideo, error) {
	entries, err := s.entries(models.MediaVideo)
	if err != nil {
		return nil, err
	}

	videos := make([]models.ListedVideo, 0, len(entries))
	for _, e := range entries {
		id := strings.TrimSuffix(e.name, models.MediaVideo.Ext())
		parts := strings.Split(id, "-")

		title := "動画"
		if parts[0] != "" {
			title = parts[0]
		}
		quality := "standard"
		if len(parts) > 2 && parts[2] != "" {
			quality = parts[2]
		}

		videos = append(videos, models.ListedVideo{
			ID:        id,
			Filename:  e.name,
			Title:     title,
			Summary:   title + "についての動画です。",
			VideoURL:  path.Join("/", models.MediaVideo.Dir(), e.name),
			Quality:   quality,
			Size:      e.size,
			CreatedAt: e.modTime,
		})
	}
	return videos, nil
}
