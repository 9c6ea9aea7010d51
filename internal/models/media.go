package models

import "time"

type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// Ext returns the file extension, dot included.
func (k MediaKind) Ext() string {
	if k == MediaVideo {
		return ".mp4"
	}
	return ".mp3"
}

// Dir is the directory name under the public root.
func (k MediaKind) Dir() string {
	if k == MediaVideo {
		return "generated-videos"
	}
	return "generated-audio"
}

type SavedMediaFile struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"filepath"`
	PublicURL string    `json:"publicUrl"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"timestamp"`
}

// ListedAudio is a saved audio file as returned by the library listing.
type ListedAudio struct {
	Filename   string    `json:"filename"`
	PublicURL  string    `json:"publicUrl"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// ListedVideo is a saved video with the parts encoded in its filename.
type ListedVideo struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	VideoURL  string    `json:"videoUrl"`
	Quality   string    `json:"quality"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
