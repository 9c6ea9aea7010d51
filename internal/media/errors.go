package media

import (
	"errors"
	"fmt"
)

// ErrInvalidPayload is a validation failure: missing or undecodable input.
var ErrInvalidPayload = errors.New("invalid media payload")

// DownloadError is a non-2xx answer while fetching a remote video.
type DownloadError struct {
	URL        string
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("video download failed: status %d", e.StatusCode)
}

// ErrTooLarge means a remote video exceeds the download limit.
var ErrTooLarge = errors.New("video exceeds the download limit")

// TooLargeError is returned instead of saving a partial video.
type TooLargeError struct {
	URL   string
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("video download failed: %s is larger than %d bytes", e.URL, e.Limit)
}

func (e *TooLargeError) Unwrap() error {
	return ErrTooLarge
}

// PersistenceError is a failure to write to the media directory.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
