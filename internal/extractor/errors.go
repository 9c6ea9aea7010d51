package extractor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned for anything that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid article URL")

	// ErrNoContent means readability found nothing that looks like an article.
	ErrNoContent = errors.New("no article content could be extracted")
)

// HTTPError is a non-2xx response from the content source.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// ExtractionError wraps the last failure seen for a URL. Attempts is zero when
// no fetch was involved.
type ExtractionError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("failed to extract article from %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("failed to extract article from %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
