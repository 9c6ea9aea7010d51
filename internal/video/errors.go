package video

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyText        = errors.New("text is required")
	ErrMissingAPIKey    = errors.New("DID_API_KEY is not set")
	ErrTimeout          = errors.New("video generation timed out")
	ErrJobFailed        = errors.New("video generation failed")
	ErrMissingResultURL = errors.New("video finished without a result URL")
)

// ProviderError is a non-2xx answer from the video provider.
type ProviderError struct {
	StatusCode int
	Body       string
	Hint       string
}

func (e *ProviderError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("D-ID API error %d (%s): %s", e.StatusCode, e.Hint, e.Body)
	}
	return fmt.Sprintf("D-ID API error %d: %s", e.StatusCode, e.Body)
}

var statusHints = map[int]string{
	401: "authentication failed: API key is invalid or expired",
	402: "insufficient credits for video generation",
	403: "no permission for this endpoint, a paid plan may be required",
	429: "rate limit reached",
}

func newProviderError(status int, body string) *ProviderError {
	return &ProviderError{StatusCode: status, Body: body, Hint: statusHints[status]}
}
