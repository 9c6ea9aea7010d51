package speech

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnsupportedAudioFormat is returned for a payload shape readAudio does not know.
var ErrUnsupportedAudioFormat = errors.New("unsupported audio payload")

// AudioPayload is the closed set of shapes a provider may hand back.
type AudioPayload interface {
	audioPayload()
}

// BufferedAudio is audio already in memory.
type BufferedAudio []byte

// StreamAudio is audio still being read from the provider.
type StreamAudio struct {
	io.ReadCloser
}

// ResponseAudio is an unread HTTP response whose body is the audio.
type ResponseAudio struct {
	*http.Response
}

func (BufferedAudio) audioPayload() {}
func (StreamAudio) audioPayload()   {}
func (ResponseAudio) audioPayload() {}

// readAudio turns any payload variant into a byte buffer, closing streams.
func readAudio(payload AudioPayload) ([]byte, error) {
	switch p := payload.(type) {
	case BufferedAudio:
		return []byte(p), nil
	case StreamAudio:
		if p.ReadCloser == nil {
			return nil, ErrUnsupportedAudioFormat
		}
		defer p.Close()
		data, err := io.ReadAll(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read audio stream: %w", err)
		}
		return data, nil
	case ResponseAudio:
		if p.Response == nil || p.Body == nil {
			return nil, ErrUnsupportedAudioFormat
		}
		defer p.Body.Close()
		data, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read audio response: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedAudioFormat, payload)
	}
}
