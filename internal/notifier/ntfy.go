package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/clobrano/newscast/internal/models"
)

const DefaultServer = "https://ntfy.sh"

// Notifier pushes job progress to an ntfy topic. A nil Notifier is valid and silent.
type Notifier struct {
	server string
	topic  string
	client *http.Client
}

func New(server, topic string) *Notifier {
	if topic == "" {
		return nil
	}
	if server == "" {
		server = DefaultServer
	}
	return &Notifier{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *Notifier) SendStart(ctx context.Context, job *models.Job) error {
	if n == nil {
		return nil
	}

	message := fmt.Sprintf("Building a newscast for %s\n\nJob ID: %s", job.URL, job.ID)
	return n.send(ctx, "Newscast: started", message, "low", "hourglass_flowing_sand", "")
}

func (n *Notifier) SendSkipped(ctx context.Context, job *models.Job) error {
	if n == nil {
		return nil
	}

	message := fmt.Sprintf("%s was already processed, nothing to do.\n\nJob ID: %s", job.URL, job.ID)
	return n.send(ctx, "Newscast: skipped", message, "low", "fast_forward", "")
}

func (n *Notifier) SendSuccess(ctx context.Context, job *models.Job) error {
	if n == nil {
		return nil
	}

	title := "Newscast: ready"
	if job.Title != "" {
		title = fmt.Sprintf("Newscast: %s", job.Title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summary for %s is ready.\n", job.URL)
	if job.AudioFile != "" {
		fmt.Fprintf(&b, "\nAudio: %s", job.AudioFile)
	}
	if job.VideoFile != "" {
		fmt.Fprintf(&b, "\nVideo: %s", job.VideoFile)
	}
	fmt.Fprintf(&b, "\n\nJob ID: %s", job.ID)

	return n.send(ctx, title, b.String(), "default", "white_check_mark", job.URL)
}

func (n *Notifier) SendFailure(ctx context.Context, job *models.Job) error {
	if n == nil {
		return nil
	}

	message := fmt.Sprintf("Failed to process %s\n\nError: %s\n\nJob ID: %s", job.URL, job.Error, job.ID)
	return n.send(ctx, "Newscast: failed", message, "high", "x", "")
}

func (n *Notifier) send(ctx context.Context, title, message, priority, tags, click string) error {
	url := fmt.Sprintf("%s/%s", n.server, n.topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(message))
	if err != nil {
		return err
	}

	req.Header.Set("Title", title)
	req.Header.Set("Priority", priority)
	req.Header.Set("Tags", tags)
	if click != "" {
		req.Header.Set("Click", click)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}

	return nil
}
