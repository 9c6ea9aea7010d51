package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestExtractMany_DropsFailuresAndKeepsOrder(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://news.example.com/a": articlePage("Article A"),
		"https://news.example.com/c": articlePage("Article C"),
	}}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	e := New(fetcher, DefaultConfig(), logger)

	urls := []string{
		"https://news.example.com/a",
		"https://news.example.com/b",
		"https://news.example.com/c",
	}
	articles := e.ExtractMany(context.Background(), urls, Options{})

	if len(articles) != 2 {
		t.Fatalf("ExtractMany() returned %d articles, want 2", len(articles))
	}
	if articles[0].URL != urls[0] || articles[1].URL != urls[2] {
		t.Errorf("order not preserved: got %s, %s", articles[0].URL, articles[1].URL)
	}
	if n := strings.Count(logs.String(), "article extraction failed"); n != 1 {
		t.Errorf("logged %d failures, want 1\n%s", n, logs.String())
	}
}

func TestExtractMany_Empty(t *testing.T) {
	e := New(&stubFetcher{}, DefaultConfig(), discardLogger())
	if articles := e.ExtractMany(context.Background(), nil, Options{}); len(articles) != 0 {
		t.Errorf("ExtractMany(nil) = %v, want empty", articles)
	}
}

// groupFetcher checks the batch barrier: URL n must not start before every
// URL of the previous groups has finished.
type groupFetcher struct {
	size     int
	mu       sync.Mutex
	finished int
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	t        *testing.T
}

func (g *groupFetcher) Fetch(_ context.Context, rawURL string, _ Options) (string, error) {
	var idx int
	fmt.Sscanf(rawURL[strings.LastIndex(rawURL, "/")+1:], "%d", &idx)

	g.mu.Lock()
	if group := idx / g.size; g.finished < group*g.size {
		g.t.Errorf("url %d started with only %d finished", idx, g.finished)
	}
	g.mu.Unlock()

	n := g.inFlight.Add(1)
	for {
		m := g.maxSeen.Load()
		if n <= m || g.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	g.inFlight.Add(-1)

	g.mu.Lock()
	g.finished++
	g.mu.Unlock()

	if idx%2 == 1 {
		return "", fmt.Errorf("boom %d", idx)
	}
	return articlePage(fmt.Sprintf("Article %d", idx)), nil
}

func TestExtractBatch_GroupsOfThree(t *testing.T) {
	fetcher := &groupFetcher{size: DefaultConcurrency, t: t}
	e := New(fetcher, DefaultConfig(), discardLogger())

	var urls []string
	for i := 0; i < 7; i++ {
		urls = append(urls, fmt.Sprintf("https://news.example.com/%d", i))
	}

	items := e.ExtractBatch(context.Background(), urls, Options{})
	if len(items) != len(urls) {
		t.Fatalf("ExtractBatch() returned %d items, want %d", len(items), len(urls))
	}
	for i, item := range items {
		if item.URL != urls[i] {
			t.Errorf("item %d URL = %s, want %s", i, item.URL, urls[i])
		}
		if (i%2 == 1) != (item.Err != nil) {
			t.Errorf("item %d error = %v", i, item.Err)
		}
	}
	if got := fetcher.maxSeen.Load(); got > DefaultConcurrency {
		t.Errorf("max in flight = %d, want <= %d", got, DefaultConcurrency)
	}
}
