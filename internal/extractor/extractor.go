package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/clobrano/newscast/internal/models"
)

// UntitledArticle is used when neither readability nor the page provide a title.
const UntitledArticle = "タイトルなし"

// PageFetcher retrieves raw HTML for a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, opts Options) (string, error)
}

type Extractor struct {
	fetcher     PageFetcher
	concurrency int
	logger      *slog.Logger
}

func New(fetcher PageFetcher, cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Extractor{
		fetcher:     fetcher,
		concurrency: concurrency,
		logger:      logger.With("component", "extractor"),
	}
}

// ExtractFromURL fetches rawURL and extracts the article. Only the fetch is
// retried; a page without article content fails immediately.
func (e *Extractor) ExtractFromURL(ctx context.Context, rawURL string, opts Options) (models.ExtractedArticle, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return models.ExtractedArticle{}, err
	}

	page, err := e.fetcher.Fetch(ctx, rawURL, opts)
	if err != nil {
		return models.ExtractedArticle{}, err
	}

	article, err := e.ExtractFromHTML(page, rawURL)
	if err != nil {
		return models.ExtractedArticle{}, err
	}

	e.logger.Info("article extracted", "url", rawURL, "title", article.Title, "words", article.WordCount)
	return article, nil
}

// ExtractFromHTML runs readability over page, using pageURL to resolve
// relative links. The result is deterministic for identical input.
func (e *Extractor) ExtractFromHTML(page, pageURL string) (models.ExtractedArticle, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return models.ExtractedArticle{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	parsed, err := readability.FromReader(strings.NewReader(page), base)
	if err != nil {
		return models.ExtractedArticle{}, &ExtractionError{URL: pageURL, Err: fmt.Errorf("%w: %v", ErrNoContent, err)}
	}
	if parsed.Node == nil {
		return models.ExtractedArticle{}, &ExtractionError{URL: pageURL, Err: ErrNoContent}
	}

	content, err := renderNode(parsed.Node)
	if err != nil {
		return models.ExtractedArticle{}, &ExtractionError{URL: pageURL, Err: fmt.Errorf("render content: %w", err)}
	}

	text := PlainText(content)
	if text == "" {
		return models.ExtractedArticle{}, &ExtractionError{URL: pageURL, Err: ErrNoContent}
	}

	var meta pageMeta
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(page)); err == nil {
		meta = readMeta(doc)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = meta.Title
	}
	if title == "" {
		title = UntitledArticle
	}

	author := meta.Author
	if author == "" {
		author = strings.TrimSpace(parsed.Byline)
	}
	siteName := meta.SiteName
	if siteName == "" {
		siteName = strings.TrimSpace(parsed.SiteName)
	}

	words := WordCount(text)
	return models.ExtractedArticle{
		Title:         title,
		Content:       content,
		ContentText:   text,
		Excerpt:       strings.TrimSpace(parsed.Excerpt),
		SiteName:      siteName,
		PublishedTime: meta.PublishedTime,
		Author:        author,
		URL:           pageURL,
		WordCount:     words,
		ReadingTime:   ReadingTime(words),
	}, nil
}

func renderNode(node *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}
