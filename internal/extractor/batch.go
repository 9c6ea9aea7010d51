package extractor

import (
	"context"
	"sync"

	"github.com/clobrano/newscast/internal/models"
)

// BatchItem is the outcome for one URL of a batch.
type BatchItem struct {
	URL     string                  `json:"url"`
	Article models.ExtractedArticle `json:"article"`
	Err     error                   `json:"-"`
}

// ExtractBatch extracts urls in consecutive groups of the configured
// concurrency. A group starts only once every member of the previous group
// has settled. Items keep the input order.
func (e *Extractor) ExtractBatch(ctx context.Context, urls []string, opts Options) []BatchItem {
	items := make([]BatchItem, len(urls))

	for start := 0; start < len(urls); start += e.concurrency {
		end := min(start+e.concurrency, len(urls))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				article, err := e.ExtractFromURL(ctx, urls[i], opts)
				items[i] = BatchItem{URL: urls[i], Article: article, Err: err}
			}(i)
		}
		wg.Wait()
	}

	return items
}

// ExtractMany returns the articles that could be extracted, in input order.
// Failures are logged and dropped.
func (e *Extractor) ExtractMany(ctx context.Context, urls []string, opts Options) []models.ExtractedArticle {
	items := e.ExtractBatch(ctx, urls, opts)

	articles := make([]models.ExtractedArticle, 0, len(items))
	for _, item := range items {
		if item.Err != nil {
			e.logger.Error("article extraction failed", "url", item.URL, "error", item.Err)
			continue
		}
		articles = append(articles, item.Article)
	}
	return articles
}
