package models

// ExtractedArticle is the normalized result of running readability over a page.
// WordCount and ReadingTime are always derived from ContentText.
type ExtractedArticle struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	ContentText   string `json:"textContent"`
	Excerpt       string `json:"excerpt"`
	SiteName      string `json:"siteName,omitempty"`
	PublishedTime string `json:"publishedTime,omitempty"`
	Author        string `json:"author,omitempty"`
	URL           string `json:"url"`
	WordCount     int    `json:"wordCount"`
	ReadingTime   int    `json:"readingTime"`
}
