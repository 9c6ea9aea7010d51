package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type pageMeta struct {
	Title         string
	SiteName      string
	PublishedTime string
	Author        string
}

// readMeta collects page-level metadata. Missing fields stay empty.
func readMeta(doc *goquery.Document) pageMeta {
	var meta pageMeta

	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	meta.SiteName = firstAttr(doc, "content", `meta[property="og:site_name"]`)

	if sel := firstMatch(doc,
		`meta[property="article:published_time"]`,
		`meta[name="published_time"]`,
		`time[datetime]`,
	); sel != nil {
		if v, ok := sel.Attr("content"); ok && strings.TrimSpace(v) != "" {
			meta.PublishedTime = strings.TrimSpace(v)
		} else {
			meta.PublishedTime = strings.TrimSpace(sel.AttrOr("datetime", ""))
		}
	}

	meta.Author = firstAttr(doc, "content",
		`meta[name="author"]`,
		`meta[property="article:author"]`,
		`meta[property="og:author"]`,
	)

	return meta
}

// firstMatch returns the first element matched by the earliest selector that matches anything.
func firstMatch(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func firstAttr(doc *goquery.Document, attr string, selectors ...string) string {
	sel := firstMatch(doc, selectors...)
	if sel == nil {
		return ""
	}
	return strings.TrimSpace(sel.AttrOr(attr, ""))
}
