package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// WordsPerMinute is the reading speed used for ReadingTime.
const WordsPerMinute = 400

var (
	japaneseCharsRegexp = regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FAF}]`)
	latinWordsRegexp    = regexp.MustCompile(`[a-zA-Z]+`)
	otherCharsRegexp    = regexp.MustCompile(`[0-9\x{3000}-\x{303F}\x{FF00}-\x{FFEF}]`)
	whitespaceRegexp    = regexp.MustCompile(`\s+`)
)

// PlainText turns an HTML fragment into a single line of text. Link text is
// kept, empty links disappear, every other tag is dropped and whitespace runs
// collapse to one space.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript, template").Remove()
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if strings.TrimSpace(text) == "" {
			s.Remove()
			return
		}
		s.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: text})
	})

	text := doc.Find("body").Text()
	return strings.TrimSpace(whitespaceRegexp.ReplaceAllString(text, " "))
}

// WordCount is a heuristic for mixed Japanese and Latin text: each kana or
// kanji counts once, each run of Latin letters counts once, and digits and
// full-width punctuation count once per character.
func WordCount(text string) int {
	if text == "" {
		return 0
	}
	return len(japaneseCharsRegexp.FindAllStringIndex(text, -1)) +
		len(latinWordsRegexp.FindAllStringIndex(text, -1)) +
		len(otherCharsRegexp.FindAllStringIndex(text, -1))
}

// ReadingTime is ceil(words / WordsPerMinute) minutes.
func ReadingTime(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
