package speech

import (
	"math"
	"regexp"
)

var (
	japaneseCharsRegexp = regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FAF}]`)
	latinWordsRegexp    = regexp.MustCompile(`[a-zA-Z]+`)
	punctuationRegexp   = regexp.MustCompile(`[。！？、，．]`)
)

// EstimateDuration guesses spoken length in seconds: 0.3s per Japanese
// character, 0.5s per Latin word and 0.2s per Japanese punctuation mark,
// never less than one second. It is advisory only.
func EstimateDuration(text string) float64 {
	jp := len(japaneseCharsRegexp.FindAllStringIndex(text, -1))
	words := len(latinWordsRegexp.FindAllStringIndex(text, -1))
	punct := len(punctuationRegexp.FindAllStringIndex(text, -1))

	d := float64(jp)*0.3 + float64(words)*0.5 + float64(punct)*0.2
	return math.Max(d, 1)
}
