package media

import (
	"regexp"
	"strings"
	"unicode"
)

// Characters that break filenames on some filesystem or sync tool.
// Windows reserved: < > : " / \ | ? *
var invalidCharsRegexp = regexp.MustCompile(`[<>:"/\\|?*]`)

var controlCharsRegexp = regexp.MustCompile(`[\x00-\x1f]`)

var multipleUnderscoresRegexp = regexp.MustCompile(`_+`)

// prefixCharsRegexp matches what may appear in the summary-derived prefix:
// ASCII letters and digits plus hiragana, katakana and common kanji.
var prefixCharsRegexp = regexp.MustCompile(`[a-zA-Z0-9\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FAF}]`)

const (
	prefixRunes  = 20
	maxTagLength = 40
	fallbackTag  = "unknown"
)

// SanitizeTag cleans one dash-separated filename segment such as a voice type
// or a presenter id. Dashes are replaced too, so the segments of a generated
// filename can be split back apart.
//
// It handles:
// - Reserved characters on Windows: < > : " / \ | ? *
// - The segment separator '-' and whitespace
// - Control characters (0x00-0x1F)
// - Leading/trailing dots and underscores
// - Empty segments (returns "unknown")
func SanitizeTag(tag string) string {
	result := controlCharsRegexp.ReplaceAllString(tag, "")
	result = invalidCharsRegexp.ReplaceAllString(result, "_")

	var builder strings.Builder
	for _, r := range result {
		switch {
		case r == '-' || unicode.IsSpace(r):
			builder.WriteRune('_')
		case unicode.IsPrint(r) && r != unicode.ReplacementChar:
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	result = builder.String()

	result = multipleUnderscoresRegexp.ReplaceAllString(result, "_")
	result = strings.Trim(result, " ._")

	if result == "" {
		return fallbackTag
	}

	if runes := []rune(result); len(runes) > maxTagLength {
		result = strings.TrimRight(string(runes[:maxTagLength]), "_")
	}

	return result
}

// SummaryPrefix keeps the allowed characters among the first 20 characters
// of a summary. It may return an empty string.
func SummaryPrefix(summary string) string {
	runes := []rune(summary)
	if len(runes) > prefixRunes {
		runes = runes[:prefixRunes]
	}
	return strings.Join(prefixCharsRegexp.FindAllString(string(runes), -1), "")
}
