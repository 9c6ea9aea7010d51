package extractor

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "link text preserved",
			input:    `<p>Hello <a href="x">world</a>!</p>`,
			expected: "Hello world!",
		},
		{
			name:     "empty link removed",
			input:    `<p>before<a href="x"> </a>after</p>`,
			expected: "beforeafter",
		},
		{
			name:     "whitespace collapsed",
			input:    "<div>\n  one\t\ttwo\n\n<span>three</span>  </div>",
			expected: "one two three",
		},
		{
			name:     "nested tags dropped",
			input:    `<p><strong>東京</strong>で<em>会議</em>が開かれた。</p>`,
			expected: "東京で会議が開かれた。",
		},
		{
			name:     "scripts do not leak",
			input:    `<p>text</p><script>var a = 1;</script>`,
			expected: "text",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PlainText(tt.input)
			if result != tt.expected {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty", input: "", expected: 0},
		{name: "hiragana", input: "こんにちは", expected: 5},
		{name: "kanji and katakana", input: "東京タワー", expected: 5},
		{name: "latin words count once per run", input: "Hello brave new world", expected: 4},
		{name: "digits count per character", input: "2024", expected: 4},
		{name: "japanese punctuation counts", input: "はい。", expected: 3},
		{name: "full width letters count", input: "ＡＢ", expected: 2},
		{name: "mixed", input: "Go言語は2009年に公開", expected: 12},
		{name: "ascii punctuation ignored", input: "!?,.", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.input); got != tt.expected {
				t.Errorf("WordCount(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words    int
		expected int
	}{
		{0, 0},
		{1, 1},
		{399, 1},
		{400, 1},
		{401, 2},
		{800, 2},
		{801, 3},
	}

	for _, tt := range tests {
		if got := ReadingTime(tt.words); got != tt.expected {
			t.Errorf("ReadingTime(%d) = %d, want %d", tt.words, got, tt.expected)
		}
	}
}

func TestReadingTime_JapaneseText(t *testing.T) {
	text := strings.Repeat("あ", 400)
	if got := ReadingTime(WordCount(text)); got != 1 {
		t.Errorf("400 Japanese characters should take 1 minute, got %d", got)
	}

	text += "い"
	if got := ReadingTime(WordCount(text)); got != 2 {
		t.Errorf("401 Japanese characters should take 2 minutes, got %d", got)
	}
}
