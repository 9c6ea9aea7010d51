package video

import (
	"strings"

	"github.com/tidwall/gjson"
)

// resultURLPaths are tried in order against a status response; the first
// non-empty string wins.
var resultURLPaths = []string{
	"result_url",
	"result.video_url",
	"result.url",
	"result.videoUrl",
	"video_url",
	"url",
}

var errorMessagePaths = []string{
	"error.description",
	"error.kind",
	"error",
}

func firstString(doc gjson.Result, paths []string) string {
	for _, path := range paths {
		v := doc.Get(path)
		if v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			return strings.TrimSpace(v.Str)
		}
	}
	return ""
}

func resolveResultURL(doc gjson.Result) string {
	return firstString(doc, resultURLPaths)
}

func resolveErrorMessage(doc gjson.Result) string {
	return firstString(doc, errorMessagePaths)
}

func resolveDuration(doc gjson.Result) float64 {
	if v := doc.Get("result.duration"); v.Exists() {
		return v.Float()
	}
	return doc.Get("duration").Float()
}
