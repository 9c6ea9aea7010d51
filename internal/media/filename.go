package media

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clobrano/newscast/internal/models"
)

const timestampLayout = "2006-01-02T15-04-05"

// Filename builds <prefix>-<tags...>-<timestamp>-<random><ext>. The prefix
// comes from the summary and falls back to the kind name.
func Filename(kind models.MediaKind, summary string, at time.Time, random string, tags ...string) string {
	prefix := SummaryPrefix(summary)
	if prefix == "" {
		prefix = string(kind)
	}

	parts := []string{prefix}
	for _, tag := range tags {
		parts = append(parts, SanitizeTag(tag))
	}
	parts = append(parts, at.UTC().Format(timestampLayout), random)

	return strings.Join(parts, "-") + kind.Ext()
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
}
