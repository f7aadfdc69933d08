package filter

import (
	"strings"

	"github.com/jimezsa/atsscan/internal/models"
)

// InferKind guesses an employment kind from title and location when the platform supplies none.
// Keywords are checked in priority order and the result defaults to Full Time.
func InferKind(title, location string) string {
	text := strings.ToLower(title + " " + location)
	switch {
	case strings.Contains(text, "contract"):
		return models.KindContract
	case strings.Contains(text, "part-time"), strings.Contains(text, "part time"):
		return models.KindPartTime
	case strings.Contains(text, "full-time"), strings.Contains(text, "full time"):
		return models.KindFullTime
	case strings.Contains(text, "remote"):
		return models.KindRemote
	default:
		return models.KindFullTime
	}
}

// NormalizeKind maps platform-supplied employment text onto the controlled vocabulary. Text that
// maps to nothing is kept as-is; empty text falls back to InferKind.
func NormalizeKind(raw, title, location string) string {
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return InferKind(title, location)
	}
	value := strings.ToLower(raw)
	switch {
	case strings.Contains(value, "contract"):
		return models.KindContract
	case strings.Contains(value, "part"):
		return models.KindPartTime
	case strings.Contains(value, "full"), strings.Contains(value, "permanent"):
		return models.KindFullTime
	case strings.Contains(value, "remote"):
		return models.KindRemote
	default:
		return raw
	}
}
