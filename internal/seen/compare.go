// Package seen tracks which postings were already reported, keyed by title and company.
package seen

import (
	"strings"

	"github.com/jimezsa/atsscan/internal/models"
)

const keySeparator = "::"

// DiffStats captures stats for A-B unseen filtering.
type DiffStats struct {
	TotalNew    int
	TotalSeen   int
	InvalidNew  int
	InvalidSeen int
	Unseen      int
}

func (s DiffStats) InvalidSkipped() int {
	return s.InvalidNew + s.InvalidSeen
}

// MergeStats captures stats for seen history updates.
type MergeStats struct {
	TotalSeen    int
	TotalInput   int
	InvalidSeen  int
	InvalidInput int
	Added        int
	TotalOut     int
}

func (s MergeStats) InvalidSkipped() int {
	return s.InvalidSeen + s.InvalidInput
}

// Normalize lowercases and collapses whitespace.
func Normalize(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

// Key builds the normalized title+company key for a posting. Postings missing either part
// have no key.
func Key(posting models.Posting) (string, bool) {
	title := Normalize(posting.Title)
	company := Normalize(posting.Company)
	if title == "" || company == "" {
		return "", false
	}
	return title + keySeparator + company, true
}

// History is a set of posting keys.
type History struct {
	keys map[string]struct{}
}

// NewHistory indexes postings and reports how many had no key.
func NewHistory(postings []models.Posting) (*History, int) {
	h := &History{keys: make(map[string]struct{}, len(postings))}
	invalid := 0
	for _, posting := range postings {
		if _, ok := h.Add(posting); !ok {
			invalid++
		}
	}
	return h, invalid
}

// Add records posting. added is false when the key was already present; ok is false when the
// posting has no key.
func (h *History) Add(posting models.Posting) (added bool, ok bool) {
	key, ok := Key(posting)
	if !ok {
		return false, false
	}
	if _, exists := h.keys[key]; exists {
		return false, true
	}
	h.keys[key] = struct{}{}
	return true, true
}

func (h *History) Contains(posting models.Posting) bool {
	key, ok := Key(posting)
	if !ok {
		return false
	}
	_, exists := h.keys[key]
	return exists
}

func (h *History) Len() int {
	return len(h.keys)
}

// Diff returns postings from fresh whose keys are absent from history, first occurrence only.
func Diff(fresh []models.Posting, history []models.Posting) ([]models.Posting, DiffStats) {
	stats := DiffStats{
		TotalNew:  len(fresh),
		TotalSeen: len(history),
	}

	known, invalidSeen := NewHistory(history)
	stats.InvalidSeen = invalidSeen

	emitted, _ := NewHistory(nil)
	unseen := make([]models.Posting, 0, len(fresh))
	for _, posting := range fresh {
		added, ok := emitted.Add(posting)
		if !ok {
			stats.InvalidNew++
			continue
		}
		if !added || known.Contains(posting) {
			continue
		}
		unseen = append(unseen, posting)
	}

	stats.Unseen = len(unseen)
	return unseen, stats
}

// Merge appends unique input postings to history. Existing entries win collisions, and keyless
// history entries are kept as-is.
func Merge(history []models.Posting, input []models.Posting) ([]models.Posting, MergeStats) {
	stats := MergeStats{
		TotalSeen:  len(history),
		TotalInput: len(input),
	}

	keys, _ := NewHistory(nil)
	out := make([]models.Posting, 0, len(history)+len(input))

	for _, posting := range history {
		added, ok := keys.Add(posting)
		if !ok {
			stats.InvalidSeen++
			out = append(out, posting)
			continue
		}
		if added {
			out = append(out, posting)
		}
	}

	for _, posting := range input {
		added, ok := keys.Add(posting)
		if !ok {
			stats.InvalidInput++
			continue
		}
		if added {
			out = append(out, posting)
			stats.Added++
		}
	}

	stats.TotalOut = len(out)
	return out, stats
}
