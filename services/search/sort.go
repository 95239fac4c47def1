package search

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortDate      SortMode = "date"
	SortTitle     SortMode = "title"
)

var sortModes = []SortMode{SortRelevance, SortDate, SortTitle}

// IsValidSortMode reports whether s names a supported sort mode.
func IsValidSortMode(s string) bool {
	return slices.Contains(sortModes, SortMode(s))
}

// Comparator orders two results; negative means a sorts before b.
type Comparator interface {
	Compare(a, b Result) int
}

// NewComparator returns the comparator for mode. Unknown modes sort by relevance.
// The returned comparator is not safe for concurrent use.
func NewComparator(mode SortMode, query string) Comparator {
	switch mode {
	case SortDate:
		return dateComparator{}
	case SortTitle:
		return titleComparator{collator: collate.New(language.Vietnamese)}
	default:
		return relevanceComparator{query: query}
	}
}

// Sort orders results in place with a stable sort. Relevance sorting fills in
// missing scores first.
func Sort(results []Result, mode SortMode, query string) {
	comparator := NewComparator(mode, query)
	if rc, ok := comparator.(relevanceComparator); ok {
		rc.populate(results)
	}
	slices.SortStableFunc(results, comparator.Compare)
}

type relevanceComparator struct {
	query string
}

func (c relevanceComparator) populate(results []Result) {
	for i := range results {
		if results[i].Score == nil {
			score := Score(results[i], c.query)
			results[i].Score = &score
		}
	}
}

func (c relevanceComparator) score(r Result) float64 {
	if r.Score != nil {
		return *r.Score
	}
	return Score(r, c.query)
}

func (c relevanceComparator) Compare(a, b Result) int {
	return cmp.Compare(c.score(b), c.score(a))
}

type dateComparator struct{}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Compare sorts newest first by publishedAt, else startDate. Undated results sort
// after dated ones.
func (dateComparator) Compare(a, b Result) int {
	aTime, aOK := resultDate(a)
	bTime, bOK := resultDate(b)

	switch {
	case !aOK && !bOK:
		return 0
	case !aOK:
		return 1
	case !bOK:
		return -1
	default:
		return bTime.Compare(aTime)
	}
}

func resultDate(r Result) (time.Time, bool) {
	for _, key := range []string{"publishedAt", "startDate"} {
		if value, ok := r.Metadata[key]; ok && value != nil {
			if t, ok := parseDate(value); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	case fmt.Stringer:
		return parseDate(v.String())
	}
	return time.Time{}, false
}

type titleComparator struct {
	collator *collate.Collator
}

func (c titleComparator) Compare(a, b Result) int {
	return c.collator.CompareString(a.Title, b.Title)
}
