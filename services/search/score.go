package search

import "strings"

const (
	scoreExactMatch     = 200
	scorePrefixMatch    = 150
	scoreSubstringMatch = 100
	scoreNoMatch        = 0
)

// Score rates how well the result's title matches query. Only the title is considered.
func Score(result Result, query string) float64 {
	title := strings.ToLower(result.Title)
	query = strings.ToLower(query)

	switch {
	case title == query:
		return scoreExactMatch
	case strings.HasPrefix(title, query):
		return scorePrefixMatch
	case strings.Contains(title, query):
		return scoreSubstringMatch
	default:
		return scoreNoMatch
	}
}
