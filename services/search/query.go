package search

import "github.com/meghashyamc/marketsearch/filter"

// BuildFilter builds the OR-of-contains expression sent to the store for a collection.
// The query is used as given; validation happens before this point.
func BuildFilter(collection string, query string) filter.Expression {
	config := MustLookup(collection)
	conditions := make([]filter.Contains, 0, len(config.SearchFields))
	for _, field := range config.SearchFields {
		conditions = append(conditions, filter.Contains{Field: field, Value: query})
	}
	return filter.Or(conditions...)
}
