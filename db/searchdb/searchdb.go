package searchdb

import (
	"context"

	"github.com/meghashyamc/marketsearch/filter"
)

type DB interface {
	IndexDocuments(collection string, documents []map[string]any) error
	MatchIDs(ctx context.Context, collection string, expr filter.Expression) ([]string, error)
	GetDocCount() (uint64, error)
	Close() error
}
