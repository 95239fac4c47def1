package docdb

import (
	"context"

	"github.com/meghashyamc/marketsearch/filter"
)

type DB interface {
	PutDocuments(collection string, documents []Document) error
	GetDocuments(ctx context.Context, collection string, ids []string) ([]map[string]any, error)
	Query(ctx context.Context, collection string, expr filter.Expression) ([]map[string]any, error)
	ScanBatches(ctx context.Context, collection string, batchSize int, fn func([]Document) error) error
	CountDocuments(collection string) (int, error)
	SetStatus(requestID string, status string) error
	GetStatus(requestID string) (string, error)
	Close() error
}
