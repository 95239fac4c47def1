package db

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/meghashyamc/marketsearch/config"
	"github.com/meghashyamc/marketsearch/db/docdb"
	"github.com/meghashyamc/marketsearch/db/searchdb"
	"github.com/meghashyamc/marketsearch/filter"
	"github.com/meghashyamc/marketsearch/logger"
)

// Store answers per-collection filter queries with raw documents.
type Store interface {
	Query(ctx context.Context, collection string, expr filter.Expression) ([]map[string]any, error)
}

// Databases bundles the opened storage for the configured backend.
// Index is nil unless the index backend is selected.
type Databases struct {
	Docs  docdb.DB
	Index searchdb.DB
	Store Store
}

// Open opens the document database and, for the index backend, the search index.
// schema maps each collection to its search fields. An index holding fewer
// documents than the document database is rebuilt from it.
func Open(logger logger.Logger, cfg *config.Config, schema map[string][]string) (*Databases, error) {
	docs, err := docdb.New(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not open document database: %w", err)
	}

	switch cfg.GetSearchBackend() {
	case config.BackendIndex:
		index, err := searchdb.New(logger, cfg, schema)
		if err != nil {
			docs.Close()
			return nil, fmt.Errorf("could not open search index: %w", err)
		}
		if err := syncIndex(context.Background(), logger, docs, index, schema); err != nil {
			index.Close()
			docs.Close()
			return nil, fmt.Errorf("could not rebuild search index: %w", err)
		}
		return &Databases{Docs: docs, Index: index, Store: NewIndexed(index, docs)}, nil
	default:
		return &Databases{Docs: docs, Store: docs}, nil
	}
}

// syncIndex reindexes every collection from the document database when the
// index is missing documents.
func syncIndex(ctx context.Context, logger logger.Logger, docs docdb.DB, index searchdb.DB, schema map[string][]string) error {
	collections := make([]string, 0, len(schema))
	for collection := range schema {
		collections = append(collections, collection)
	}
	slices.Sort(collections)

	stored := uint64(0)
	for _, collection := range collections {
		count, err := docs.CountDocuments(collection)
		if err != nil {
			return fmt.Errorf("could not count %s documents: %w", collection, err)
		}
		stored += uint64(count)
	}

	indexed, err := index.GetDocCount()
	if err != nil {
		return fmt.Errorf("could not count indexed documents: %w", err)
	}
	if indexed >= stored {
		return nil
	}

	logger.Info("rebuilding search index from document database", "indexed", indexed, "stored", stored)
	for _, collection := range collections {
		err := docs.ScanBatches(ctx, collection, searchdb.IndexingBatchSize, func(batch []docdb.Document) error {
			bodies := make([]map[string]any, 0, len(batch))
			for _, doc := range batch {
				doc.Body["id"] = doc.ID
				bodies = append(bodies, doc.Body)
			}
			return index.IndexDocuments(collection, bodies)
		})
		if err != nil {
			return err
		}
	}
	logger.Info("search index rebuilt", "collections", len(collections))

	return nil
}

func (d *Databases) Close() error {
	var errs []error
	if d.Index != nil {
		errs = append(errs, d.Index.Close())
	}
	errs = append(errs, d.Docs.Close())
	return errors.Join(errs...)
}
