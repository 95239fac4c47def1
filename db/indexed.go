package db

import (
	"context"
	"fmt"

	"github.com/meghashyamc/marketsearch/filter"
)

type idMatcher interface {
	MatchIDs(ctx context.Context, collection string, expr filter.Expression) ([]string, error)
}

type documentLoader interface {
	GetDocuments(ctx context.Context, collection string, ids []string) ([]map[string]any, error)
}

// Indexed resolves matches through the search index and loads the documents
// from the document database.
type Indexed struct {
	index idMatcher
	docs  documentLoader
}

func NewIndexed(index idMatcher, docs documentLoader) *Indexed {
	return &Indexed{index: index, docs: docs}
}

func (s *Indexed) Query(ctx context.Context, collection string, expr filter.Expression) ([]map[string]any, error) {
	ids, err := s.index.MatchIDs(ctx, collection, expr)
	if err != nil {
		return nil, fmt.Errorf("could not match %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return s.docs.GetDocuments(ctx, collection, ids)
}
