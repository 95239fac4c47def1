package search

import (
	"context"
	"fmt"
	"time"

	"github.com/meghashyamc/marketsearch/filter"
	"github.com/meghashyamc/marketsearch/logger"
	"golang.org/x/sync/errgroup"
)

const defaultCollectionTimeout = 5 * time.Second

// Store runs a filter expression against one collection.
type Store interface {
	Query(ctx context.Context, collection string, expr filter.Expression) ([]map[string]any, error)
}

// Observer receives per-collection query outcomes.
type Observer interface {
	ObserveCollectionQuery(collection string, duration time.Duration, err error)
}

type Service struct {
	logger            logger.Logger
	store             Store
	observer          Observer
	collectionTimeout time.Duration
}

type Option func(*Service)

// WithCollectionTimeout bounds each collection query. A collection that does not
// answer in time contributes no results.
func WithCollectionTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.collectionTimeout = timeout
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

func New(logger logger.Logger, store Store, opts ...Option) *Service {
	s := &Service{
		logger:            logger,
		store:             store,
		collectionTimeout: defaultCollectionTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search queries the targeted collections concurrently, merges and orders their
// results, and returns the requested page.
func (s *Service) Search(ctx context.Context, request Request) (*Response, error) {
	collections, err := targetCollections(request.Type)
	if err != nil {
		return nil, err
	}

	perCollection := make([][]Result, len(collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, collection := range collections {
		i, collection := i, collection
		g.Go(func() error {
			perCollection[i] = s.searchCollection(gctx, collection, request.Query)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search cancelled: %w", err)
	}

	var combined []Result
	for _, results := range perCollection {
		combined = append(combined, results...)
	}

	Sort(combined, request.Sort, request.Query)

	types := make(map[string]int)
	for _, result := range combined {
		types[result.Type]++
	}

	page, totalPages := Paginate(combined, request.Page, request.Limit)

	return &Response{
		Results:    page,
		Total:      len(combined),
		Page:       request.Page,
		Limit:      request.Limit,
		TotalPages: totalPages,
		Query:      request.Query,
		Types:      types,
	}, nil
}

func targetCollections(resultType string) ([]string, error) {
	if resultType == "" || resultType == TypeAll {
		return Collections(), nil
	}
	collection, ok := CollectionForType(resultType)
	if !ok {
		return nil, fmt.Errorf("unknown result type %q", resultType)
	}
	return []string{collection}, nil
}

// searchCollection never fails: errors and timeouts are logged and yield no results.
func (s *Service) searchCollection(ctx context.Context, collection string, query string) []Result {
	start := time.Now()
	docs, err := s.queryWithTimeout(ctx, collection, BuildFilter(collection, query))
	if s.observer != nil {
		s.observer.ObserveCollectionQuery(collection, time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn("collection query failed, skipping collection", "collection", collection, "err", err.Error())
		return nil
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		results = append(results, Normalize(doc, collection))
	}
	s.logger.Debug("collection searched", "collection", collection, "matches", len(results))
	return results
}

type queryOutcome struct {
	docs []map[string]any
	err  error
}

func (s *Service) queryWithTimeout(ctx context.Context, collection string, expr filter.Expression) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.collectionTimeout)
	defer cancel()

	outcome := make(chan queryOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcome <- queryOutcome{err: fmt.Errorf("collection query panicked: %v", r)}
			}
		}()
		docs, err := s.store.Query(ctx, collection, expr)
		outcome <- queryOutcome{docs: docs, err: err}
	}()

	select {
	case o := <-outcome:
		return o.docs, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("collection query abandoned: %w", ctx.Err())
	}
}
