package searchdb

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/marketsearch/config"
	"github.com/meghashyamc/marketsearch/filter"
	"github.com/meghashyamc/marketsearch/logger"
)

const IndexingBatchSize = 100

const (
	indexFieldCollection = "_collection"
	indexFieldID         = "_id"
)

// BleveDB indexes each collection's search fields verbatim (keyword analyzed) so
// substring conditions can run as regexp queries against whole field values.
type BleveDB struct {
	indexPath  string
	logger     logger.Logger
	index      bleve.Index
	schema     map[string][]string
	maxResults int
}

// New opens or creates the index. schema maps each collection to its search fields.
func New(logger logger.Logger, cfg *config.Config, schema map[string][]string) (*BleveDB, error) {
	mapping := createIndexMapping(schema)

	indexPath := cfg.GetIndexPath()
	if len(indexPath) == 0 {
		index, err := bleve.NewMemOnly(mapping)
		if err != nil {
			logger.Error("could not create in-memory index", "err", err.Error())
			return nil, err
		}
		return &BleveDB{logger: logger, index: index, schema: schema, maxResults: cfg.GetMaxResultsPerCollection()}, nil
	}

	index, err := bleve.New(indexPath, mapping)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Error("could not open index", "err", err.Error(), "path", indexPath)
			return nil, err
		}
	}
	return &BleveDB{indexPath: indexPath, logger: logger, index: index, schema: schema, maxResults: cfg.GetMaxResultsPerCollection()}, nil
}

func createIndexMapping(schema map[string][]string) mapping.IndexMapping {

	indexMapping := bleve.NewIndexMapping()
	indexMapping.TypeField = indexFieldCollection

	for collection, fields := range schema {
		docMapping := bleve.NewDocumentMapping()
		docMapping.Dynamic = false

		docMapping.AddFieldMappingsAt(indexFieldCollection, bleve.NewKeywordFieldMapping())

		// Whole values as single terms, case preserved
		for _, field := range fields {
			fieldMapping := bleve.NewKeywordFieldMapping()
			fieldMapping.Store = false
			fieldMapping.IncludeInAll = false
			docMapping.AddFieldMappingsAt(field, fieldMapping)
		}

		indexMapping.AddDocumentMapping(collection, docMapping)
	}

	return indexMapping
}

func indexDocumentID(collection string, id string) string {
	return collection + "/" + id
}

// IndexDocuments indexes the search fields of documents. Each document must carry an id.
func (b *BleveDB) IndexDocuments(collection string, documents []map[string]any) error {
	fields, ok := b.schema[collection]
	if !ok {
		return fmt.Errorf("collection %s is not indexed", collection)
	}

	batch := b.index.NewBatch()

	for i, doc := range documents {
		id, ok := doc["id"].(string)
		if !ok || id == "" {
			b.logger.Error("could not index document without string id", "collection", collection)
			return fmt.Errorf("document in %s has no string id", collection)
		}

		if err := batch.Index(indexDocumentID(collection, id), indexableFields(collection, fields, doc)); err != nil {
			b.logger.Error("could not index document", "collection", collection, "id", id, "err", err.Error())
			return err
		}

		// Execute batch when it reaches the batch size
		if (i+1)%IndexingBatchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index documents", "collection", collection, "err", err.Error())
			return err
		}
	}

	return nil
}

// indexableFields keeps only string (or string list) values of the search fields.
func indexableFields(collection string, fields []string, doc map[string]any) map[string]any {
	indexed := map[string]any{indexFieldCollection: collection}
	for _, field := range fields {
		switch value := doc[field].(type) {
		case string:
			indexed[field] = value
		case []any:
			var values []string
			for _, item := range value {
				if s, ok := item.(string); ok {
					values = append(values, s)
				}
			}
			if len(values) > 0 {
				indexed[field] = values
			}
		}
	}
	return indexed
}

// MatchIDs returns the ids of documents in collection matching expr, in id order.
func (b *BleveDB) MatchIDs(ctx context.Context, collection string, expr filter.Expression) ([]string, error) {
	if len(expr.Any) == 0 {
		return nil, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(collection, expr), b.maxResults, 0, false)
	searchRequest.SortBy([]string{indexFieldID})

	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		b.logger.Error("search failed", "collection", collection, "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	prefix := indexDocumentID(collection, "")
	ids := make([]string, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		ids = append(ids, strings.TrimPrefix(hit.ID, prefix))
	}

	return ids, nil
}

func buildSearchQuery(collection string, expr filter.Expression) query.Query {

	disjunctQuery := bleve.NewDisjunctionQuery()
	for _, condition := range expr.Any {
		containsQuery := bleve.NewRegexpQuery(containsPattern(condition.Value))
		containsQuery.SetField(condition.Field)
		disjunctQuery.AddQuery(containsQuery)
	}

	collectionQuery := bleve.NewTermQuery(collection)
	collectionQuery.SetField(indexFieldCollection)

	return bleve.NewConjunctionQuery(collectionQuery, disjunctQuery)
}

// containsPattern matches any term holding value as a literal substring, across newlines.
func containsPattern(value string) string {
	return "(?s).*" + regexp.QuoteMeta(value) + ".*"
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}
