package searchdb

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/meghashyamc/marketsearch/config"
	"github.com/meghashyamc/marketsearch/filter"
	"github.com/stretchr/testify/require"
)

var testSchema = map[string][]string{
	"technologies": {"title", "description", "keywords"},
	"companies":    {"company_name", "name"},
}

func newTestIndex(t *testing.T, assert *require.Assertions) *BleveDB {
	t.Setenv("INDEX_PATH", "")

	cfg, err := config.Load("test")
	assert.NoError(err, "could not load config")

	testLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	index, err := New(testLogger, cfg, testSchema)
	assert.NoError(err, "could not create search index")
	t.Cleanup(func() {
		assert.NoError(index.Close(), "could not close search index")
	})

	return index
}

func TestMatchIDs(t *testing.T) {
	assert := require.New(t)
	index := newTestIndex(t, assert)

	assert.NoError(index.IndexDocuments("technologies", []map[string]any{
		{"id": "t2", "title": "Basic AI", "description": "entry level"},
		{"id": "t1", "title": "AI Platform", "description": "machine learning (ML) suite"},
		{"id": "t3", "title": "Solar panels", "keywords": []any{"energy", "green tech"}},
		{"id": "t4", "title": "Nông nghiệp thông minh", "description": "line one\nline two"},
	}))
	assert.NoError(index.IndexDocuments("companies", []map[string]any{
		{"id": "c1", "company_name": "AI Works", "title": "ignored"},
	}))

	count, err := index.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(5), count)

	testCases := []struct {
		name        string
		collection  string
		expr        filter.Expression
		expectedIDs []string
	}{
		{
			name:        "SubstringInTitleOrderedByID",
			collection:  "technologies",
			expr:        filter.Or(filter.Contains{Field: "title", Value: "AI"}, filter.Contains{Field: "description", Value: "AI"}),
			expectedIDs: []string{"t1", "t2"},
		},
		{
			name:        "CasePreserving",
			collection:  "technologies",
			expr:        filter.Or(filter.Contains{Field: "title", Value: "ai"}),
			expectedIDs: []string{},
		},
		{
			name:        "RegexpMetaCharactersAreLiteral",
			collection:  "technologies",
			expr:        filter.Or(filter.Contains{Field: "description", Value: "(ML)"}),
			expectedIDs: []string{"t1"},
		},
		{
			name:        "ListField",
			collection:  "technologies",
			expr:        filter.Or(filter.Contains{Field: "keywords", Value: "green"}),
			expectedIDs: []string{"t3"},
		},
		{
			name:        "UnicodeSubstring",
			collection:  "technologies",
			expr:        filter.Or(filter.Contains{Field: "title", Value: "nghiệp"}),
			expectedIDs: []string{"t4"},
		},
		{
			name:        "AcrossNewlines",
			collection:  "technologies",
			expr:        filter.Or(filter.Contains{Field: "description", Value: "two"}),
			expectedIDs: []string{"t4"},
		},
		{
			name:        "RestrictedToCollection",
			collection:  "companies",
			expr:        filter.Or(filter.Contains{Field: "company_name", Value: "AI"}, filter.Contains{Field: "title", Value: "AI"}),
			expectedIDs: []string{"c1"},
		},
		{
			name:        "UnindexedFieldDoesNotMatch",
			collection:  "companies",
			expr:        filter.Or(filter.Contains{Field: "title", Value: "ignored"}),
			expectedIDs: []string{},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			ids, err := index.MatchIDs(context.Background(), testCase.collection, testCase.expr)
			assert.NoError(err)
			assert.Equal(testCase.expectedIDs, ids)
		})
	}
}

func TestIndexDocumentsRequiresID(t *testing.T) {
	assert := require.New(t)
	index := newTestIndex(t, assert)

	assert.Error(index.IndexDocuments("technologies", []map[string]any{{"title": "no id"}}))
	assert.Error(index.IndexDocuments("auctions", []map[string]any{{"id": "a1"}}))
}
