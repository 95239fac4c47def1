// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/marketsearch/config"
	"github.com/meghashyamc/marketsearch/db"
	"github.com/meghashyamc/marketsearch/logger"
	"github.com/meghashyamc/marketsearch/services/ingest"
	"github.com/meghashyamc/marketsearch/services/search"
	"github.com/meghashyamc/marketsearch/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

var testBackends = []string{config.BackendScan, config.BackendIndex}

var testFixtures = map[string]string{
	"technologies.json": `[
		{"id": "t1", "title": "Basic AI", "description": "Entry level machine learning", "keywords": ["ml"], "publishedAt": "2024-01-10T00:00:00Z", "category": {"name": "Software"}},
		{"id": "t2", "title": "AI Platform", "description": "Managed platform", "publishedAt": "2024-03-01T00:00:00Z", "image": {"url": "/media/platform.png"}},
		{"id": "t3", "title": "Solar drying", "description": "Agricultural drying with solar heat", "keywords": ["energy", "AI control"]}
	]`,
	"partners/companies.yaml":    "- id: c1\n  company_name: AI\n  production_capacity: 500 units per month\n  industry: Software\n",
	"research-institutions.json": `[{"id": "r1", "institution_name": "Institute of AI", "institution_type": "Public", "research_areas": []}]`,
	"news.json":                  `{"docs": [{"id": "n1", "title": "Đà Nẵng hosts tech fair", "content": "AI startups gather", "publishedAt": "2024-05-01"}]}`,
	"events.yml":                 "- id: e1\n  title: Techmart\n  description: Demo of AI\n  startDate: \"2024-06-15\"\n",
	"notes.txt":                  "not a fixture",
	"demands.json":               `[{"id": "d1", "title": "Need drones", "description": "Crop spraying"}]`,
}

type testCase struct {
	name           string
	requestHeaders map[string]string
	requestBody    map[string]any
	queryParams    map[string]string
	expectedStatus int
	expectedError  string
	expectedIDs    []string
}

type testResponse[T any] struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    *T     `json:"data"`
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions, backend string) *gin.Engine {
	t.Setenv("ENV", "test")
	t.Setenv("DOCDB_PATH", filepath.Join(t.TempDir(), "documents.db"))
	t.Setenv("INDEX_PATH", "")
	t.Setenv("SEARCH_BACKEND", backend)

	cfg, err := config.Load("test")
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()

	databases, err := db.Open(testLogger, cfg, search.SearchFieldsByCollection())
	assert.NoError(err, "could not open databases")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	var indexer ingest.Indexer
	if databases.Index != nil {
		indexer = databases.Index
	}

	ctx, cancel := context.WithCancel(context.Background())
	searchService := search.New(testLogger, databases.Store, search.WithCollectionTimeout(cfg.GetCollectionTimeout()))
	ingestService := ingest.New(ctx, testLogger, databases.Docs, indexer)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupSearch(router, testLogger, searchService, validator)
	SetupImport(router, testLogger, ingestService, validator)

	t.Cleanup(func() {
		cancel()
		assert.NoError(databases.Close(), "could not close databases")
	})

	return router
}

func writeFixtures(t *testing.T, assert *require.Assertions) string {
	dir := t.TempDir()
	for relPath, content := range testFixtures {
		fullPath := filepath.Join(dir, relPath)
		err := os.MkdirAll(filepath.Dir(fullPath), 0755)
		assert.NoError(err, "could not create fixture sub-directory")
		err = os.WriteFile(fullPath, []byte(content), 0644)
		assert.NoError(err, "could not write fixture file")
	}
	return dir
}

// importFixtures loads the fixtures through the import endpoints and waits for completion.
func importFixtures(t *testing.T, router *gin.Engine, assert *require.Assertions) {
	dir := writeFixtures(t, assert)

	var requestID string
	assert.Eventually(func() bool {
		w := makeTestHTTPRequest(router, assert, http.MethodPost, "/import", defaultTestRequestHeaders, map[string]any{"path": dir}, nil)
		if w.Code != http.StatusAccepted {
			return false
		}
		var body testResponse[ImportResponse]
		assert.NoError(json.Unmarshal(w.Body.Bytes(), &body))
		requestID = body.Data.ID
		return true
	}, 2*time.Second, 10*time.Millisecond, "could not start import")

	assert.Eventually(func() bool {
		w := makeTestHTTPRequest(router, assert, http.MethodGet, "/import/"+requestID, nil, nil, nil)
		var body testResponse[ImportResponse]
		assert.NoError(json.Unmarshal(w.Body.Bytes(), &body))
		return body.Data != nil && body.Data.Status != nil && *body.Data.Status == ingest.ProgressStatusComplete
	}, 5*time.Second, 10*time.Millisecond, "import did not complete")
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]any, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}
