package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/marketsearch/metrics"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	testLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := newRouter()
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(testLogger))
	router.Use(metrics.Middleware())
	router.GET("/health", health())
	router.GET("/metrics", metrics.Handler())
	return router
}

func TestRouter(t *testing.T) {
	router := newTestRouter()

	testCases := []struct {
		name              string
		method            string
		path              string
		requestID         string
		expectedStatus    int
		expectedBody      string
		expectedRequestID string
	}{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK, expectedBody: "OK"},
		{name: "PropagatesRequestID", method: http.MethodGet, path: "/health", requestID: "abc-123", expectedStatus: http.StatusOK, expectedRequestID: "abc-123"},
		{name: "Preflight", method: http.MethodOptions, path: "/search", expectedStatus: http.StatusNoContent},
		{name: "UnknownRoute", method: http.MethodGet, path: "/nowhere", expectedStatus: http.StatusNotFound},
		{name: "Metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK, expectedBody: "marketsearch_http_requests_total"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := httptest.NewRecorder()
			req, err := http.NewRequest(testCase.method, testCase.path, nil)
			assert.NoError(err)
			if testCase.requestID != "" {
				req.Header.Set(HeaderRequestID, testCase.requestID)
			}

			router.ServeHTTP(w, req)

			assert.Equal(testCase.expectedStatus, w.Code)
			assert.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
			if testCase.expectedBody != "" {
				assert.True(strings.Contains(w.Body.String(), testCase.expectedBody), "body %q", w.Body.String())
			}
			if testCase.method == http.MethodOptions {
				return
			}
			if testCase.expectedRequestID != "" {
				assert.Equal(testCase.expectedRequestID, w.Header().Get(HeaderRequestID))
			} else {
				assert.Len(w.Header().Get(HeaderRequestID), 36)
			}
		})
	}
}
