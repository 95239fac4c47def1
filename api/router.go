package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/marketsearch/api/handlers"
	"github.com/meghashyamc/marketsearch/logger"
	"github.com/meghashyamc/marketsearch/metrics"
	"github.com/meghashyamc/marketsearch/services/ingest"
	"github.com/meghashyamc/marketsearch/services/search"
	"github.com/meghashyamc/marketsearch/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, searchService *search.Service, ingestService *ingest.Service, validator *validation.Validator) {
	router.GET("/health", health())
	router.GET("/metrics", metrics.Handler())

	handlers.SetupSearch(router, logger, searchService, validator)
	handlers.SetupImport(router, logger, ingestService, validator)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
