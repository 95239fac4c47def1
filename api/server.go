package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/marketsearch/config"
	"github.com/meghashyamc/marketsearch/db"
	"github.com/meghashyamc/marketsearch/logger"
	"github.com/meghashyamc/marketsearch/metrics"
	"github.com/meghashyamc/marketsearch/services/ingest"
	"github.com/meghashyamc/marketsearch/services/search"
	"github.com/meghashyamc/marketsearch/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg           *config.Config
	router        *gin.Engine
	httpServer    *http.Server
	databases     *db.Databases
	validator     *validation.Validator
	searchService *search.Service
	ingestService *ingest.Service
	logger        logger.Logger
}

// Run serves the HTTP API until ctx is cancelled or the process is interrupted.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	s.setupRouter()
	s.setupHTTPServer()
	s.waitForShutdown(ctx)

	return nil
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	s.databases, err = db.Open(s.logger, s.cfg, search.SearchFieldsByCollection())
	if err != nil {
		s.logger.Error("error opening databases", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	s.searchService = search.New(s.logger, s.databases.Store,
		search.WithCollectionTimeout(s.cfg.GetCollectionTimeout()),
		search.WithObserver(metrics.SearchObserver{}),
	)

	var indexer ingest.Indexer
	if s.databases.Index != nil {
		indexer = s.databases.Index
	}
	s.ingestService = ingest.New(ctx, s.logger, s.databases.Docs, indexer)

	s.logger.Info("dependencies ready", "backend", s.cfg.GetSearchBackend())
	return nil
}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(s.logger))
	router.Use(metrics.Middleware())

	setupRoutes(router, s.logger, s.searchService, s.ingestService, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() {

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpServer
	go func() {
		s.logger.Info("starting http server", "addr", httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
}

func (s *server) waitForShutdown(ctx context.Context) {
	<-ctx.Done()
	s.logger.Info("starting to shut down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
	}
	if err := s.databases.Close(); err != nil {
		s.logger.Error("error closing databases", "err", err.Error())
	}
	s.logger.Info("shut down http server successfully")
}
