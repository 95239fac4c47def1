package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/marketsearch/db/docdb"
	"github.com/meghashyamc/marketsearch/logger"
)

// DocumentStore is the storage the import writes documents and progress into.
type DocumentStore interface {
	PutDocuments(collection string, documents []docdb.Document) error
	SetStatus(requestID string, status string) error
	GetStatus(requestID string) (string, error)
}

// Indexer receives the same batches when the index backend is enabled.
type Indexer interface {
	IndexDocuments(collection string, documents []map[string]any) error
}

const (
	ProgressStatusQueued     = 0
	ProgressStatusDiscovered = 10
	ProgressStatusDecoded    = 20
	ProgressStatusComplete   = 100
	ProgressStatusFailed     = -1

	BatchSize     = 100
	maxImportTime = 30 * time.Minute
)

var ErrImportInProgress = errors.New("import already in progress")

type Service struct {
	logger  logger.Logger
	store   DocumentStore
	indexer Indexer
	importC chan importRequest
}

type importRequest struct {
	rootPath  string
	requestID string
}

// New starts the background importer. indexer may be nil.
func New(ctx context.Context, logger logger.Logger, store DocumentStore, indexer Indexer) *Service {
	ingestService := &Service{
		logger:  logger,
		store:   store,
		indexer: indexer,
		importC: make(chan importRequest),
	}

	go ingestService.run(ctx)
	return ingestService
}

// Start queues an import of the fixture files under rootPath and returns its request id.
// Only one import runs at a time.
func (s *Service) Start(rootPath string) (string, error) {
	requestID := uuid.New().String()
	s.setRequestStatus(requestID, ProgressStatusQueued)

	select {
	// picked up by s.run
	case s.importC <- importRequest{rootPath: rootPath, requestID: requestID}:
		return requestID, nil
	default:
		s.logger.Warn("request to import while an import is already in progress")
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return "", ErrImportInProgress
	}
}

// GetStatus returns the progress of an import request.
func (s *Service) GetStatus(requestID string) (int, error) {
	value, err := s.store.GetStatus(requestID)
	if err != nil {
		return 0, fmt.Errorf("request not found: %w", err)
	}

	status, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid status value: %w", err)
	}

	return status, nil
}

func (s *Service) run(ctx context.Context) {
	for {
		select {
		case req := <-s.importC:
			importCtx, cancel := context.WithTimeout(ctx, maxImportTime)
			s.doImport(importCtx, req.rootPath, req.requestID)
			cancel()
		case <-ctx.Done():
			s.logger.Info("ingest service stopped", "reason", ctx.Err())
			return
		}
	}
}

func (s *Service) doImport(ctx context.Context, rootPath string, requestID string) {
	files, err := s.discoverFiles(rootPath)
	if err != nil {
		s.logger.Error("failed to import", "request_id", requestID, "err", err.Error())
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return
	}
	s.logger.Info("discovered import files", slog.Int("num_of_files", len(files)))
	s.setRequestStatus(requestID, ProgressStatusDiscovered)

	var batches []batch
	total := 0
	for _, file := range files {
		docs, err := decodeFile(file.Path)
		if err != nil {
			s.logger.Error("skipping undecodable file", "path", file.Path, "err", err.Error())
			continue
		}
		for _, doc := range docs {
			assignID(doc)
		}
		batches = append(batches, splitBatches(file.Collection, docs)...)
		total += len(docs)
	}
	s.setRequestStatus(requestID, ProgressStatusDecoded)

	if err := s.writeBatches(ctx, requestID, batches, total); err != nil {
		s.logger.Error("failed to import", "request_id", requestID, "err", err.Error())
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return
	}

	s.logger.Info("finished import successfully", "request_id", requestID, "documents", total)
	s.setRequestStatus(requestID, ProgressStatusComplete)
}

type batch struct {
	collection string
	documents  []map[string]any
}

func splitBatches(collection string, docs []map[string]any) []batch {
	var batches []batch
	for start := 0; start < len(docs); start += BatchSize {
		batches = append(batches, batch{
			collection: collection,
			documents:  docs[start:min(start+BatchSize, len(docs))],
		})
	}
	return batches
}

func (s *Service) writeBatches(ctx context.Context, requestID string, batches []batch, total int) error {
	written := 0
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("import cancelled: %w", err)
		}

		records := make([]docdb.Document, 0, len(b.documents))
		for _, doc := range b.documents {
			records = append(records, docdb.Document{ID: doc["id"].(string), Body: doc})
		}
		if err := s.store.PutDocuments(b.collection, records); err != nil {
			return fmt.Errorf("failed to store %s documents: %w", b.collection, err)
		}
		if s.indexer != nil {
			if err := s.indexer.IndexDocuments(b.collection, b.documents); err != nil {
				return fmt.Errorf("failed to index %s documents: %w", b.collection, err)
			}
		}

		written += len(b.documents)
		s.logger.Debug("imported batch", "collection", b.collection, "count", fmt.Sprintf("%d/%d", written, total))
		s.setRequestStatus(requestID, getProgressPercentage(written, total, ProgressStatusDecoded, ProgressStatusComplete))
	}
	return nil
}

func (s *Service) setRequestStatus(requestID string, status int) {
	if err := s.store.SetStatus(requestID, strconv.Itoa(status)); err != nil {
		s.logger.Error("failed to update request status", "request_id", requestID, "progress", status, "err", err.Error())
	}
}

func getProgressPercentage(done int, total int, initial int, final int) int {
	if done == 0 || total == 0 {
		return initial
	}

	if done >= total {
		return final
	}

	progress := float64(done) / float64(total)
	result := float64(initial) + progress*float64(final-initial)

	return int(result)
}
