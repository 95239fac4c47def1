package docdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meghashyamc/marketsearch/config"
	"github.com/meghashyamc/marketsearch/filter"
	"github.com/meghashyamc/marketsearch/logger"
	bolt "go.etcd.io/bbolt"
)

type BoltDB struct {
	store      *bolt.DB
	logger     logger.Logger
	maxResults int
}

const (
	requestsBucket         = "requests"
	collectionBucketPrefix = "docs:"
	defaultDocDBFile       = "documents.db"

	// how many documents a scan reads between context checks
	contextCheckInterval = 256
)

var errStopScan = errors.New("stop scan")

func New(logger logger.Logger, cfg *config.Config) (*BoltDB, error) {
	docDBPath := cfg.GetDocDBPath()
	if len(docDBPath) == 0 {
		docDBPath = filepath.Join(cfg.GetStoragePath(), defaultDocDBFile)
	}
	if err := os.MkdirAll(filepath.Dir(docDBPath), 0755); err != nil {
		logger.Error("failed to create document database directory", "err", err.Error(), "path", docDBPath)
		return nil, fmt.Errorf("failed to create document database directory: %w", err)
	}

	store, err := bolt.Open(docDBPath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		logger.Error("failed to open database", "err", err.Error(), "path", docDBPath)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	boltDB := &BoltDB{
		store:      store,
		logger:     logger,
		maxResults: cfg.GetMaxResultsPerCollection(),
	}

	if err := boltDB.initBucket(requestsBucket); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return boltDB, nil
}

func collectionBucket(collection string) []byte {
	return []byte(collectionBucketPrefix + collection)
}

func (b *BoltDB) initBucket(name string) error {
	return b.store.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			b.logger.Error("failed to create bucket", "bucket", name, "err", err.Error())
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
}

// PutDocuments upserts documents into the collection's bucket in one transaction.
func (b *BoltDB) PutDocuments(collection string, documents []Document) error {
	if collection == "" {
		return &InvalidKeyError{Key: collection, Reason: "collection cannot be empty"}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(collectionBucket(collection))
		if err != nil {
			b.logger.Error("failed to create collection bucket", "collection", collection, "err", err.Error())
			return fmt.Errorf("failed to create collection bucket: %w", err)
		}

		for _, doc := range documents {
			if doc.ID == "" {
				b.logger.Error("document id cannot be empty", "collection", collection)
				return &InvalidKeyError{
					Key:    doc.ID,
					Reason: "document id cannot be empty",
				}
			}

			data, err := json.Marshal(doc.Body)
			if err != nil {
				b.logger.Error("failed to marshal document", "collection", collection, "id", doc.ID, "err", err.Error())
				return fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
			}

			if err := bucket.Put([]byte(doc.ID), data); err != nil {
				b.logger.Error("failed to put document", "collection", collection, "id", doc.ID, "err", err.Error())
				return fmt.Errorf("failed to put document %s: %w", doc.ID, err)
			}
		}

		return nil
	})
}

// GetDocuments loads documents by id, preserving the order of ids. Unknown ids are skipped.
func (b *BoltDB) GetDocuments(ctx context.Context, collection string, ids []string) ([]map[string]any, error) {
	documents := make([]map[string]any, 0, len(ids))

	err := b.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(collectionBucket(collection))
		if bucket == nil {
			return nil
		}

		for i, id := range ids {
			if i%contextCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			value := bucket.Get([]byte(id))
			if value == nil {
				b.logger.Debug("document not found", "collection", collection, "id", id)
				continue
			}

			doc, err := decodeDocument(id, value)
			if err != nil {
				b.logger.Warn("skipping undecodable document", "collection", collection, "id", id, "err", err.Error())
				continue
			}
			documents = append(documents, doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from %s: %w", collection, err)
	}

	return documents, nil
}

// Query scans the collection in key order and returns the documents matching expr,
// up to the configured maximum.
func (b *BoltDB) Query(ctx context.Context, collection string, expr filter.Expression) ([]map[string]any, error) {
	var documents []map[string]any

	err := b.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(collectionBucket(collection))
		if bucket == nil {
			return nil
		}

		scanned := 0
		return bucket.ForEach(func(key, value []byte) error {
			if scanned%contextCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			scanned++

			doc, err := decodeDocument(string(key), value)
			if err != nil {
				b.logger.Warn("skipping undecodable document", "collection", collection, "id", string(key), "err", err.Error())
				return nil
			}
			if !expr.Matches(doc) {
				return nil
			}

			documents = append(documents, doc)
			if b.maxResults > 0 && len(documents) >= b.maxResults {
				return errStopScan
			}
			return nil
		})
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	return documents, nil
}

// ScanBatches walks the collection in key order and hands documents to fn in
// batches of at most batchSize.
func (b *BoltDB) ScanBatches(ctx context.Context, collection string, batchSize int, fn func([]Document) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	err := b.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(collectionBucket(collection))
		if bucket == nil {
			return nil
		}

		batch := make([]Document, 0, batchSize)
		err := bucket.ForEach(func(key, value []byte) error {
			doc, err := decodeDocument(string(key), value)
			if err != nil {
				b.logger.Warn("skipping undecodable document", "collection", collection, "id", string(key), "err", err.Error())
				return nil
			}

			batch = append(batch, Document{ID: string(key), Body: doc})
			if len(batch) < batchSize {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]Document, 0, batchSize)
			return nil
		})
		if err != nil {
			return err
		}
		if len(batch) > 0 {
			return fn(batch)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", collection, err)
	}

	return nil
}

func (b *BoltDB) CountDocuments(collection string) (int, error) {
	count := 0
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(collectionBucket(collection))
		if bucket == nil {
			return nil
		}
		count = bucket.Stats().KeyN
		return nil
	})

	return count, err
}

func (b *BoltDB) SetStatus(requestID string, status string) error {
	if requestID == "" {
		b.logger.Error("request id cannot be empty")
		return &InvalidKeyError{
			Key:    requestID,
			Reason: "request id cannot be empty",
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(requestsBucket))
		if bucket == nil {
			b.logger.Error("bucket not found", "bucket", requestsBucket)
			return fmt.Errorf("bucket not found")
		}

		if err := bucket.Put([]byte(requestID), []byte(status)); err != nil {
			b.logger.Error("failed to set status", "request_id", requestID, "err", err.Error())
			return fmt.Errorf("failed to set status for %s: %w", requestID, err)
		}

		return nil
	})
}

func (b *BoltDB) GetStatus(requestID string) (string, error) {
	if requestID == "" {
		return "", &InvalidKeyError{
			Key:    requestID,
			Reason: "request id cannot be empty",
		}
	}

	var value []byte
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(requestsBucket))
		if bucket == nil {
			b.logger.Error("bucket not found", "bucket", requestsBucket)
			return fmt.Errorf("bucket not found")
		}

		v := bucket.Get([]byte(requestID))
		if v == nil {
			return &NotFoundError{Bucket: requestsBucket, Key: requestID}
		}

		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return "", err
	}

	return string(value), nil
}

func (b *BoltDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

func decodeDocument(id string, data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	if _, ok := doc["id"]; !ok {
		doc["id"] = id
	}
	return doc, nil
}
