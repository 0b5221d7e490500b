package boltdb

import (
	"context"
	"fmt"
	"log/slog"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketRoutes        = []byte("routes")
	bucketRounds        = []byte("rounds")
	bucketVerifications = []byte("verifications")
	bucketActions       = []byte("actions")
)

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string, logger *slog.Logger) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db, logger: logger}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRoutes, bucketRounds, bucketVerifications, bucketActions} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
