// Package storage provides a BoltDB-backed store for the reference training
// sample the feature scaler is fitted on.
//
// The export collaborator (or scripts/generate_sample_data.go) writes feature
// rows once; the service only ever reads them at startup.
package storage

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	featuresBucket = "training_features" // Bucket holding one JSON feature row per key
)

// Store wraps a BoltDB database file.
type Store struct {
	db *bbolt.DB
}

// Options controls how the database file is opened.
type Options struct {
	ReadOnly bool
}

// New opens (or creates) the database at path and ensures the feature bucket exists.
func New(path string) (*Store, error) {
	return Open(path, Options{})
}

// Open opens the database at path. Read-only opens fail when the file is missing
// and never create the feature bucket.
func Open(path string, opts Options) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: opts.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.ReadOnly {
		return &Store{db: db}, nil
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(featuresBucket)); err != nil {
			return fmt.Errorf("create features bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database. Closing twice is harmless.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}
