package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"credit-risk/internal/features"

	"go.etcd.io/bbolt"
)

// PutFeatures appends training rows in a single transaction.
func (s *Store) PutFeatures(records []features.FeatureRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(featuresBucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", featuresBucket)
		}

		for _, rec := range records {
			seq, err := b.NextSequence()
			if err != nil {
				return fmt.Errorf("next sequence: %w", err)
			}

			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal feature record: %w", err)
			}

			if err := b.Put(sequenceKey(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Features returns every stored row in insertion order.
// Rows that fail to decode are returned as an error rather than skipped,
// since a partially readable training split would silently shift the scaler.
func (s *Store) Features() ([]features.FeatureRecord, error) {
	var records []features.FeatureRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(featuresBucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found", featuresBucket)
		}

		return b.ForEach(func(k, v []byte) error {
			var rec features.FeatureRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode feature row %x: %w", k, err)
			}
			records = append(records, rec)
			return nil
		})
	})

	return records, err
}

// Count returns the number of stored rows.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(featuresBucket))
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
