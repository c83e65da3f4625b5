package storage

import (
	"os"
	"path/filepath"
	"testing"

	"credit-risk/internal/features"
)

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "train.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if store.db == nil {
		t.Error("Store database is nil")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if store.Path() != dbPath {
		t.Errorf("expected path %s, got %s", dbPath, store.Path())
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "train.db"))
	if err == nil {
		t.Error("Expected error for invalid path, got nil")
	}
}

func TestOpen_ReadOnlyMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"), Options{ReadOnly: true})
	if err == nil {
		t.Error("Expected error opening a missing file read-only")
	}
}

func TestStore_Close(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "train.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Errorf("Error closing store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Error closing already closed store: %v", err)
	}
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{db: nil}
	if err := store.Close(); err != nil {
		t.Errorf("Expected no error for nil db, got: %v", err)
	}
}

func TestPutFeatures_RoundTripInOrder(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "train.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	// more than 255 rows so byte-order of keys matters
	var records []features.FeatureRecord
	for i := 0; i < 300; i++ {
		records = append(records, features.FeatureRecord{
			Income:     float64(1000 * i),
			Age:        18 + i%80,
			LoanAmount: float64(10 * i),
		})
	}

	if err := store.PutFeatures(records[:150]); err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	if err := store.PutFeatures(records[150:]); err != nil {
		t.Fatalf("second batch failed: %v", err)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != len(records) {
		t.Errorf("expected %d rows, got %d", len(records), n)
	}

	got, err := store.Features()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d rows, got %d", len(records), len(got))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, records[i], got[i])
		}
	}
}

func TestFeatures_ReadOnlyReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "train.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	rec := features.FeatureRecord{Income: 42000, Age: 33, LoanAmount: 3000}
	if err := store.PutFeatures([]features.FeatureRecord{rec}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	store.Close()

	ro, err := Open(dbPath, Options{ReadOnly: true})
	if err != nil {
		t.Fatalf("read-only open failed: %v", err)
	}
	defer ro.Close()

	got, err := ro.Features()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 1 || got[0] != rec {
		t.Errorf("expected [%+v], got %+v", rec, got)
	}
}
