package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertContact inserts a bare contact row and returns its key.
func insertContact(t *testing.T, s *Store, label string) int64 {
	t.Helper()
	res, err := s.db.Exec(
		`INSERT INTO Contacts (displayLabel, displayLabelGroup) VALUES (?, ?)`,
		label, groupOf(label),
	)
	if err != nil {
		t.Fatalf("insert contact %q: %v", label, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}

func groupOf(label string) any {
	if label == "" {
		return nil
	}
	return label[:1]
}
