package store

import (
	"os"
	"strings"
	"testing"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}

	repo := NewRepository(dbConn)

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return repo, teardown
}

func TestNew_AppliesPragmas(t *testing.T) {
	db, err := New(t.TempDir() + "/users.db")
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.Get(&mode, "PRAGMA journal_mode"); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("\nwanted:\nwal\ngot:\n%s", mode)
	}

	var timeout int
	if err := db.Get(&timeout, "PRAGMA busy_timeout"); err != nil {
		t.Fatalf("PRAGMA busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Fatalf("\nwanted:\n5000\ngot:\n%d", timeout)
	}

	var fk int
	if err := db.Get(&fk, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("\nwanted:\nforeign_keys=1\ngot:\n%d", fk)
	}
}

func TestNew_CreatesParentDir(t *testing.T) {
	path := t.TempDir() + "/nested/dir/users.db"
	db, err := New(path)
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
}
