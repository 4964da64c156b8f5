package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := InitDB(Config{
		DatabasePath: filepath.Join(t.TempDir(), "history.db"),
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("InitDB returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestSaveAndList(t *testing.T) {
	db := newTestDB(t)

	records := []*Record{
		{ProjectName: "alpha", URL: "https://alpha.pages.dev", Method: "direct-upload", Success: true, DeployedAt: time.Now().Add(-2 * time.Hour)},
		{ProjectName: "beta", URL: "https://beta.pages.dev", Method: "direct-upload", Success: true, DeployedAt: time.Now().Add(-1 * time.Hour)},
		{ProjectName: "alpha", URL: "https://alpha.pages.dev", Method: "upload-with-fallback", Success: true, Warning: "record creation failed", DeployedAt: time.Now()},
	}
	for _, r := range records {
		if err := db.Save(r); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}

	all, err := db.List(0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	// Newest first.
	if all[0].Method != "upload-with-fallback" {
		t.Errorf("expected newest record first, got %+v", all[0])
	}

	limited, err := db.List(2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 records with limit, got %d", len(limited))
	}
}

func TestListByProject(t *testing.T) {
	db := newTestDB(t)
	_ = db.Save(&Record{ProjectName: "alpha", URL: "u", Method: "direct-upload", Success: true})
	_ = db.Save(&Record{ProjectName: "beta", URL: "u", Method: "direct-upload", Success: true})

	records, err := db.ListByProject("alpha")
	if err != nil {
		t.Fatalf("ListByProject returned error: %v", err)
	}
	if len(records) != 1 || records[0].ProjectName != "alpha" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestLatest(t *testing.T) {
	db := newTestDB(t)
	_ = db.Save(&Record{ProjectName: "alpha", URL: "old", Method: "direct-upload", Success: true, DeployedAt: time.Now().Add(-time.Hour)})
	_ = db.Save(&Record{ProjectName: "alpha", URL: "new", Method: "direct-upload", Success: true, DeployedAt: time.Now()})

	latest, err := db.Latest("alpha")
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if latest.URL != "new" {
		t.Errorf("expected newest record, got %s", latest.URL)
	}

	if _, err := db.Latest("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveNilRecord(t *testing.T) {
	db := newTestDB(t)
	if err := db.Save(nil); !errors.Is(err, ErrNilRecord) {
		t.Errorf("expected ErrNilRecord, got %v", err)
	}
}

func TestSaveFillsDeployedAt(t *testing.T) {
	db := newTestDB(t)
	record := &Record{ProjectName: "alpha", URL: "u", Method: "direct-upload", Success: true}
	if err := db.Save(record); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if record.DeployedAt.IsZero() {
		t.Error("DeployedAt should default to now")
	}
}
