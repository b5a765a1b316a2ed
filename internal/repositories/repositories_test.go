package repositories

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	t.Run("increments", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		for want := 1; want <= 3; want++ {
			got, err := NextSequence(db, "downloads")
			if err != nil {
				t.Fatalf("NextSequence() error = %v", err)
			}
			if got != want {
				t.Errorf("NextSequence() = %d, want %d", got, want)
			}
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NextSequence(db, "users; DROP TABLE downloads"); err == nil {
			t.Fatal("expected error for unknown sequence table")
		}
	})
}

func TestDownloadRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		download := models.NewDownload("vid1", "Song 1", "/music/Song 1.mp3", models.FormatMP3)

		if err := repo.Create(download); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}

		if download.ID() == "" {
			t.Error("download ID should be set after creation")
		}
		if download.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", download.Sequence())
		}
	})

	t.Run("Create validation error", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		if err := repo.Create(models.NewDownload("", "Song", "/x.mp3", models.FormatMP3)); err == nil {
			t.Fatal("expected validation error for empty track id")
		}
		if err := repo.Create(models.NewDownload("vid", "Song", "/x.ogg", models.AudioFormat("ogg"))); err == nil {
			t.Fatal("expected validation error for unknown format")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		download := models.NewDownload("vid1", "Song 1", "/music/Song 1.m4a", models.FormatM4A)
		if err := repo.Create(download); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}

		retrieved, err := repo.Get(download.ID())
		if err != nil {
			t.Fatalf("failed to get download: %v", err)
		}

		if retrieved.TrackID() != "vid1" || retrieved.Title() != "Song 1" {
			t.Errorf("unexpected download %s %q", retrieved.TrackID(), retrieved.Title())
		}
		if retrieved.Path() != "/music/Song 1.m4a" || retrieved.Format() != models.FormatM4A {
			t.Errorf("unexpected download %s %s", retrieved.Path(), retrieved.Format())
		}
		if retrieved.CreatedAt().IsZero() {
			t.Error("created_at should be set")
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewDownloadRepository(db).Get("nonexistent-id")
		if !errors.Is(err, ErrDownloadNotFound) {
			t.Fatalf("expected ErrDownloadNotFound, got %v", err)
		}
	})

	t.Run("LatestByTrackID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		for _, path := range []string{"/a/Song.mp3", "/b/Song.mp3"} {
			if err := repo.Create(models.NewDownload("vid1", "Song", path, models.FormatMP3)); err != nil {
				t.Fatalf("failed to create download: %v", err)
			}
		}

		latest, err := repo.LatestByTrackID("vid1")
		if err != nil {
			t.Fatalf("LatestByTrackID() error = %v", err)
		}
		if latest.Path() != "/b/Song.mp3" {
			t.Errorf("expected latest path /b/Song.mp3, got %s", latest.Path())
		}

		if _, err := repo.LatestByTrackID("other"); !errors.Is(err, ErrDownloadNotFound) {
			t.Errorf("expected ErrDownloadNotFound, got %v", err)
		}
	})

	t.Run("List and Count", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		for _, id := range []string{"a", "b", "c"} {
			if err := repo.Create(models.NewDownload(id, id, "/music/"+id+".mp3", models.FormatMP3)); err != nil {
				t.Fatalf("failed to create download: %v", err)
			}
		}

		all, err := repo.List(0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 3 || all[0].TrackID() != "c" {
			t.Errorf("expected 3 downloads newest first, got %d", len(all))
		}

		limited, err := repo.List(2)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 downloads, got %d", len(limited))
		}

		n, err := repo.Count()
		if err != nil || n != 3 {
			t.Errorf("Count() = %d, %v", n, err)
		}
	})
}

func TestLedger(t *testing.T) {
	t.Run("records and finds existing files", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		path := filepath.Join(t.TempDir(), "Song.mp3")
		if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
			t.Fatal(err)
		}

		ledger := NewLedger(NewDownloadRepository(db))
		if err := ledger.Record(models.TrackRecord{ID: "vid1", Title: "Song"}, path, models.FormatMP3); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		got, ok := ledger.Completed("vid1")
		if !ok || got != path {
			t.Errorf("Completed() = %q, %v", got, ok)
		}
	})

	t.Run("ignores removed files", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		ledger := NewLedger(NewDownloadRepository(db))
		missing := filepath.Join(t.TempDir(), "gone.mp3")
		if err := ledger.Record(models.TrackRecord{ID: "vid1", Title: "Gone"}, missing, models.FormatMP3); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		if _, ok := ledger.Completed("vid1"); ok {
			t.Error("removed file should not count as completed")
		}
	})

	t.Run("unknown track", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, ok := NewLedger(NewDownloadRepository(db)).Completed("nope"); ok {
			t.Error("unknown track should not be completed")
		}
	})
}
