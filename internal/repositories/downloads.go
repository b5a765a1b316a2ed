package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
)

// ErrDownloadNotFound is returned when no ledger row matches a lookup.
var ErrDownloadNotFound = errors.New("download not found")

const downloadColumns = `id, sequence, track_id, title, path, format, created_at`

// DownloadRepository persists [models.Download] rows.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new [DownloadRepository] with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts a download with a generated ID and sequence
func (r *DownloadRepository) Create(download *models.Download) error {
	if err := download.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "downloads")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	download.SetID(id)
	download.SetSequence(sequence)

	query := `
		INSERT INTO downloads (id, sequence, track_id, title, path, format, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, download.TrackID(), download.Title(), download.Path(), string(download.Format()), download.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}

	return nil
}

// Get retrieves a download by ID
func (r *DownloadRepository) Get(id string) (*models.Download, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads WHERE id = ?`

	download, err := scanDownload(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDownloadNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query download: %w", err)
	}
	return download, nil
}

// LatestByTrackID returns the most recent download of a track
func (r *DownloadRepository) LatestByTrackID(trackID string) (*models.Download, error) {
	query := `
		SELECT ` + downloadColumns + `
		FROM downloads
		WHERE track_id = ?
		ORDER BY sequence DESC
		LIMIT 1
	`

	download, err := scanDownload(r.db.QueryRow(query, trackID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: track %s", ErrDownloadNotFound, trackID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query download: %w", err)
	}
	return download, nil
}

// List returns up to limit downloads, newest first. A non-positive limit returns every row.
func (r *DownloadRepository) List(limit int) ([]*models.Download, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads ORDER BY sequence DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*models.Download
	for rows.Next() {
		download, err := scanDownload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		downloads = append(downloads, download)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating downloads: %w", err)
	}

	return downloads, nil
}

// Count returns the number of recorded downloads
func (r *DownloadRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM downloads`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count downloads: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDownload(row scanner) (*models.Download, error) {
	var (
		id        string
		sequence  int
		trackID   string
		title     string
		path      string
		format    string
		createdAt time.Time
	)

	if err := row.Scan(&id, &sequence, &trackID, &title, &path, &format, &createdAt); err != nil {
		return nil, err
	}

	return models.RestoreDownload(id, sequence, trackID, title, path, models.AudioFormat(format), createdAt), nil
}
