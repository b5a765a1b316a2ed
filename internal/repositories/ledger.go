package repositories

import (
	"os"

	"github.com/desertthunder/ytmd/internal/models"
)

// Ledger implements tasks.Ledger using [DownloadRepository].
//
// A recorded download only counts as completed while its file still exists on disk.
type Ledger struct {
	repo *DownloadRepository
}

// NewLedger creates a new Ledger with the given repository
func NewLedger(repo *DownloadRepository) *Ledger {
	return &Ledger{repo: repo}
}

// Completed returns the path of the latest download of trackID if that file is still present.
func (l *Ledger) Completed(trackID string) (string, bool) {
	download, err := l.repo.LatestByTrackID(trackID)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(download.Path())
	if err != nil || info.IsDir() {
		return "", false
	}
	return download.Path(), true
}

// Record stores a finished download.
func (l *Ledger) Record(track models.TrackRecord, path string, format models.AudioFormat) error {
	return l.repo.Create(models.NewDownload(track.ID, track.Title, path, format))
}
