package repositories

import (
	"database/sql"
	"fmt"
)

var sequenceTables = map[string]bool{
	"downloads_sequence": true,
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// The sequence table is named after the entity table with a "_sequence" suffix (e.g. downloads_sequence).
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"
	if !sequenceTables[sequenceTable] {
		return 0, fmt.Errorf("unknown sequence table: %s", sequenceTable)
	}

	_, err = tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}
