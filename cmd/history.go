package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytmd/internal/formatter"
	"github.com/desertthunder/ytmd/internal/repositories"
	"github.com/desertthunder/ytmd/internal/shared"
)

// History lists recorded downloads.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if !config.Database.Enabled {
		return fmt.Errorf("%w: download history is disabled (database.enabled = false)", shared.ErrInvalidConfig)
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	downloads, err := repositories.NewDownloadRepository(db).List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(formatter.HistoryToEntries(downloads), true)
	case cmd.Bool("csv"):
		data, err := formatter.HistoryToCSV(downloads)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	default:
		return r.writePlain("%s", formatter.HistoryToText(downloads))
	}
}
