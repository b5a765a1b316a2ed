// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
		Sources: cli.EnvVars("YTMD_CONFIG"),
	}
}

// downloadFlags are shared by every command that writes audio files
func downloadFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Directory to write audio files to",
			Sources: cli.EnvVars("YTMD_OUTPUT"),
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Audio format: mp3 or m4a",
			Sources: cli.EnvVars("YTMD_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    "keep-going",
			Aliases: []string{"k"},
			Usage:   "Continue with the next track when one fails",
			Sources: cli.EnvVars("YTMD_KEEP_GOING"),
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Number of tracks processed in parallel",
			Sources: cli.EnvVars("YTMD_WORKERS"),
		},
		&cli.StringFlag{
			Name:    "fetcher",
			Usage:   "Download backend: ytdlp or native",
			Sources: cli.EnvVars("YTMD_FETCHER"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// collectionFlags adds the flags for playlist-like sources
func collectionFlags() []cli.Flag {
	return append(downloadFlags(),
		&cli.BoolFlag{
			Name:  "no-subfolders",
			Usage: "Write every track directly into the output directory",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Maximum number of tracks to collect",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "List the tracks without downloading",
		},
	)
}

func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "track",
		Aliases:   []string{"t"},
		Usage:     "Download a single track",
		ArgsUsage: "<video id or URL>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags:  downloadFlags(),
		Action: r.DownloadTrack,
	}
}

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "playlist",
		Aliases:   []string{"p"},
		Usage:     "Download every track of a playlist",
		ArgsUsage: "<playlist id or URL>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags:  collectionFlags(),
		Action: r.DownloadPlaylist,
	}
}

func likedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "liked",
		Usage:  "Download your liked songs",
		Flags:  collectionFlags(),
		Action: r.DownloadLiked,
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Store YouTube Music browser headers from a copied cURL command",
		Description: "Open music.youtube.com while logged in, copy any authenticated request\n" +
			"from the network tab as cURL and pass it with --curl or --curl-file.\n" +
			"Without flags, reports whether a headers file is present.",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "curl",
				Usage: "cURL command copied from browser DevTools",
			},
			&cli.StringFlag{
				Name:  "curl-file",
				Usage: "Path to file containing cURL command",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Headers file path (defaults to credentials.youtube.headers_path)",
			},
		},
		Action: r.Auth,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the download database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded downloads, newest first",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of entries",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
		},
		Action: r.History,
	}
}
