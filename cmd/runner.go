package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytmd/internal/media"
	"github.com/desertthunder/ytmd/internal/services"
	"github.com/desertthunder/ytmd/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Provider, fetcher and extractor are built from the loaded configuration unless injected.
type Runner struct {
	config    *shared.Config
	provider  services.Provider
	fetcher   media.Fetcher
	extractor media.Extractor
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Provider  services.Provider
	Fetcher   media.Fetcher
	Extractor media.Extractor
	Logger    *log.Logger
	Output    io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:    opts.Config,
		provider:  opts.Provider,
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		trackCommand, playlistCommand, likedCommand, authCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the runner's configuration, replaced by the --config file when it exists,
// with command-line overrides applied.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	base := r.config
	if path := cmd.String("config"); path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			base = loaded
		} else if cmd.IsSet("config") {
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
	}

	config := *base
	if cmd.IsSet("output") {
		config.Download.OutputDir = cmd.String("output")
	}
	if cmd.IsSet("format") {
		config.Download.AudioFormat = cmd.String("format")
	}
	if cmd.IsSet("keep-going") {
		config.Download.ContinueOnError = cmd.Bool("keep-going")
	}
	if cmd.IsSet("workers") {
		config.Download.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("fetcher") {
		config.Download.Fetcher = cmd.String("fetcher")
	}
	if cmd.IsSet("no-subfolders") {
		config.Download.AlbumSubfolders = !cmd.Bool("no-subfolders")
	}
	if cmd.IsSet("limit") && cmd.Int("limit") > 0 {
		config.Download.PlaylistLimit = cmd.Int("limit")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	} else if err := shared.SetLogLevelString(r.logger, config.Log.Level); err != nil {
		r.logger.Warn("unknown log level", "level", config.Log.Level)
	}

	return &config, nil
}

// youtube returns the injected provider or a YouTube Music client authenticated with the
// configured headers file when it exists.
func (r *Runner) youtube(ctx context.Context, config *shared.Config) services.Provider {
	if r.provider != nil {
		return r.provider
	}

	yt := config.Credentials.YouTube
	svc := services.NewYouTubeService(yt.ProxyURL,
		services.WithLanguage(config.Download.Language),
		services.WithRateLimit(yt.RequestsPerSecond),
	)

	headersPath := shared.ExpandHome(yt.HeadersPath)
	if _, err := os.Stat(headersPath); err == nil {
		if err := svc.Authenticate(ctx, map[string]string{"auth_file": headersPath}); err != nil {
			r.logger.Warn("failed to use headers file", "path", headersPath, "error", err)
		}
	} else {
		r.logger.Debug("no headers file, continuing unauthenticated", "path", headersPath)
	}
	return svc
}

// credentials loads the browser headers used by the fetchers, or nil when there are none.
func (r *Runner) credentials(config *shared.Config) *shared.Credentials {
	path := shared.ExpandHome(config.Credentials.YouTube.HeadersPath)
	creds, err := shared.LoadCredentials(path)
	if err != nil {
		r.logger.Debug("downloading without browser headers", "reason", err)
		return nil
	}
	return creds
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
