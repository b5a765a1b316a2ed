package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytmd/internal/shared"
)

// Auth stores YouTube Music browser headers parsed from a cURL command.
//
// Without --curl or --curl-file it reports the state of the configured headers file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = config.Credentials.YouTube.HeadersPath
	}
	outputPath = shared.ExpandHome(outputPath)

	if curlCmd == "" && curlFile == "" {
		return r.authStatus(outputPath)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	if curlFile != "" {
		if curlHeaders, err = shared.ParseCurlFile(curlFile); err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		if curlHeaders, err = shared.ParseCurlCommand(curlCmd); err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	creds := shared.CredentialsFromCurl(curlHeaders)
	if !creds.Authenticated() {
		r.logger.Warn("no cookie found; playlists and liked songs will be unavailable")
	}

	if err := creds.Save(outputPath); err != nil {
		return err
	}
	r.logger.Info("headers saved", "path", outputPath, "headers", len(creds.Headers))

	r.writePlain("✓ YouTube Music headers saved to %s\n", outputPath)
	if outputPath != shared.ExpandHome(config.Credentials.YouTube.HeadersPath) {
		r.writePlainln("Next step:")
		r.writePlain("Update config.toml with: credentials.youtube.headers_path = \"%s\"\n", outputPath)
	}
	return nil
}

func (r *Runner) authStatus(path string) error {
	creds, err := shared.LoadCredentials(path)
	if err != nil {
		r.logger.Debug("no usable headers file", "error", err)
		r.writePlain("✗ No headers file at %s\n", path)
		r.writePlain("Run 'ytmd auth --curl \"<copied request>\"' to create one\n")
		return nil
	}

	r.writePlain("✓ Headers file: %s\n", path)
	if creds.Authenticated() {
		r.writePlain("Authentication: ✓ cookie present\n")
	} else {
		r.writePlain("Authentication: ✗ no cookie\n")
	}
	return nil
}
