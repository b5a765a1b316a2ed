package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	FetcherYTDLP  = "ytdlp"
	FetcherNative = "native"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Download    DownloadConfig    `toml:"download"`
	Cover       CoverConfig       `toml:"cover"`
	Tools       ToolsConfig       `toml:"tools"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
}

// DownloadConfig controls the acquisition pipeline.
type DownloadConfig struct {
	OutputDir       string `toml:"output_dir"`
	AudioFormat     string `toml:"audio_format"`
	PlaylistLimit   int    `toml:"playlist_limit"`
	Language        string `toml:"language"`
	AlbumSubfolders bool   `toml:"album_subfolders"`
	ContinueOnError bool   `toml:"continue_on_error"`
	Workers         int    `toml:"workers"`
	Fetcher         string `toml:"fetcher"`
}

// CoverConfig controls which frame becomes the cover and how it is post-processed.
type CoverConfig struct {
	FrameIndex int  `toml:"frame_index"`
	Square     bool `toml:"square"`
	MaxSize    int  `toml:"max_size"`
}

// ToolsConfig holds paths to external binaries.
type ToolsConfig struct {
	FFmpeg string `toml:"ffmpeg"`
	YTDLP  string `toml:"ytdlp"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig contains YouTube Music proxy settings and the headers file location.
type YouTubeConfig struct {
	ProxyURL          string  `toml:"proxy_url"`
	HeadersPath       string  `toml:"headers_path"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks values the pipeline cannot recover from.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Download.AudioFormat) {
	case "mp3", "m4a":
	default:
		return fmt.Errorf("%w: download.audio_format must be mp3 or m4a, got %q", ErrInvalidConfig, c.Download.AudioFormat)
	}

	switch c.Download.Fetcher {
	case FetcherYTDLP, FetcherNative:
	default:
		return fmt.Errorf("%w: download.fetcher must be %s or %s, got %q", ErrInvalidConfig, FetcherYTDLP, FetcherNative, c.Download.Fetcher)
	}

	if c.Download.Workers < 1 {
		return fmt.Errorf("%w: download.workers must be at least 1", ErrInvalidConfig)
	}
	if c.Download.PlaylistLimit < 1 {
		return fmt.Errorf("%w: download.playlist_limit must be positive", ErrInvalidConfig)
	}
	if c.Cover.FrameIndex < 0 {
		return fmt.Errorf("%w: cover.frame_index must not be negative", ErrInvalidConfig)
	}
	if c.Cover.MaxSize < 0 {
		return fmt.Errorf("%w: cover.max_size must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
