package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the vehicletrack CLI.
//
// Fields:
//   - BaseURL: origin of the processing backend, without a trailing slash.
//   - AcceptedType: MIME pattern a selected file must match.
//   - MaxSizeMB: upper bound on upload size, in megabytes.
//   - UploadTimeout: overall deadline for a single upload request.
//   - SettleDelay: pause between a successful upload and Completed.
//   - DownloadDir: where processed results are saved.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BaseURL       string
	AcceptedType  string
	MaxSizeMB     int
	UploadTimeout time.Duration
	SettleDelay   time.Duration
	DownloadDir   string
	LogLevel      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:8000"
	c.AcceptedType = "video/mp4"
	c.MaxSizeMB = 100
	c.UploadTimeout = 10 * time.Minute
	c.SettleDelay = time.Second
	c.DownloadDir = "."
	c.LogLevel = "info"
}

// MaxSizeBytes is MaxSizeMB expressed in bytes.
func (c *Config) MaxSizeBytes() int64 {
	return int64(c.MaxSizeMB) * 1024 * 1024
}

// Validate reports settings no source may leave in place.
func (c *Config) Validate() error {
	if c.MaxSizeMB <= 0 {
		return fmt.Errorf("max size must be positive, got %d MB", c.MaxSizeMB)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. Panics when the result fails Validate.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
