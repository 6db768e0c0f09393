package config

import (
	"fmt"
	"strconv"
	"time"

	env "github.com/Netflix/go-env"
)

// EnvConfig is a DTO for environment overrides. Every field is a string so an
// unset variable is distinguishable from a zero value.
type EnvConfig struct {
	BaseURL       string `env:"VT_BASE_URL"`
	AcceptedType  string `env:"VT_ACCEPTED_TYPE"`
	MaxSizeMB     string `env:"VT_MAX_SIZE_MB"`
	UploadTimeout string `env:"VT_UPLOAD_TIMEOUT"`
	SettleDelay   string `env:"VT_SETTLE_DELAY"`
	DownloadDir   string `env:"VT_DOWNLOAD_DIR"`
	LogLevel      string `env:"VT_LOG_LEVEL"`
}

// parseEnv overlays Config with VT_* environment variables. Panics on
// malformed numbers or durations, like the other loaders.
func parseEnv(cfg *Config) {
	var ec EnvConfig
	if _, err := env.UnmarshalFromEnviron(&ec); err != nil {
		panic(err)
	}
	if err := ec.apply(cfg); err != nil {
		panic(err)
	}
}

func (ec *EnvConfig) apply(cfg *Config) error {
	if ec.BaseURL != "" {
		cfg.BaseURL = ec.BaseURL
	}
	if ec.AcceptedType != "" {
		cfg.AcceptedType = ec.AcceptedType
	}
	if ec.MaxSizeMB != "" {
		n, err := strconv.Atoi(ec.MaxSizeMB)
		if err != nil {
			return fmt.Errorf("VT_MAX_SIZE_MB: %w", err)
		}
		cfg.MaxSizeMB = n
	}
	if ec.UploadTimeout != "" {
		d, err := time.ParseDuration(ec.UploadTimeout)
		if err != nil {
			return fmt.Errorf("VT_UPLOAD_TIMEOUT: %w", err)
		}
		cfg.UploadTimeout = d
	}
	if ec.SettleDelay != "" {
		d, err := time.ParseDuration(ec.SettleDelay)
		if err != nil {
			return fmt.Errorf("VT_SETTLE_DELAY: %w", err)
		}
		cfg.SettleDelay = d
	}
	if ec.DownloadDir != "" {
		cfg.DownloadDir = ec.DownloadDir
	}
	if ec.LogLevel != "" {
		cfg.LogLevel = ec.LogLevel
	}
	return nil
}
