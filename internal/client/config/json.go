package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/vehicletrack/internal/flagx"
	"github.com/dmitrijs2005/vehicletrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations go through timex.Duration, so "10m" and integer nanoseconds
// are both accepted. Pointer fields distinguish "absent" from zero.
type JsonConfig struct {
	BaseURL       string          `json:"base_url"`
	AcceptedType  string          `json:"accepted_type"`
	MaxSizeMB     *int            `json:"max_size_mb"`
	UploadTimeout *timex.Duration `json:"upload_timeout"`
	SettleDelay   *timex.Duration `json:"settle_delay"`
	DownloadDir   string          `json:"download_dir"`
	LogLevel      string          `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file named by
// -c or -config. Only keys present in the file are applied. Panics on read
// or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.AcceptedType != "" {
		cfg.AcceptedType = jc.AcceptedType
	}
	if jc.MaxSizeMB != nil {
		cfg.MaxSizeMB = *jc.MaxSizeMB
	}
	if jc.UploadTimeout != nil {
		cfg.UploadTimeout = jc.UploadTimeout.Duration
	}
	if jc.SettleDelay != nil {
		cfg.SettleDelay = jc.SettleDelay.Duration
	}
	if jc.DownloadDir != "" {
		cfg.DownloadDir = jc.DownloadDir
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
