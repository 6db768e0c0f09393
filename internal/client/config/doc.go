// Package config loads runtime configuration for the vehicletrack CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. VT_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-t string   accepted MIME type pattern
//	-m int      maximum upload size in MB
//	-d string   download directory
//	-l string   log level
//
// # JSON schema
//
// Durations may be strings like "10m" or integer nanoseconds:
//
//	{
//	  "base_url": "http://localhost:8000",
//	  "accepted_type": "video/mp4",
//	  "max_size_mb": 100,
//	  "upload_timeout": "10m",
//	  "settle_delay": "1s",
//	  "download_dir": ".",
//	  "log_level": "info"
//	}
package config
