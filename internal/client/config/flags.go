package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/vehicletrack/internal/flagx"
)

// ValueFlags lists the flags parsed here together with the JSON config
// selectors; each takes a value argument.
var ValueFlags = []string{"-a", "-t", "-m", "-d", "-l", "-c", "-config"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend base URL
//	-t string   accepted MIME type pattern
//	-m int      maximum upload size in MB
//	-d string   download directory
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs so positional arguments and
// foreign flags do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-m", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "backend base URL")
	fs.StringVar(&cfg.AcceptedType, "t", cfg.AcceptedType, "accepted MIME type")
	fs.IntVar(&cfg.MaxSizeMB, "m", cfg.MaxSizeMB, "maximum upload size (in MB)")
	fs.StringVar(&cfg.DownloadDir, "d", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
