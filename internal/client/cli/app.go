package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/dmitrijs2005/vehicletrack/internal/client/client"
	"github.com/dmitrijs2005/vehicletrack/internal/client/config"
	"github.com/dmitrijs2005/vehicletrack/internal/client/session"
	"github.com/dmitrijs2005/vehicletrack/internal/logging"
	"github.com/dmitrijs2005/vehicletrack/internal/thumbnail"
	"github.com/dmitrijs2005/vehicletrack/internal/validator"
)

// refreshInterval is how often a running upload is redrawn.
const refreshInterval = 200 * time.Millisecond

type App struct {
	config    *config.Config
	client    client.Client
	session   *session.Orchestrator
	validator *validator.Validator
	fs        afero.Fs
	logger    logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	tty       bool
	refresh   time.Duration

	lastState string
}

// NewApp wires the production dependencies: the HTTP client against
// c.BaseURL, ffmpeg-backed previews and the OS filesystem.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: want http(s)://host[:port]", c.BaseURL)
	}

	fs := afero.NewOsFs()
	apiClient := client.NewHTTPClient(c.BaseURL, c.UploadTimeout, fs, logger)
	extractor := thumbnail.NewExtractor(thumbnail.NewFFmpegDecoder(), logger)

	return newApp(c, apiClient, extractor, fs, logger, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, apiClient client.Client, extractor session.Extractor, fs afero.Fs, logger logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		config:    c,
		client:    apiClient,
		session:   session.New(apiClient, extractor, c.SettleDelay, logger),
		validator: validator.New(c.AcceptedType, c.MaxSizeBytes()),
		fs:        fs,
		logger:    logger,
		reader:    bufio.NewReader(in),
		out:       out,
		tty:       isTerminal(out),
		refresh:   refreshInterval,
	}
	a.session.Subscribe(a.onChange)
	return a
}

// Run selects path when given and then serves the REPL until the user exits.
// Background work is stopped before Run returns.
func (a *App) Run(ctx context.Context, path string) {
	defer a.session.Wait()
	defer a.session.Close()

	fmt.Fprintln(a.out, "Welcome to vehicletrack (type 'help' for commands)")
	if path != "" {
		_ = a.Select(ctx, path)
	}
	runREPL(ctx, a, a.prompt, a.reader, a.out)
}

func (a *App) prompt() string {
	snap := a.session.Snapshot()
	if snap.File == nil {
		return "(" + snap.State.Name() + ")"
	}
	return fmt.Sprintf("(%s %s)", snap.File.Name, snap.State.Name())
}

// onChange runs on the session's dispatcher goroutine only.
func (a *App) onChange(snap session.Snapshot) {
	name := snap.State.Name()
	if name == a.lastState {
		return
	}
	a.lastState = name
	a.logger.Debug(context.Background(), "state changed", "session", snap.SessionID, "state", name)
}
