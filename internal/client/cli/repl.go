package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const helpText = "Available commands: select <path>, upload, status, thumbnail [out.jpg], download [dir], url, plates <image>, reset, exit"

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Select(ctx context.Context, path string) error
	Upload(ctx context.Context) error
	Status(ctx context.Context) error
	Thumbnail(ctx context.Context, out string) error
	Download(ctx context.Context, dir string) error
	URL(ctx context.Context) error
	Plates(ctx context.Context, image string) error
	Reset(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit" and
// dispatches them to a. The prompt shows statusFn's result.
//
// A command missing its required argument prompts for it on the next line.
// Errors returned by handlers are ignored here; handlers report their own
// failures to the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "vt %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.Join(parts[1:], " ")

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)

		case "select":
			if arg == "" {
				if arg, err = GetSimpleText(reader, "Path to video file", w); err != nil || arg == "" {
					continue
				}
			}
			_ = a.Select(ctx, arg)

		case "upload":
			_ = a.Upload(ctx)

		case "status", "s":
			_ = a.Status(ctx)

		case "thumbnail":
			_ = a.Thumbnail(ctx, arg)

		case "download":
			_ = a.Download(ctx, arg)

		case "url":
			_ = a.URL(ctx)

		case "plates":
			if arg == "" {
				if arg, err = GetSimpleText(reader, "Path to image file", w); err != nil || arg == "" {
					continue
				}
			}
			_ = a.Plates(ctx, arg)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
