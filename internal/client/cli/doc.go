// Package cli provides the interactive vehicletrack terminal client.
//
// It wires configuration, the HTTP upload client, thumbnail extraction and
// the session orchestrator behind a small REPL. Typical flow: select a video,
// check its preview, upload it, wait for processing and download the result.
//
// Commands:
//   - select <path>        validate and select a video
//   - upload               send the selected video for processing
//   - status               show the current state
//   - thumbnail [out.jpg]  save the preview frame
//   - download [dir]       save the processed video
//   - url                  print the result URL
//   - plates <image>       run license plate detection on a still image
//   - reset                clear the selection
//
// The REPL is started via App.Run(ctx, path), which blocks until the user exits.
package cli
