// Package client talks to the vehicle analysis backend over HTTP.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): Upload,
//     DetectLicensePlate, DownloadURL and Download.
//  2. A net/http implementation (see HTTPClient) that streams a multipart
//     body with a precomputed length, so upload progress always has a
//     known total.
//
// # Error Handling
//
// Transport outcomes map to sentinel errors matched with errors.Is:
// ErrNetwork, ErrTimeout and ErrParse. Non-2xx responses are reported as
// *HTTPError (use errors.As). Nothing is retried.
//
// Progress
//
// Upload reports integer percentages in non-decreasing order, ends at 100
// on success, and never calls the callback after Upload has returned.
package client
