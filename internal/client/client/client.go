package client

import (
	"context"

	"github.com/dmitrijs2005/vehicletrack/internal/media"
)

// ProgressFunc receives upload progress as a whole percentage.
type ProgressFunc func(percent int)

// UploadResponse is the body of a successful POST /upload/.
type UploadResponse struct {
	Message     string `json:"message"`
	DownloadURL string `json:"download_url"`
}

// LicensePlate is one detection: bounding box, OCR text and confidence.
type LicensePlate struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"`
	Text       string  `json:"text"`
}

type LicensePlateResponse struct {
	LicensePlates []LicensePlate `json:"license_plates"`
}

type Client interface {
	Upload(ctx context.Context, file *media.File, onProgress ProgressFunc) (*UploadResponse, error)
	DetectLicensePlate(ctx context.Context, file *media.File) (*LicensePlateResponse, error)
	DownloadURL(path string) string
	Download(ctx context.Context, path, destDir string, onProgress func(written uint64)) (string, error)
}
