package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/dmitrijs2005/vehicletrack/internal/media"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// formBody is a single-part multipart body whose length is known before
// the first byte is sent.
type formBody struct {
	reader      io.Reader
	closer      io.Closer
	contentType string
	length      int64
}

func newFormBody(field string, file *media.File) (*formBody, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(file.Name)))
	contentType := file.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	if _, err := mw.CreatePart(h); err != nil {
		return nil, err
	}
	headLen := buf.Len()
	if err := mw.Close(); err != nil {
		return nil, err
	}
	head := buf.Bytes()[:headLen]
	tail := buf.Bytes()[headLen:]

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}

	return &formBody{
		reader:      io.MultiReader(bytes.NewReader(head), src, bytes.NewReader(tail)),
		closer:      src,
		contentType: mw.FormDataContentType(),
		length:      int64(len(head)) + file.Size + int64(len(tail)),
	}, nil
}
