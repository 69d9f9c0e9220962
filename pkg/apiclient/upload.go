package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-salon/components/salon"
)

// MaxUploadSize mirrors the backend limit on image uploads.
const MaxUploadSize = 10 << 20

const defaultUploadFolder = "images"

// Upload sends an image to the storage bucket and returns its public URL.
// Non-image payloads and files over MaxUploadSize are rejected before any
// network call.
func (c *Client) Upload(ctx context.Context, folder, filename string, body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("apiclient: read upload: %w", err)
	}
	if len(data) == 0 {
		return "", &salon.ValidationError{Field: "file", Reason: "is empty"}
	}
	if len(data) > MaxUploadSize {
		return "", &salon.ValidationError{Field: "file", Reason: "exceeds 10MB limit"}
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", &salon.ValidationError{Field: "file", Reason: "must be an image"}
	}
	if strings.TrimSpace(folder) == "" {
		folder = defaultUploadFolder
	}
	if filename = filepath.Base(strings.TrimSpace(filename)); filename == "." || filename == "/" {
		filename = "image.jpg"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("apiclient: build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("apiclient: build upload: %w", err)
	}
	if err := writer.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("apiclient: build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("apiclient: build upload: %w", err)
	}

	var resp uploadResponse
	if err := c.send(ctx, http.MethodPost, "/api/admin/upload", nil, &buf, writer.FormDataContentType(), &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("apiclient: upload: backend returned no url")
	}
	return resp.URL, nil
}

type uploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
}
