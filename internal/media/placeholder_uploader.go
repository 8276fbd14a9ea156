package media

import (
	"context"
	"io"
	"path"

	"github.com/google/uuid"
)

// PlaceholderUploader is the fallback when no storage credentials are
// configured. Blobs are discarded and a placeholder URL is returned with no
// deletion handle.
type PlaceholderUploader struct{}

// NewPlaceholderUploader creates the fallback uploader.
func NewPlaceholderUploader() *PlaceholderUploader {
	return &PlaceholderUploader{}
}

func (u *PlaceholderUploader) Upload(ctx context.Context, r io.Reader, filename, contentType string) (string, string, error) {
	// Drain the blob so multipart handling behaves the same as a real upload.
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", "", err
	}
	url := "https://placeholder.lumora.app/media/" + uuid.NewString() + path.Ext(filename)
	return url, "", nil
}

func (u *PlaceholderUploader) Delete(ctx context.Context, handle string) error { return nil }

func (u *PlaceholderUploader) Configured() bool { return false }
