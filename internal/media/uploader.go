// Package media uploads binary blobs to durable storage and deletes them by
// handle. The Firebase Storage backend is optional; without credentials the
// service degrades to placeholder URLs.
package media

import (
	"context"
	"io"
)

// Uploader stores a media blob and returns its public URL plus a deletion
// handle. An empty handle means the object cannot be deleted (placeholders).
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, filename, contentType string) (url, handle string, err error)
	Delete(ctx context.Context, handle string) error
	// Configured reports whether uploads land in real storage. Resolved once
	// at process start, not re-checked per call.
	Configured() bool
}
