package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

// FirebaseUploader stores media in a Firebase Storage bucket. The deletion
// handle is the bucket object name.
type FirebaseUploader struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewFirebaseUploader resolves the bucket from an initialized Firebase app.
func NewFirebaseUploader(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseUploader, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("storage bucket name not provided")
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase storage client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("error resolving storage bucket %s: %w", bucketName, err)
	}
	return &FirebaseUploader{bucket: bucket, bucketName: bucketName}, nil
}

// Upload writes the blob under a random object name and returns its public
// URL plus the object name as the deletion handle.
func (u *FirebaseUploader) Upload(ctx context.Context, r io.Reader, filename, contentType string) (string, string, error) {
	object := "media/" + uuid.NewString() + path.Ext(filename)

	w := u.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", "", fmt.Errorf("error writing media object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", "", fmt.Errorf("error finalizing media object %s: %w", object, err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucketName, object)
	return url, object, nil
}

// Delete removes the object. A missing object counts as success so purge
// retries stay idempotent.
func (u *FirebaseUploader) Delete(ctx context.Context, handle string) error {
	err := u.bucket.Object(handle).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (u *FirebaseUploader) Configured() bool { return true }
