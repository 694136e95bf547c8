package storage

import (
	"context"
	"io"
)

// Uploader persists user-submitted blobs such as resumes and interview
// recordings. Implementations return the URL the stored object can be
// fetched from.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (url string, err error)
}
