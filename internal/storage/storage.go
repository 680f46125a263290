package storage

import (
	"context"
	"io"
)

// Uploader persists interview artifacts (answer recordings, exported
// reports) and returns a fetchable URL.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (url string, err error)
	Close() error
}
