package ports

import (
	"context"
	"io"
)

// Gateway issues requests against the backend and decodes JSON responses.
// It never touches session or view state; the services do that.
//
// On a non-success response the returned error is a *domain.RequestError
// carrying the server-supplied message when one exists.
type Gateway interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, body any, out any) error
	// PostMultipart sends fields plus one file part. file may be nil when
	// the caller attaches no file.
	PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error
	// Download fetches a raw body (CSV export); it is saved, never parsed.
	Download(ctx context.Context, path string) ([]byte, error)
}
