// Package http implements the outbound request gateway against the
// polling backend. All requests funnel through one door so that success
// and failure come back in a uniform shape.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pollbooth/pollbooth/internal/core/domain"
	"github.com/pollbooth/pollbooth/internal/core/ports"
)

type Gateway struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewGateway(baseURL string, timeout time.Duration, logger zerolog.Logger) ports.Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (g *Gateway) GetJSON(ctx context.Context, path string, out any) error {
	return g.do(ctx, http.MethodGet, path, "", nil, out)
}

func (g *Gateway) PostJSON(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return g.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(buf), out)
}

func (g *Gateway) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return fmt.Errorf("failed to copy file contents: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return g.do(ctx, http.MethodPost, path, w.FormDataContentType(), &buf, out)
}

func (g *Gateway) Download(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := g.do(ctx, http.MethodGet, path, "", nil, &rawBody{&data})
	return data, err
}

// rawBody marks an out parameter that wants the response bytes verbatim.
type rawBody struct {
	dst *[]byte
}

// errorBody is the shape every backend error response uses.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (g *Gateway) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn().Str("method", method).Str("path", path).Err(err).Msg("transport failure")
		return &domain.RequestError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RequestError{Status: resp.StatusCode, Err: err}
	}

	g.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.RequestError{Status: resp.StatusCode, Message: extractMessage(data)}
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *rawBody:
		*dst.dst = data
		return nil
	default:
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
}

// extractMessage applies the error-body policy: the `error` field wins,
// then `message`; an unparseable or bare body yields an empty string and
// the caller's fallback takes over.
func extractMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
