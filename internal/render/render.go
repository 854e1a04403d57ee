// Package render converts certificate HTML to PDF through a headless
// Chromium service exposing the Gotenberg HTML route.
package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const convertHTMLPath = "/forms/chromium/convert/html"

// Renderer turns a complete HTML document into PDF bytes.
type Renderer interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

// ChromiumRenderer posts HTML to the renderer service. Failures are returned
// to the caller as-is; there is no retry.
type ChromiumRenderer struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewChromiumRenderer builds a renderer for the service at baseURL.
func NewChromiumRenderer(baseURL string, timeout time.Duration, logger *zap.Logger) *ChromiumRenderer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/pdf")

	return &ChromiumRenderer{
		httpClient: client,
		logger:     logger,
	}
}

func (r *ChromiumRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	started := time.Now()
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetFileReader("files", "index.html", bytes.NewReader(html)).
		SetMultipartFormData(map[string]string{
			"paperWidth":      "8.27",
			"paperHeight":     "11.7",
			"printBackground": "true",
		}).
		Post(convertHTMLPath)
	if err != nil {
		r.logger.Error("PDF renderer call failed", zap.Error(err))
		return nil, fmt.Errorf("call pdf renderer: %w", err)
	}
	if resp.IsError() {
		r.logger.Error("PDF renderer returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.ByteString("body", truncate(resp.Body(), 512)),
		)
		return nil, fmt.Errorf("pdf renderer returned status %d", resp.StatusCode())
	}

	r.logger.Debug("Rendered PDF",
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("duration", time.Since(started)),
	)
	return resp.Body(), nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
