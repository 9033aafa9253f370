package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

const maxPageBytes = 20 << 20

// WebExtractor downloads a page and renders it as markdown text.
// Responses served as PDF are handed to the PDF extractor.
type WebExtractor struct {
	client    *http.Client
	converter *converter.Converter
	pdf       *PDFExtractor
	userAgent string
}

func NewWebExtractor(pdf *PDFExtractor) *WebExtractor {
	return &WebExtractor{
		client: &http.Client{Timeout: 30 * time.Second},
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		pdf:       pdf,
		userAgent: "notes-intelligence-be/1.0",
	}
}

func (w *WebExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/pdf") && w.pdf != nil {
		return w.pdf.ExtractReader(ctx, bytes.NewReader(body))
	}
	if strings.Contains(contentType, "text/plain") {
		return string(body), nil
	}

	md, err := w.converter.ConvertString(string(body), converter.WithDomain(url))
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return md, nil
}
