package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFExtractor reads text operators out of each page's content stream.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (p *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return p.ExtractReader(ctx, f)
}

// ExtractReader extracts page text from an in-memory or streamed PDF.
func (p *PDFExtractor) ExtractReader(ctx context.Context, rs io.ReadSeeker) (string, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(rs, model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		if text := textFromContentStream(data); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("no text content found in PDF")
	}
	return strings.Join(pages, " "), nil
}

var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromContentStream collects string literals shown by Tj, TJ and ' operators.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		shows := bytes.HasSuffix(line, []byte("Tj")) ||
			bytes.HasSuffix(line, []byte("TJ")) ||
			(bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")))
		if shows {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(unescapePDF(m[1]))
			}
			continue
		}

		if bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")) || bytes.Equal(line, []byte("T*")) {
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func unescapePDF(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n', 'r', 't':
			sb.WriteByte(' ')
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}
