// Package extract turns uploaded files into plain document text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/askdoc/askdoc/internal/domain"
)

// PDF extracts plain text from PDF uploads. Uploads are bounded by the
// HTTP max body size, so the whole file is held in memory.
type PDF struct {
	logger *zap.Logger
}

// NewPDF creates a PDF extractor.
func NewPDF(logger *zap.Logger) *PDF {
	return &PDF{logger: logger}
}

// Extract reads the PDF from r and returns its concatenated page text.
// A file that parses but contains no text (scanned pages, images only)
// yields ErrEmptyDocument.
func (p *PDF) Extract(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a readable PDF: %v", domain.ErrValidation, err)
	}

	plain, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extract PDF text: %v", domain.ErrValidation, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: read PDF text: %v", domain.ErrValidation, err)
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("PDF contains no extractable text: %w", domain.ErrEmptyDocument)
	}

	p.logger.Debug("pdf extracted",
		zap.Int("pages", rdr.NumPage()),
		zap.Int("bytes", len(data)),
		zap.Int("text_len", len(text)),
	)
	return text, nil
}
