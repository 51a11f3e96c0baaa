// Package loader reads PDF files into ordered page texts. PDF parsing is a
// collaborator boundary: callers get pages of raw text or an error, nothing
// about layout survives.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Loader is the PDF-parsing collaborator: document bytes in, ordered page
// texts out. The indexer and the per-document follow-up path both depend on
// this interface rather than the concrete parser.
type Loader interface {
	LoadReader(r io.Reader) ([]string, error)
}

// PDFLoader extracts plain text from decision-letter PDFs.
type PDFLoader struct{}

// NewPDFLoader creates a new PDF loader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Load reads the PDF at path and returns one text per page, in order.
func (l *PDFLoader) Load(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	return pageTexts(r)
}

// LoadReader reads a PDF from an in-memory or remote source. Used when the
// corpus lives in object storage and there is no local path.
func (l *PDFLoader) LoadReader(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF data: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	return pageTexts(reader)
}

// FullText joins pages with newlines, matching how the offline pass
// concatenates a letter before extraction.
func FullText(pages []string) string {
	return strings.Join(pages, "\n")
}

func pageTexts(r *pdf.Reader) ([]string, error) {
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
