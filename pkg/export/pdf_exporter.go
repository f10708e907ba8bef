package export

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfFontFamily = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	regularFont []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	boldFont []byte
)

// Document is a titled sequence of paragraphs.
type Document struct {
	Title      string
	Paragraphs []string
}

// PDFOption customises a PDFExporter.
type PDFOption func(*PDFExporter)

// WithCompression toggles stream compression of the rendered file.
func WithCompression(enabled bool) PDFOption {
	return func(e *PDFExporter) {
		e.compress = enabled
	}
}

// PDFExporter renders narrative documents into PDF using an embedded
// Unicode font, so non-Latin names are kept intact.
type PDFExporter struct {
	compress bool
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(opts ...PDFOption) *PDFExporter {
	e := &PDFExporter{compress: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render creates an A4 document with a heading followed by one paragraph per entry.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", regularFont)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "B", boldFont)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont(pdfFontFamily, "B", 16)
		pdf.CellFormat(0, 10, doc.Title, "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont(pdfFontFamily, "", 11)
	for _, paragraph := range doc.Paragraphs {
		pdf.MultiCell(0, 6, paragraph, "", "L", false)
		pdf.Ln(2)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
