package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// RenderPDF writes d as an A4 PDF. Nothing is returned unless the whole
// document rendered.
func RenderPDF(d Document) ([]byte, error) {
	if len(d.Pages) == 0 {
		return nil, fmt.Errorf("document %q has no pages", d.Title)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(d.Title, true)
	pdf.SetCreator("videocraft", true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range d.Pages {
		pdf.AddPage()
		for _, it := range page.Items {
			pdf.SetFont(fontFamily, "", it.Size)
			pdf.Text(it.X, it.Y, tr(it.Text))
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
