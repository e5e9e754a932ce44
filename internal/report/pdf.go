package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PDFRenderer рисует отчёт прямо в процессе, внешние бинарники не нужны.
// Без FontPath используется встроенная Helvetica, а она умеет только cp1252:
// греческие буквы и индексы в подвижных фазах превращаются в точки.
type PDFRenderer struct {
	FontPath string // UTF-8 TTF, например DejaVuSans.ttf
}

const utf8Family = "report"

func (r PDFRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.SetAutoPageBreak(true, 15)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if r.FontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", r.FontPath)
		pdf.AddUTF8Font(utf8Family, "B", r.FontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load font %s: %w", r.FontPath, err)
		}
		family = utf8Family
		tr = func(s string) string { return s }
	}

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	if doc.Logo != nil {
		opts := fpdf.ImageOptions{ImageType: doc.Logo.Type}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(doc.Logo.Data))
		const logoW = 40.0
		pdf.ImageOptions("logo", (pageW-logoW)/2, 0, logoW, 0, true, opts, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont(family, "B", 18)
	pdf.CellFormat(0, 12, Title, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, f := range doc.Summary.Fields() {
		pdf.SetFont(family, "B", 11)
		pdf.CellFormat(45, 8, tr(f.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont(family, "", 11)
		pdf.CellFormat(0, 8, tr(f.Value), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont(family, "B", 11)
	pdf.CellFormat(0, 8, "QR Code (scan for details):", "", 1, "L", false, 0, "")

	qrOpts := fpdf.ImageOptions{ImageType: doc.QR.Type}
	pdf.RegisterImageOptionsReader("qr", qrOpts, bytes.NewReader(doc.QR.Data))
	pdf.ImageOptions("qr", pdf.GetX(), 0, 60, 60, true, qrOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("fpdf: %w", err)
	}
	return buf.Bytes(), nil
}
