package report

import (
	"context"
	"path/filepath"
	"strings"
)

const Title = "Column Usage Report"

// Image: PNG/JPG в памяти. Type в терминах fpdf: "PNG", "JPG".
type Image struct {
	Data []byte
	Type string
}

func (i Image) mime() string {
	if i.Type == "JPG" {
		return "image/jpeg"
	}
	return "image/png"
}

type Document struct {
	Summary Summary
	QR      Image
	Logo    *Image // nil, если логотипа нет
}

// Renderer превращает документ в байты PDF.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return "PNG"
	}
}
