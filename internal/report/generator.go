package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"column-tracker/internal/common"
	"column-tracker/internal/metrics"
	"column-tracker/internal/models"
	"column-tracker/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	ContentType = "application/pdf"
	qrSize      = 256
)

type Report struct {
	Key  string
	Size int64
}

type Generator struct {
	renderer Renderer
	store    storage.Provider
	logoPath string
	log      *zap.Logger
}

func NewGenerator(r Renderer, store storage.Provider, logoPath string, log *zap.Logger) *Generator {
	return &Generator{renderer: r, store: store, logoPath: logoPath, log: log}
}

// RendererFor выбирает внешний wkhtmltopdf, если путь задан, иначе встроенный.
func RendererFor(wkhtmltopdfPath, fontPath string) Renderer {
	if wkhtmltopdfPath != "" {
		return WkhtmltopdfRenderer{Path: wkhtmltopdfPath}
	}
	return PDFRenderer{FontPath: fontPath}
}

func (g *Generator) logo() *Image {
	if g.logoPath == "" {
		return nil
	}
	data, err := os.ReadFile(g.logoPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			g.log.Warn("cannot read report logo", zap.String("path", g.logoPath), zap.Error(err))
		}
		return nil
	}
	return &Image{Data: data, Type: imageType(g.logoPath)}
}

// Document собирает всё для рендера; entry должен быть с подгруженными User и Column.
func (g *Generator) Document(entry models.UsageEntry) (Document, error) {
	summary := Summarize(entry)

	qr, err := qrcode.Encode(summary.QRPayload(), qrcode.Medium, qrSize)
	if err != nil {
		return Document{}, fmt.Errorf("encode qr: %w", err)
	}

	return Document{
		Summary: summary,
		QR:      Image{Data: qr, Type: "PNG"},
		Logo:    g.logo(),
	}, nil
}

// Generate рендерит отчёт и кладёт его в архив под usage_report_<id>.pdf.
// Любая ошибка оборачивает common.ErrRenderFailure.
func (g *Generator) Generate(ctx context.Context, entry models.UsageEntry) (Report, error) {
	timer := prometheus.NewTimer(metrics.RenderDuration)
	defer timer.ObserveDuration()

	rep, err := g.generate(ctx, entry)
	if err != nil {
		metrics.Reports.WithLabelValues("failed").Inc()
		g.log.Error("report generation failed", zap.Uint("entry_id", entry.ID), zap.Error(err))
		return Report{}, fmt.Errorf("%w: entry %d: %w", common.ErrRenderFailure, entry.ID, err)
	}

	metrics.Reports.WithLabelValues("ok").Inc()
	g.log.Info("report generated", zap.Uint("entry_id", entry.ID), zap.String("key", rep.Key), zap.Int64("size", rep.Size))
	return rep, nil
}

func (g *Generator) generate(ctx context.Context, entry models.UsageEntry) (Report, error) {
	doc, err := g.Document(entry)
	if err != nil {
		return Report{}, err
	}

	pdf, err := g.renderer.Render(ctx, doc)
	if err != nil {
		return Report{}, err
	}

	key := entry.ReportName()
	if err := g.store.Put(ctx, key, bytes.NewReader(pdf), int64(len(pdf)), ContentType); err != nil {
		return Report{}, fmt.Errorf("store %s: %w", key, err)
	}
	return Report{Key: key, Size: int64(len(pdf))}, nil
}

// Open отдаёт PDF из архива; если его нет (например, рендер ранее упал): генерирует заново.
func (g *Generator) Open(ctx context.Context, entry models.UsageEntry) (io.ReadCloser, error) {
	key := entry.ReportName()

	rc, err := g.store.Get(ctx, key)
	if err == nil {
		return rc, nil
	}
	if !errors.Is(err, storage.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}

	if _, err := g.Generate(ctx, entry); err != nil {
		return nil, err
	}
	return g.store.Get(ctx, key)
}
