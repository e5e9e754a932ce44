package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"os/exec"
	"strings"
)

var htmlTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<div style="text-align: center;">
{{if .Logo}}<img src="{{.Logo}}" width="150"/>{{end}}
<h2>{{.Title}}</h2>
</div>
{{range .Fields}}<p><b>{{.Label}}:</b> {{.Value}}</p>
{{end}}<p><b>QR Code (scan for details):</b></p>
<img src="{{.QR}}" width="200"/>
</body></html>
`))

// WkhtmltopdfRenderer отдаёт HTML во внешний wkhtmltopdf. Путь к бинарнику берётся из конфига.
type WkhtmltopdfRenderer struct {
	Path string
}

func dataURL(img Image) template.URL {
	return template.URL("data:" + img.mime() + ";base64," + base64.StdEncoding.EncodeToString(img.Data))
}

func renderHTML(doc Document) ([]byte, error) {
	data := struct {
		Title  string
		Fields []Field
		QR     template.URL
		Logo   template.URL
	}{
		Title:  Title,
		Fields: doc.Summary.Fields(),
		QR:     dataURL(doc.QR),
	}
	if doc.Logo != nil {
		data.Logo = dataURL(*doc.Logo)
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w WkhtmltopdfRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if w.Path == "" {
		return nil, errors.New("wkhtmltopdf path is not configured")
	}

	html, err := renderHTML(doc)
	if err != nil {
		return nil, fmt.Errorf("build report html: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, w.Path, "--quiet", "--encoding", "utf-8", "-", "-")
	cmd.Stdin = bytes.NewReader(html)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", w.Path, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no output", w.Path)
	}
	return stdout.Bytes(), nil
}
