// Package pdf exports markdown files as PDF documents by rendering them to a
// styled HTML page and piping that through wkhtmltopdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os/exec"
	"path"
	"strings"

	"github.com/starford/wunjo/internal/render"
	"github.com/starford/wunjo/internal/storage"
)

// stylesheet is embedded into every exported document.
const stylesheet = `body {
    font-family: Arial, sans-serif;
    line-height: 1.6;
    margin: 0;
    padding: 0;
    color: #333;
}
h1, h2, h3, h4, h5, h6 {
    margin-top: 1.5em;
    margin-bottom: 0.5em;
    font-weight: 600;
}
h1 { font-size: 2em; }
h2 { font-size: 1.75em; }
h3 { font-size: 1.5em; }
h4 { font-size: 1.25em; }
h5 { font-size: 1em; }
h6 { font-size: 0.85em; }
a { color: #0366d6; text-decoration: none; }
pre {
    background-color: #f6f8fa;
    border-radius: 3px;
    padding: 12px;
    overflow: auto;
}
code {
    font-family: 'Courier New', Courier, monospace;
    background-color: rgba(27, 31, 35, 0.05);
    border-radius: 3px;
    padding: 0.2em 0.4em;
}
img { max-width: 100%; }
table {
    border-collapse: collapse;
    width: 100%;
    margin-bottom: 1em;
}
table, th, td {
    border: 1px solid #ddd;
}
th, td {
    padding: 8px 12px;
    text-align: left;
}
th { background-color: #f2f2f2; }
blockquote {
    margin: 0;
    padding-left: 1em;
    border-left: 4px solid #ddd;
    color: #555;
}
ul, ol { padding-left: 2em; }
hr {
    border: none;
    height: 1px;
    background-color: #ddd;
    margin: 1em 0;
}
.task-list-item {
    list-style-type: none;
}
.task-list-item input {
    margin-right: 0.5em;
}`

// Document wraps rendered HTML into a complete page with the export
// stylesheet and the given title.
func Document(title, body string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n<title>")
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</title>\n<style>\n")
	sb.WriteString(stylesheet)
	sb.WriteString("\n</style>\n</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

// Converter turns an HTML document into PDF bytes.
type Converter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

// WKHTMLToPDF shells out to the wkhtmltopdf binary, streaming the document
// through stdin and reading the PDF from stdout so no temp files are needed.
type WKHTMLToPDF struct {
	Binary string
}

func NewWKHTMLToPDF(binary string) *WKHTMLToPDF {
	if binary == "" {
		binary = "wkhtmltopdf"
	}
	return &WKHTMLToPDF{Binary: binary}
}

func (w *WKHTMLToPDF) Convert(ctx context.Context, doc string) ([]byte, error) {
	args := []string{
		"--quiet",
		"--encoding", "utf-8",
		"--page-size", "A4",
		"--margin-top", "0.75in",
		"--margin-right", "0.75in",
		"--margin-bottom", "0.75in",
		"--margin-left", "0.75in",
		"--no-outline",
		"-", "-",
	}
	cmd := exec.CommandContext(ctx, w.Binary, args...)
	cmd.Stdin = strings.NewReader(doc)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("pdf: wkhtmltopdf: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("pdf: wkhtmltopdf: %w", err)
	}
	return out.Bytes(), nil
}

// Exporter reads a markdown file, renders it and converts the result to PDF.
type Exporter struct {
	files    storage.Provider
	renderer *render.Renderer
	conv     Converter
}

func NewExporter(files storage.Provider, renderer *render.Renderer, conv Converter) *Exporter {
	return &Exporter{files: files, renderer: renderer, conv: conv}
}

// Export converts the markdown file at filePath. The suggested download name
// swaps the .md suffix for .pdf.
func (e *Exporter) Export(ctx context.Context, filePath string) (data []byte, filename string, err error) {
	content, err := e.files.Read(filePath)
	if err != nil {
		return nil, "", err
	}

	out, err := e.renderer.Render(content)
	if err != nil {
		return nil, "", err
	}

	base := path.Base(filePath)
	data, err = e.conv.Convert(ctx, Document(base, out.HTML))
	if err != nil {
		return nil, "", err
	}

	filename = strings.TrimSuffix(base, ".md") + ".pdf"
	return data, filename, nil
}
