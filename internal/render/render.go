// Package render converts markdown to HTML with a table of contents, shielding
// mermaid diagram blocks from the markdown engine so the browser-side renderer
// receives them untouched.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// TocItem is one heading of the rendered document.
type TocItem struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Output is a rendered document: HTML plus its heading outline.
type Output struct {
	HTML string    `json:"html"`
	Toc  []TocItem `json:"toc"`
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

var defaultExtensions = []goldmark.Extender{
	extension.GFM,
	extension.Linkify,
	extension.TaskList,
	extension.Footnote,
}

// Renderer converts markdown to HTML. It is stateless after construction and
// safe for concurrent use.
type Renderer struct {
	engine goldmark.Markdown
}

// New builds a renderer with the named extensions enabled; unknown names are
// ignored and an empty list selects the defaults. Raw HTML passes through
// unescaped, which the mermaid placeholder comments rely on.
func New(extensions []string) *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(collectExtensions(extensions)...),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return defaultExtensions
	}
	var out []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		out = append(out, ext)
		seen[key] = struct{}{}
	}
	if len(out) == 0 {
		return defaultExtensions
	}
	return out
}

// Render converts markdown to HTML with mermaid blocks shielded: each
// ```mermaid fence is cut out before conversion and spliced back in as a
// <div class="mermaid"> afterwards, so the diagram source is never treated
// as markdown.
func (r *Renderer) Render(content string) (*Output, error) {
	shielded, blocks := shieldMermaid(content)

	out, err := r.convert(shielded)
	if err != nil {
		return nil, err
	}

	htmlText := out
	for i, block := range blocks {
		placeholder := mermaidPlaceholder(i)
		replacement := "<div class=\"mermaid\">\n" + block + "\n</div>"
		htmlText = strings.Replace(htmlText, placeholder, replacement, 1)
	}

	return &Output{HTML: htmlText, Toc: extractToc(htmlText)}, nil
}

// Preview converts markdown without the mermaid shield.
func (r *Renderer) Preview(content string) (*Output, error) {
	out, err := r.convert(content)
	if err != nil {
		return nil, err
	}
	return &Output{HTML: out, Toc: extractToc(out)}, nil
}

func (r *Renderer) convert(content string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render: convert markdown: %w", err)
	}
	return buf.String(), nil
}

func mermaidPlaceholder(i int) string {
	return "<!--MERMAID_PLACEHOLDER_" + strconv.Itoa(i) + "-->"
}

// shieldMermaid replaces each ```mermaid fence with a placeholder comment and
// returns the cut-out diagram bodies in order. An unterminated fence swallows
// the rest of the document, same as a markdown code fence would.
func shieldMermaid(content string) (string, []string) {
	var (
		kept    []string
		blocks  []string
		current []string
		inside  bool
	)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case !inside && trimmed == "```mermaid":
			inside = true
			current = current[:0]
			kept = append(kept, mermaidPlaceholder(len(blocks)))
		case inside && trimmed == "```":
			inside = false
			blocks = append(blocks, strings.Join(current, "\n"))
		case inside:
			current = append(current, line)
		default:
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), blocks
}

var (
	headingRe = regexp.MustCompile(`(?s)<h([1-6]) id="([^"]+)"[^>]*>(.+?)</h[1-6]>`)
	innerTag  = regexp.MustCompile(`<[^>]+>`)
)

// extractToc collects the headings goldmark emitted with auto-generated IDs.
func extractToc(htmlText string) []TocItem {
	toc := []TocItem{}
	for _, m := range headingRe.FindAllStringSubmatch(htmlText, -1) {
		level, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		toc = append(toc, TocItem{
			ID:    m[2],
			Text:  strings.TrimSpace(innerTag.ReplaceAllString(m[3], "")),
			Level: level,
		})
	}
	return toc
}
