package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRenderBasic(t *testing.T) {
	r := New(nil)

	out, err := r.Render("# Title\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.HTML, "<strong>bold</strong>") {
		t.Errorf("html = %q", out.HTML)
	}
	want := []TocItem{{ID: "title", Text: "Title", Level: 1}}
	if diff := cmp.Diff(want, out.Toc); diff != "" {
		t.Errorf("toc mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderToc(t *testing.T) {
	r := New(nil)

	out, err := r.Render("# One\n\n## Two *em*\n\ntext\n\n### Three\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(out.Toc) != 3 {
		t.Fatalf("toc entries = %d, want 3: %+v", len(out.Toc), out.Toc)
	}
	// Inner markup is stripped from the outline text.
	if out.Toc[1].Text != "Two em" || out.Toc[1].Level != 2 {
		t.Errorf("second entry = %+v", out.Toc[1])
	}
}

func TestRenderMermaidShield(t *testing.T) {
	r := New(nil)

	content := "# Doc\n\n```mermaid\ngraph TD\n  A --> B\n```\n\nafter\n"
	out, err := r.Render(content)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.HTML, "<div class=\"mermaid\">\ngraph TD\n  A --> B\n</div>") {
		t.Errorf("mermaid div missing:\n%s", out.HTML)
	}
	// The diagram body must not have been processed as markdown.
	if strings.Contains(out.HTML, "<code") && strings.Contains(out.HTML, "graph TD") &&
		!strings.Contains(out.HTML, "mermaid") {
		t.Errorf("diagram leaked into code block:\n%s", out.HTML)
	}
}

func TestRenderMultipleMermaidBlocks(t *testing.T) {
	r := New(nil)

	content := "```mermaid\nfirst\n```\n\nmiddle\n\n```mermaid\nsecond\n```\n"
	out, err := r.Render(content)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	first := strings.Index(out.HTML, "first")
	second := strings.Index(out.HTML, "second")
	if first < 0 || second < 0 || first > second {
		t.Errorf("blocks out of order:\n%s", out.HTML)
	}
	if strings.Contains(out.HTML, "MERMAID_PLACEHOLDER") {
		t.Errorf("placeholder left behind:\n%s", out.HTML)
	}
}

func TestPreviewSkipsShield(t *testing.T) {
	r := New(nil)

	out, err := r.Preview("```mermaid\ngraph TD\n```\n")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if strings.Contains(out.HTML, "class=\"mermaid\"") {
		t.Errorf("preview shielded mermaid:\n%s", out.HTML)
	}
	if !strings.Contains(out.HTML, "graph TD") {
		t.Errorf("diagram source missing:\n%s", out.HTML)
	}
}

func TestRenderTaskList(t *testing.T) {
	r := New(nil)

	out, err := r.Render("- [x] done\n- [ ] open\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.HTML, "checkbox") {
		t.Errorf("task list not rendered:\n%s", out.HTML)
	}
}

func TestRenderExtensionSelection(t *testing.T) {
	r := New([]string{"table", "bogus", ""})

	out, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.HTML, "<table>") {
		t.Errorf("table extension not active:\n%s", out.HTML)
	}
}

func TestRenderEmpty(t *testing.T) {
	r := New(nil)

	out, err := r.Render("")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(out.Toc) != 0 {
		t.Errorf("toc = %+v, want empty", out.Toc)
	}
}
