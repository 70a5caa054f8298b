// ABOUTME: Tests for Markdown message rendering

package markdown

import (
	"strings"
	"testing"
)

func TestRenderBasicMarkdown(t *testing.T) {
	html, err := Render("Use **context.Context** on blocking calls")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(html, "<strong>context.Context</strong>") {
		t.Errorf("bold not rendered: %q", html)
	}
}

func TestRenderEscapesRawHTML(t *testing.T) {
	html, err := Render(`hello <script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw HTML passed through: %q", html)
	}
}
