// ABOUTME: Renders topic and reply messages from Markdown to HTML

package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// Render converts a Markdown message to HTML for detail responses. Raw
// HTML in the source is not passed through by goldmark's defaults.
func Render(message string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(message), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}
