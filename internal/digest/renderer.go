package digest

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)
	conditionalPattern = regexp.MustCompile(`(?s)\{%\s*if\s+([a-zA-Z0-9_]+)\s*%\}(.*?)\{%\s*endif\s*%\}`)
)

// Renderer fills {{placeholder}} templates. Conditional blocks
// ({% if name %}...{% endif %}) are kept only when the named
// placeholder has a non-empty value; unknown placeholders are stripped.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(name string, placeholders map[string]string) (string, error) {
	raw, err := templateFS.ReadFile("templates/" + name + ".html")
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", name, err)
	}
	return r.RenderString(string(raw), placeholders), nil
}

func (r *Renderer) RenderString(template string, placeholders map[string]string) string {
	out := conditionalPattern.ReplaceAllStringFunc(template, func(match string) string {
		groups := conditionalPattern.FindStringSubmatch(match)
		if strings.TrimSpace(placeholders[groups[1]]) == "" {
			return ""
		}
		return groups[2]
	})

	out = placeholderPattern.ReplaceAllStringFunc(out, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		return placeholders[groups[1]]
	})

	return out
}
