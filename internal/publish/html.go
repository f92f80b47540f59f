package publish

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"storyline-cli/internal/store"
)

var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		// No html.WithUnsafe: raw HTML in titles and summaries is omitted.
		html.WithHardWraps(),
	),
)

var htmlPage = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// MarkdownToHTML converts a markdown fragment to HTML.
func MarkdownToHTML(md string) (template.HTML, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	var b bytes.Buffer
	if err := htmlRenderer.Convert([]byte(md), &b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

// RenderTreeHTML renders the same outline as RenderTreeMarkdown as a standalone HTML page.
func RenderTreeHTML(db *store.DB, rootID string, opt RenderOptions) (string, error) {
	md, err := RenderTreeMarkdown(db, rootID, opt)
	if err != nil {
		return "", err
	}
	body, err := MarkdownToHTML(md)
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	title := "Storyline"
	if n, ok := db.Node(strings.TrimSpace(rootID)); ok && strings.TrimSpace(n.Title) != "" {
		title = n.Title
	}
	var out bytes.Buffer
	if err := htmlPage.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{title, body}); err != nil {
		return "", err
	}
	return out.String(), nil
}

func isHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}
