package publish

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	rendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle queries the terminal and can block, so the
	// style is resolved up front and renderers are reused.
	renderers = map[string]*glamour.TermRenderer{}
)

// ResolveStyle maps auto|dark|light to a concrete glamour style name.
func ResolveStyle(style string) string {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// RenderTerminal renders markdown for a terminal. On renderer errors the source is returned as is.
func RenderTerminal(md string, width int, style string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	style = ResolveStyle(style)
	key := style + ":" + strconv.Itoa(width)

	rendererMu.Lock()
	r := renderers[key]
	rendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		rendererMu.Lock()
		if existing := renderers[key]; existing != nil {
			r = existing
		} else {
			renderers[key] = rr
			r = rr
		}
		rendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
