package tui

import (
	"fmt"
	"strconv"
	"strings"

	"storyline-cli/internal/model"
	"storyline-cli/internal/publish"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

func (m appModel) View() string {
	header := styleHeader().Render("Storyline") + styleMuted().Render(fmt.Sprintf("  %d nodes", m.db.Len()))
	footer := m.footerView()

	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 3 {
		bodyH = 3
	}

	outlineW := m.width
	detailW := 0
	if m.showDetail && m.width >= 60 {
		outlineW = m.width * 3 / 5
		detailW = m.width - outlineW - 1
	}
	body := m.outlineView(outlineW, bodyH)
	if detailW > 0 {
		sep := styleMuted().Render(strings.Repeat("│\n", bodyH-1) + "│")
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, sep, m.detailView(detailW, bodyH))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m appModel) outlineView(w, h int) string {
	if len(m.rows) == 0 {
		return padLines(styleMuted().Render("No books yet. Press n to create one."), h)
	}

	// Keep the cursor visible.
	start := 0
	if m.cursor >= h {
		start = m.cursor - h + 1
	}
	end := start + h
	if end > len(m.rows) {
		end = len(m.rows)
	}

	target, hasTarget := m.drag.Target()
	dragging := map[string]bool{}
	for _, id := range m.drag.Dragging() {
		dragging[id] = true
	}

	lines := make([]string, 0, h)
	for i := start; i < end; i++ {
		r := m.rows[i]
		n, _ := m.db.Node(r.ID)

		twisty := "  "
		if r.HasChildren {
			twisty = "▸ "
			if r.Expanded {
				twisty = "▾ "
			}
		}
		mark := "  "
		if m.marked.Has(r.ID) {
			mark = styleMarked().Render("● ")
		}
		title := strings.TrimSpace(n.Title)
		if title == "" {
			title = "(untitled)"
		}
		if m.db.SelectedID() == r.ID {
			title = "» " + title
		}
		right := rowBadge(n)
		if hasTarget && target.NodeID == r.ID {
			right = styleDrop().Render(dropGlyph(target.Position))
		}

		left := strings.Repeat("  ", r.Depth) + twisty + mark + title
		if dragging[r.ID] {
			left = styleMuted().Render(left)
		}
		line := joinLeftRight(left, right, w)
		if i == m.cursor {
			line = styleCursor().Render(padOrCutANSI(xansi.Strip(line), w))
		}
		lines = append(lines, line)
	}
	return padLines(strings.Join(lines, "\n"), h)
}

func (m appModel) detailView(w, h int) string {
	n, ok := m.current()
	if !ok {
		return padLines("", h)
	}
	var b strings.Builder
	b.WriteString(styleHeader().Render(truncateToWidth(n.Title, w)) + "\n")
	b.WriteString(styleMuted().Render(publish.Label(string(n.Type))+" · updated "+humanize.Time(n.UpdatedAt)) + "\n")

	var meta []string
	switch n.Type {
	case model.NodeChapter:
		meta = append(meta, "Status: "+statusLabel(n.Status), "Included: "+publish.Label(n.IncludeInFull.String()))
	case model.NodeScene:
		if sc := n.Scene; sc != nil {
			if sc.Goal != "" {
				meta = append(meta, "Goal: "+sc.Goal)
			}
			if sc.Perspective != "" {
				meta = append(meta, "Perspective: "+publish.Label(strings.ToLower(string(sc.Perspective))))
			}
			if sc.StoryTime != nil {
				meta = append(meta, "Story time: "+strconv.FormatInt(*sc.StoryTime, 10)+" min")
			}
		}
	default:
		meta = append(meta, fmt.Sprintf("%d %s", len(m.db.ChildrenOf(n.ID)), childNoun(n.Type)))
	}
	for _, l := range meta {
		b.WriteString(truncateToWidth(l, w) + "\n")
	}
	if s := strings.TrimSpace(n.Summary); s != "" {
		b.WriteString("\n" + publish.RenderTerminal(s, w, m.opts.MarkdownStyle))
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	return padLines(strings.Join(lines, "\n"), h)
}

func (m appModel) footerView() string {
	var lines []string
	switch {
	case m.mode == modePrompt:
		lines = append(lines, m.input.View())
	case m.status != "" && m.statusErr:
		lines = append(lines, styleError().Render(truncateToWidth(m.status, m.width)))
	case m.status != "":
		lines = append(lines, truncateToWidth(m.status, m.width))
	}
	if m.mode == modeDrag {
		lines = append(lines, styleMuted().Render("j/k: move pointer   enter: drop   esc: cancel"))
	} else {
		lines = append(lines, m.help.View(m.keys))
	}
	return strings.Join(lines, "\n")
}

func rowBadge(n model.Node) string {
	switch n.Type {
	case model.NodeChapter:
		s := ""
		if n.Status != model.StatusNone {
			s = styleStatus(string(n.Status)).Render(statusLabel(n.Status)) + " "
		}
		return s + styleMuted().Render(includeGlyph(n.IncludeInFull))
	default:
		return styleMuted().Render(string(n.Type))
	}
}

func statusLabel(s model.ChapterStatus) string {
	if s == model.StatusNone {
		return "None"
	}
	return publish.Label(string(s))
}

func includeGlyph(m model.IncludeMode) string {
	switch m {
	case model.IncludeNone:
		return "○"
	case model.IncludeFull:
		return "●"
	default:
		return "◐"
	}
}

func dropGlyph(p model.DropPosition) string {
	switch p {
	case model.DropBefore:
		return "▲ before"
	case model.DropAfter:
		return "▼ after"
	default:
		return "◆ inside"
	}
}

func childNoun(t model.NodeType) string {
	switch t {
	case model.NodeBook:
		return "arcs"
	case model.NodeArc:
		return "chapters"
	default:
		return "children"
	}
}

func joinLeftRight(left, right string, w int) string {
	rightW := xansi.StringWidth(right)
	availLeft := w - rightW - 1
	if availLeft < 1 {
		return truncateToWidth(left, w)
	}
	left = truncateToWidth(left, availLeft)
	gap := w - xansi.StringWidth(left) - rightW
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func truncateToWidth(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	if w <= 1 {
		return "…"
	}
	return xansi.Truncate(s, w-1, "") + "…"
}

func padOrCutANSI(s string, w int) string {
	cur := xansi.StringWidth(s)
	switch {
	case cur < w:
		return s + strings.Repeat(" ", w-cur)
	case cur > w:
		return xansi.Truncate(s, w, "")
	default:
		return s
	}
}

func padLines(s string, h int) string {
	lines := strings.Split(s, "\n")
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines[:h], "\n")
}
