package publish

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyline-cli/internal/model"
	"storyline-cli/internal/store"
)

type RenderOptions struct {
	// Summaries writes each node's summary under its heading.
	Summaries bool
	// Meta writes a short list of chapter status and scene fields.
	Meta bool
	// RespectInclude filters chapters by their includeInFull mode: none drops the chapter,
	// summary keeps the heading and summary but not its scenes, full keeps everything.
	RespectInclude bool
}

var titleCaser = cases.Title(language.English)

// Label returns a display label such as "Chapter" or "Needs Work".
func Label(s string) string {
	return titleCaser.String(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
}

// RenderTreeMarkdown renders rootID and its subtree in reading order. An empty rootID renders
// every book.
func RenderTreeMarkdown(db *store.DB, rootID string, opt RenderOptions) (string, error) {
	if db == nil {
		return "", fmt.Errorf("missing db")
	}
	rootID = strings.TrimSpace(rootID)

	var roots []model.Node
	if rootID == "" {
		roots = db.ChildrenOf("")
	} else {
		n, ok := db.Node(rootID)
		if !ok {
			return "", store.NotFoundError{Kind: "node", ID: rootID}
		}
		roots = []model.Node{n}
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	var walk func(n model.Node)
	walk = func(n model.Node) {
		descend := true
		if opt.RespectInclude && n.Type == model.NodeChapter {
			switch n.IncludeInFull {
			case model.IncludeNone:
				return
			case model.IncludeSummary:
				descend = false
			}
		}

		title := strings.TrimSpace(n.Title)
		if title == "" {
			title = "Untitled " + string(n.Type)
		}
		writeLn(strings.Repeat("#", headingLevel(n.Type)) + " " + title)
		writeLn("")

		if opt.Meta {
			if meta := metaLines(n); len(meta) > 0 {
				for _, l := range meta {
					writeLn("- " + l)
				}
				writeLn("")
			}
		}
		if opt.Summaries {
			if s := strings.TrimSpace(n.Summary); s != "" {
				writeLn(s)
				writeLn("")
			}
		}
		if !descend {
			return
		}
		for _, c := range db.ChildrenOf(n.ID) {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

func headingLevel(t model.NodeType) int {
	for i, nt := range model.NodeTypes {
		if nt == t {
			return i + 1
		}
	}
	return len(model.NodeTypes)
}

func metaLines(n model.Node) []string {
	var out []string
	switch n.Type {
	case model.NodeChapter:
		if n.Status != model.StatusNone {
			out = append(out, "Status: "+Label(string(n.Status)))
		}
		out = append(out, "Included: "+Label(n.IncludeInFull.String()))
	case model.NodeScene:
		sc := n.Scene
		if sc == nil {
			return nil
		}
		if sc.Goal != "" {
			out = append(out, "Goal: "+sc.Goal)
		}
		if sc.ViewpointCharacterID != "" {
			out = append(out, "Viewpoint: "+sc.ViewpointCharacterID)
		}
		if sc.Perspective != "" {
			out = append(out, "Perspective: "+Label(strings.ToLower(string(sc.Perspective))))
		}
		if sc.StoryTime != nil {
			out = append(out, "Story time: "+strconv.FormatInt(*sc.StoryTime, 10)+" min")
		}
		if len(sc.ActiveCharacterIDs) > 0 {
			out = append(out, "Characters: "+strings.Join(sc.ActiveCharacterIDs, ", "))
		}
	}
	return out
}
