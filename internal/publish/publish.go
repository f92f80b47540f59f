package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"storyline-cli/internal/store"
)

type WriteOptions struct {
	Render    RenderOptions
	Overwrite bool
	// HTML writes a standalone page. Paths ending in .html or .htm imply it.
	HTML bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteTree renders rootID (or every book) to a markdown or HTML file at path.
func WriteTree(db *store.DB, rootID string, path string, opt WriteOptions) (WriteResult, error) {
	if db == nil {
		return WriteResult{}, errors.New("missing db")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	path = filepath.Clean(path)

	render := RenderTreeMarkdown
	if opt.HTML || isHTMLPath(path) {
		render = RenderTreeHTML
	}
	doc, err := render(db, rootID, opt.Render)
	if err != nil {
		return WriteResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteResult{}, err
	}
	if err := writeFile(path, []byte(doc), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{path}}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
