package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"storyline-cli/internal/store"
)

// suggestError decorates a not-found error with the closest known id or title.
type suggestError struct {
	err        error
	suggestion string
}

func (e suggestError) Error() string {
	return fmt.Sprintf("%s (did you mean %s?)", e.err.Error(), e.suggestion)
}

func (e suggestError) Unwrap() error { return e.err }

// withSuggestion returns err unchanged unless it is a node-not-found error with a near match.
func withSuggestion(db *store.DB, err error) error {
	var nf store.NotFoundError
	if db == nil || !errors.As(err, &nf) {
		return err
	}
	if s := closestNode(db, nf.ID); s != "" {
		return suggestError{err: err, suggestion: s}
	}
	return err
}

// closestNode matches against ids and titles. Titles match case-insensitively; the suggestion is
// always the id.
func closestNode(db *store.DB, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	limit := len(query) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDist := "", limit+1
	for _, n := range db.Nodes() {
		if d := levenshtein.ComputeDistance(query, n.ID); d < bestDist {
			best, bestDist = n.ID, d
		}
		title := strings.ToLower(strings.TrimSpace(n.Title))
		if title == "" {
			continue
		}
		if d := levenshtein.ComputeDistance(strings.ToLower(query), title); d < bestDist {
			best, bestDist = n.ID, d
		}
	}
	return best
}
