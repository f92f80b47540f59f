package store

import (
	"context"
	"os"
	"path/filepath"

	"storyline-cli/internal/model"
)

const (
	// DirName is the store directory looked up from the working directory upwards.
	DirName        = ".storyline"
	sqliteFileName = "storyline.sqlite"
)

// Store locates the on-disk state of one story.
type Store struct {
	Dir string
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, DirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

// Exists reports whether the store has been initialized.
func (s Store) Exists() bool {
	_, err := os.Stat(s.sqlitePath())
	return err == nil
}

// Load reads the node collection and saved view state into a fresh DB.
func (s Store) Load(ctx context.Context) (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.LoadSQLite(ctx)
}

// Save writes the full collection. The collection is the unit of truth: rows are replaced,
// never patched.
func (s Store) Save(ctx context.Context, db *DB) error {
	return s.Persist(ctx, db, nil)
}

// Persist writes the full collection and appends commits in a single transaction.
func (s Store) Persist(ctx context.Context, db *DB, commits []model.Commit) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.SaveSQLite(ctx, db, commits)
}
