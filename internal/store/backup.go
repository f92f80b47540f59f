package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storyline-cli/internal/model"
)

// WriteNodesJSONL writes the collection in reading order, one node per line.
func WriteNodesJSONL(path string, db *DB) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, n := range db.Nodes() {
		if err := enc.Encode(n); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// ReadNodesJSONL reads nodes written by WriteNodesJSONL. Blank lines are skipped.
func ReadNodesJSONL(path string) ([]model.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []model.Node
	sc := bufio.NewScanner(f)
	// Summaries can be long.
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var n model.Node
		if err := json.Unmarshal([]byte(line), &n); err != nil {
			return nil, fmt.Errorf("parse nodes jsonl line %d: %w", lineNo, err)
		}
		out = append(out, n)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Node{}
	}
	return out, nil
}

// CheckNodes reports structural issues in nodes without touching any live DB.
func CheckNodes(nodes []model.Node) (Report, error) {
	tmp := NewDB()
	if err := tmp.SetNodes(nodes); err != nil {
		return Report{}, err
	}
	return tmp.Check(), nil
}
