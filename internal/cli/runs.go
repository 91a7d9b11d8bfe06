package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// runMeta is the subset of meta.json the CLI reads back.
type runMeta struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source,omitempty"`
	Git       *struct {
		Commit string `json:"commit"`
		Branch string `json:"branch,omitempty"`
		Dirty  bool   `json:"dirty"`
	} `json:"git,omitempty"`
}

// runEntry describes one run directory found under a base directory.
type runEntry struct {
	Name string // directory name, timestamp-sortable
	Dir  string // absolute path
	Meta *runMeta
}

// scanRuns returns the run directories under base in ascending timestamp
// order. Directories without a meta.json are still listed; their Meta is nil.
func scanRuns(base string) ([]runEntry, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("failed to read base directory %s: %w", base, err)
	}

	var runs []runEntry
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir, err := filepath.Abs(filepath.Join(base, entry.Name()))
		if err != nil {
			return nil, err
		}
		runs = append(runs, runEntry{
			Name: entry.Name(),
			Dir:  dir,
			Meta: readRunMeta(dir),
		})
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Name < runs[j].Name
	})
	return runs, nil
}

// readRunMeta reads meta.json from a run directory, returning nil when the
// file is missing or unparseable.
func readRunMeta(dir string) *runMeta {
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return nil
	}
	var meta runMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil
	}
	return &meta
}

// readParams reads and parses params.json from a run directory.
func readParams(dir string) (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(dir, "params.json"))
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse params.json: %w", err)
	}
	return params, nil
}
