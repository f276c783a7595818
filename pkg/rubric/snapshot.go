package rubric

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadSnapshot reads a persisted rubric tree from disk. Snapshot files carry
// percentages as 0-100 floats, keyed types -> categories -> sub_categories.
func LoadSnapshot(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric snapshot: %w", err)
	}

	var r Rubric
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode rubric snapshot %s: %w", path, err)
	}
	if len(r.Types) == 0 {
		return nil, fmt.Errorf("rubric snapshot %s has no types", path)
	}
	return &r, nil
}

// SaveSnapshot writes the rubric tree to disk as indented JSON.
func SaveSnapshot(r *Rubric, path string) error {
	if r == nil {
		return fmt.Errorf("rubric is nil")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rubric snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write rubric snapshot: %w", err)
	}
	return nil
}
