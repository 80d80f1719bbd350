// Package report holds the read-only diagnostics over the data store.
package report

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
)

// WriteJSON writes v as indented JSON, replacing any previous report.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// percent is valid/total as a percentage with two decimals; 0 for empty sets.
func percent(valid, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(valid)*10000/float64(total)) / 100
}
