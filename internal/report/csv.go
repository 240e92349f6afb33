// Package report exports the evaluation summary table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docvec/internal/evaluation"
)

// WriteCSV writes the summary header and one row per model.
func WriteCSV(w io.Writer, s evaluation.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Columns()); err != nil {
		return err
	}
	if err := cw.WriteAll(s.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

// SaveCSV writes the summary to path, creating parent directories.
func SaveCSV(path string, s evaluation.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, s); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
