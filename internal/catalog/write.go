package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kamusis/acco/internal/directory"
)

// Write writes profiles to path as JSONL, one Row per line, replacing the
// file atomically.
func Write(path string, profiles []directory.Profile) error {
	now := time.Now().UTC().Format(time.RFC3339)
	rows := make([]Row, len(profiles))
	for i, p := range profiles {
		rows[i] = ToRow(p, now)
	}
	return WriteRows(path, rows)
}

// ToRow wraps p with its text hash.
func ToRow(p directory.Profile, updatedAt string) Row {
	return Row{Profile: p, TextHash: TextHash(CanonicalText(p)), UpdatedAt: updatedAt}
}

// WriteRows writes rows to path as JSONL.
func WriteRows(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create catalog dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.jsonl")
	if err != nil {
		return fmt.Errorf("cannot create catalog file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	for _, r := range rows {
		line, err := json.Marshal(r)
		if err != nil {
			_ = tmp.Close()
			return err
		}
		if _, err := bw.Write(line); err != nil {
			_ = tmp.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = tmp.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot write catalog %s: %w", path, err)
	}
	return nil
}
