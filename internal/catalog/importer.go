package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kamusis/acco/internal/directory"
)

// Conflict records an incoming profile whose key exists with other content.
type Conflict struct {
	Key      string
	Existing directory.Profile
	Incoming directory.Profile
}

// Result is returned by Import.
type Result struct {
	Imported  int // new profiles appended
	Skipped   int // identical duplicates
	Replaced  int // conflicts overwritten
	Conflicts []Conflict
	Total     int // profiles in the catalog afterwards
}

// Import merges incoming profiles into the JSONL catalog at dst, creating it
// if needed. Profiles are matched by their derived key. An identical
// profile is skipped; one with different content is a conflict, kept as is
// unless overwrite is set.
func Import(dst string, incoming []directory.Profile, overwrite bool) (*Result, error) {
	result := &Result{}

	var rows []Row
	if _, err := os.Stat(dst); err == nil {
		rows, err = LoadJSONL(dst)
		if err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot stat catalog %s: %w", dst, err)
	}

	byKey := make(map[string]int, len(rows))
	for i, r := range rows {
		byKey[directory.DeriveKey(r.Name, "")] = i
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range incoming {
		p.Normalize()
		if err := p.Validate(); err != nil {
			return result, err
		}
		key := directory.DeriveKey(p.Name, "")
		in := ToRow(p, now)

		// ── Hash-based conflict resolution ───────────────────────────────
		i, exists := byKey[key]
		if !exists {
			byKey[key] = len(rows)
			rows = append(rows, in)
			result.Imported++
			continue
		}
		have := rows[i].TextHash
		if have == "" {
			have = TextHash(CanonicalText(rows[i].Profile))
		}
		if have == in.TextHash {
			result.Skipped++
			continue
		}
		result.Conflicts = append(result.Conflicts, Conflict{Key: key, Existing: rows[i].Profile, Incoming: p})
		if overwrite {
			in.ID = rows[i].ID
			rows[i] = in
			result.Replaced++
		}
	}

	if err := WriteRows(dst, rows); err != nil {
		return result, err
	}
	result.Total = len(rows)
	return result, nil
}
