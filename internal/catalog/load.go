// Package catalog reads and writes profile catalogs: JSONL and YAML files,
// directories of PROFILE.md documents and listing pages.
package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/acco/internal/client"
	"github.com/kamusis/acco/internal/directory"
	"github.com/kamusis/acco/internal/markup"
)

// Row is one line of a JSONL catalog.
type Row struct {
	directory.Profile
	TextHash  string `json:"text_hash,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Load reads profiles from src: an http(s) URL of a listing page, a
// directory of */PROFILE.md documents, or a .jsonl, .json, .yaml, .yml,
// .html or .htm file. Every profile is normalized and validated.
func Load(ctx context.Context, src string) ([]directory.Profile, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		page, err := markup.Fetch(ctx, client.New(0), src)
		if err != nil {
			return nil, fmt.Errorf("cannot load listing %s: %w", src, err)
		}
		return page.Profiles, nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("cannot stat catalog %s: %w", src, err)
	}
	if info.IsDir() {
		return DiscoverProfiles(src)
	}

	var profiles []directory.Profile
	switch strings.ToLower(filepath.Ext(src)) {
	case ".jsonl":
		rows, err := LoadJSONL(src)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			profiles = append(profiles, r.Profile)
		}
	case ".json":
		b, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("cannot read catalog %s: %w", src, err)
		}
		if err := json.Unmarshal(b, &profiles); err != nil {
			return nil, fmt.Errorf("invalid catalog JSON %s: %w", src, err)
		}
	case ".yaml", ".yml":
		b, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("cannot read catalog %s: %w", src, err)
		}
		profiles, err = parseYAML(b)
		if err != nil {
			return nil, fmt.Errorf("invalid catalog YAML %s: %w", src, err)
		}
	case ".html", ".htm":
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("cannot open listing %s: %w", src, err)
		}
		defer f.Close()
		page, err := markup.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("cannot load listing %s: %w", src, err)
		}
		return page.Profiles, nil
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", src)
	}
	return prepare(profiles)
}

// LoadJSONL reads a JSONL catalog. Blank lines are ignored.
func LoadJSONL(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open catalog %s: %w", path, err)
	}
	defer f.Close()

	var out []Row
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(strings.TrimSpace(string(b))) == 0 {
			continue
		}
		var r Row
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("invalid catalog JSONL %s line %d: %w", path, line, err)
		}
		out = append(out, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read catalog %s: %w", path, err)
	}
	for i := range out {
		out[i].Normalize()
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return out, nil
}

// parseYAML accepts either a list of profiles or a mapping with a
// "profiles" list.
func parseYAML(b []byte) ([]directory.Profile, error) {
	var list []directory.Profile
	if err := yaml.Unmarshal(b, &list); err == nil {
		return list, nil
	}
	var doc struct {
		Profiles []directory.Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc.Profiles, nil
}

func prepare(profiles []directory.Profile) ([]directory.Profile, error) {
	for i := range profiles {
		profiles[i].Normalize()
		if err := profiles[i].Validate(); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}
