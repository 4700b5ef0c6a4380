package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kamusis/acco/internal/directory"
)

// ProfileFile is the document name DiscoverProfiles looks for.
const ProfileFile = "PROFILE.md"

// DiscoverProfiles scans root/*/PROFILE.md and returns the parsed profiles
// in path order. A profile without an id takes its directory name.
func DiscoverProfiles(root string) ([]directory.Profile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot stat profiles directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("profiles path is not a directory: %s", root)
	}

	var out []directory.Profile
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != ProfileFile {
			return nil
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		p, err := parseProfileDoc(string(b))
		if err != nil {
			return fmt.Errorf("invalid frontmatter in %s: %w", path, err)
		}
		if p.ID == "" && filepath.Dir(path) != root {
			p.ID = filepath.Base(filepath.Dir(path))
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, p)
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, fmt.Errorf("cannot scan profiles: %w", err)
	}
	return out, nil
}
