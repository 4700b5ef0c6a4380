package offline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiskStore keeps each cache in its own directory under Dir, one JSON file
// per entry named by the sha256 of its path.
type DiskStore struct {
	Dir string
}

// NewDiskStore returns a store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{Dir: dir}
}

func entryFile(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:]) + ".json"
}

func (s *DiskStore) Get(ctx context.Context, cache, path string) (*Entry, error) {
	if err := validName(cache); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, cache, entryFile(path)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read cache entry %s: %w", path, err)
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("invalid cache entry %s: %w", path, err)
	}
	return &e, nil
}

// PutAll writes every entry into a staging directory first, then moves them
// into the cache, so a failed write leaves the cache untouched.
func (s *DiskStore) PutAll(ctx context.Context, cache string, entries []Entry) error {
	if err := validName(cache); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache dir %s: %w", s.Dir, err)
	}
	staging, err := os.MkdirTemp(s.Dir, "."+cache+"-staging-")
	if err != nil {
		return fmt.Errorf("cannot create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(staging, entryFile(e.Path)), b, 0o644); err != nil {
			return fmt.Errorf("cannot write cache entry %s: %w", e.Path, err)
		}
	}

	dst := filepath.Join(s.Dir, cache)
	if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
		if err := os.Rename(staging, dst); err != nil {
			return fmt.Errorf("cannot commit cache %s: %w", cache, err)
		}
		return nil
	}
	files, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Rename(filepath.Join(staging, f.Name()), filepath.Join(dst, f.Name())); err != nil {
			return fmt.Errorf("cannot commit cache entry: %w", err)
		}
	}
	return nil
}

func (s *DiskStore) Keys(ctx context.Context, cache string) ([]string, error) {
	if err := validName(cache); err != nil {
		return nil, err
	}
	files, err := os.ReadDir(filepath.Join(s.Dir, cache))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot list cache %s: %w", cache, err)
	}
	var keys []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.Dir, cache, f.Name()))
		if err != nil {
			return nil, err
		}
		var e struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(b, &e); err != nil {
			continue
		}
		keys = append(keys, e.Path)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *DiskStore) Caches(ctx context.Context) ([]string, error) {
	dirs, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot list caches in %s: %w", s.Dir, err)
	}
	var names []string
	for _, d := range dirs {
		if d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			names = append(names, d.Name())
		}
	}
	return names, nil
}

func (s *DiskStore) Drop(ctx context.Context, cache string) error {
	if err := validName(cache); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.Dir, cache)); err != nil {
		return fmt.Errorf("cannot drop cache %s: %w", cache, err)
	}
	return nil
}
