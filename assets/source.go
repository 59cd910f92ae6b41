package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/milk9111/spherefall/levels"
)

// Source reads level files from Dir on disk and falls back to FS, so
// edited files win over the embedded copies.
type Source struct {
	Dir string
	FS  fs.FS
}

// DefaultSource reads from dir with the embedded levels as fallback.
func DefaultSource(dir string) Source {
	return Source{Dir: dir, FS: levels.LevelsFS}
}

func (s Source) Read(name string) ([]byte, error) {
	clean := CleanPath(name)
	if s.Dir != "" {
		if data, err := os.ReadFile(s.diskPath(clean)); err == nil {
			return data, nil
		}
	}
	if s.FS == nil {
		return nil, fmt.Errorf("read %s: %w", clean, fs.ErrNotExist)
	}
	return fs.ReadFile(s.FS, clean)
}

// Names lists the level files available from either location, sorted and
// without duplicates.
func (s Source) Names() []string {
	seen := make(map[string]bool)
	if s.FS != nil {
		if matches, err := fs.Glob(s.FS, "*"+levels.Extension); err == nil {
			for _, m := range matches {
				seen[m] = true
			}
		}
	}
	if s.Dir != "" {
		if entries, err := os.ReadDir(s.Dir); err == nil {
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), levels.Extension) {
					seen[e.Name()] = true
				}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LevelPath turns a level name as typed by a user into an asset path.
func LevelPath(name string) string {
	if name == "" {
		return ""
	}
	name = CleanPath(name)
	if !strings.HasSuffix(name, levels.Extension) {
		name += levels.Extension
	}
	return name
}

// ModTime returns the modification time of the on-disk copy.
func (s Source) ModTime(name string) (time.Time, bool) {
	if s.Dir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(s.diskPath(CleanPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (s Source) diskPath(clean string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(clean))
}

// CleanPath normalises a level path so "levels/a.level.kdl",
// "./a.level.kdl" and "a.level.kdl" name the same asset.
func CleanPath(p string) string {
	if p == "" {
		return ""
	}
	s := path.Clean(filepath.ToSlash(p))
	if after, ok := strings.CutPrefix(s, "levels/"); ok {
		s = after
	}
	return s
}
