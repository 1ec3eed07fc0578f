// Package fonts locates TrueType/OpenType files for the overlay text.
package fonts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Exts are the file extensions treated as fonts.
var Exts = []string{".ttf", ".otf"}

// ErrNotFound is returned when no font matches a name.
var ErrNotFound = errors.New("fonts: no matching font")

// BaseDirs returns candidate font directories, relative to the working directory.
func BaseDirs() []string {
	return []string{"assets/fonts", "../../assets/fonts"}
}

// ScanDir returns the font files under dir as slash-separated relative paths, sorted.
// A missing dir yields no files and no error.
func ScanDir(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !slices.Contains(Exts, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	slices.Sort(out)
	return out, err
}

// normalize lowercases and drops spaces, dashes and underscores.
func normalize(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
}

// Candidates returns the search terms tried in order for name: the name itself, its first
// path segment, the part before the first dash, and the name without extension.
func Candidates(name string) []string {
	name = strings.TrimSpace(name)
	out := []string{name}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if i := strings.IndexAny(name, "/\\"); i > 0 {
		add(name[:i])
	}
	if i := strings.Index(name, "-"); i > 0 {
		add(name[:i])
	}
	if ext := filepath.Ext(name); slices.Contains(Exts, strings.ToLower(ext)) {
		add(strings.TrimSuffix(name, ext))
	}
	return out
}

// Find returns the path of the font in dirs that best matches name. An existing file path
// is returned as is. Otherwise each candidate term is matched against the scanned files,
// preferring a "Regular" face when several match.
func Find(dirs []string, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrNotFound
	}
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		return name, nil
	}
	for _, term := range Candidates(name) {
		norm := normalize(term)
		var hits []string
		for _, dir := range dirs {
			list, err := ScanDir(dir)
			if err != nil {
				continue
			}
			for _, rel := range list {
				if strings.Contains(normalize(rel), norm) {
					hits = append(hits, filepath.Join(dir, filepath.FromSlash(rel)))
				}
			}
		}
		if len(hits) == 0 {
			continue
		}
		for _, h := range hits {
			if strings.Contains(strings.ToLower(filepath.Base(h)), "regular") {
				return h, nil
			}
		}
		return hits[0], nil
	}
	return "", ErrNotFound
}
