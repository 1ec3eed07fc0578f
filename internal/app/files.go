package app

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// DocumentExt is appended to save and open paths that have no extension.
const DocumentExt = ".mycad"

// OSFiles returns the host filesystem and a resolver that maps relative or absolute OS paths
// to names on it.
func OSFiles() (hackpadfs.FS, func(string) (string, error)) {
	fsys := osfs.NewFS()
	return fsys, func(p string) (string, error) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		return fsys.FromOSPath(abs)
	}
}

// CleanName turns a user path into a slash-separated name rooted at the filesystem root.
func CleanName(p string) (string, error) {
	name := path.Clean(strings.TrimLeft(filepath.ToSlash(p), "/"))
	if name == "." || name == ".." || strings.HasPrefix(name, "../") {
		return "", fs.ErrInvalid
	}
	return name, nil
}

func withExt(p string) string {
	if filepath.Ext(p) == "" {
		return p + DocumentExt
	}
	return p
}
