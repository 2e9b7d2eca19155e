// Package tempfile manages scratch files handed to and from external processes.
package tempfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// File is a uniquely named scratch file owned by the scope that created it.
// Callers defer Close immediately after New succeeds.
type File struct {
	path string
}

// New creates an empty file named <base>-<random>.<ext> in dir.
// If dir is empty, os.TempDir is used. The extension is used as given;
// a leading dot is not expected.
func New(dir, base, ext string) (*File, error) {
	pattern := base + "-*"
	if ext != "" {
		pattern += "." + ext
	}
	// CreateTemp rejects separators in the pattern.
	pattern = strings.ReplaceAll(pattern, string(os.PathSeparator), "_")

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating temporary file for %q: %w", base, err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("closing temporary file %s: %w", path, err)
	}
	return &File{path: path}, nil
}

// Path returns the file's path.
func (f *File) Path() string {
	return f.path
}

// Close removes the file. It is safe to call more than once, and a file
// already removed by someone else is not an error.
func (f *File) Close() error {
	if f == nil || f.path == "" {
		return nil
	}
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing temporary file %s: %w", f.path, err)
	}
	f.path = ""
	return nil
}

// BaseName strips the directory and the last extension from path.
// "/data/kodim01.png" becomes "kodim01"; "archive.tar.gz" becomes "archive.tar".
func BaseName(path string) string {
	name := path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name
}
