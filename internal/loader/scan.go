package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Load reads and parses one query file.
func Load(path string) (*Query, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	q, err := Parse(string(content))
	if err != nil {
		var pe *FrontmatterParseError
		var ue *UnknownFieldError
		switch {
		case errors.As(err, &pe):
			pe.File = path
		case errors.As(err, &ue):
			ue.File = path
		}
		return nil, err
	}
	q.Path = path
	return q, nil
}

// ScanDir loads every query file under dir, sorted by path. Hidden files
// and directories are skipped.
func ScanDir(dir string) ([]*Query, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(name, Extension) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}
	sort.Strings(paths)

	queries := make([]*Query, 0, len(paths))
	for _, path := range paths {
		q, err := Load(path)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}
