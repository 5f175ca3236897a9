// Package discover finds container files under a root directory.
package discover

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the container file extension, matched case-insensitively.
const Extension = ".lif"

// Containers recursively walks root and returns every container file
// found, each exactly once, in depth-first directory-listing order.
// Unreadable subdirectories are logged and skipped; an unreadable root
// is an error.
func Containers(root string) ([]string, error) {
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("input root unreadable: %w", err)
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Root errors were caught above; anything else is a
			// subdirectory we can live without.
			log.Printf("Warning: skipping unreadable path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), Extension) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return paths, nil
}
