package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

const modulePath = "github.com/elskow/transcendence"

// resolveDir returns configured when set, otherwise the migrations folder at
// the module root found by walking up from start.
func resolveDir(configured, start string) (string, error) {
	if configured != "" {
		info, err := os.Stat(configured)
		if err != nil {
			return "", fmt.Errorf("migrations dir %q: %w", configured, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("migrations dir %q is not a directory", configured)
		}
		return filepath.Abs(configured)
	}

	root, err := moduleRoot(start)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "migrations"), nil
}

func moduleRoot(dir string) (string, error) {
	for {
		content, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		switch {
		case err == nil:
			if modfile.ModulePath(content) == modulePath {
				return dir, nil
			}
		case !errors.Is(err, os.ErrNotExist):
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod for %s above the working directory", modulePath)
		}
		dir = parent
	}
}
