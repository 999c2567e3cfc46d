package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ScriptExt is the file extension of model scene scripts.
const ScriptExt = ".stage"

// Discover returns the model scripts directly inside dir, sorted by name.
// A missing directory and a directory without scripts are both errors.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	scripts := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ScriptExt) {
			return "", false
		}
		return filepath.Join(dir, e.Name()), true
	})
	if len(scripts) == 0 {
		return nil, fmt.Errorf("no %s files in %s: %w", ScriptExt, dir, ErrNoModels)
	}
	sort.Strings(scripts)
	return scripts, nil
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
