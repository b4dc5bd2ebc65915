// Package discovery lists candidate data files for a load run.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DataFileSuffix is the extension recognized as loadable input.
const DataFileSuffix = ".csv"

// ListDataFiles returns the paths of all regular files in dir whose name ends
// in DataFileSuffix, sorted by name for deterministic processing order.
//
// A listing failure (missing or unreadable directory) is returned as an error;
// callers are expected to degrade it to "no files found" rather than abort.
func ListDataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), DataFileSuffix) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
