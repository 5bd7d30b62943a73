package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPaths replaces each directory argument with the supported trace files it
// directly contains (one level, no recursion). Other arguments are kept as given.
// Duplicates are removed by exact path match, keeping the first occurrence.
func ExpandPaths(paths []string) ([]string, error) {
	var expanded []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			expanded = append(expanded, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read trace directory %s: %w", p, err)
		}
		for _, e := range entries {
			fp := filepath.Join(p, e.Name())
			if e.Type().IsRegular() && IsSupported(fp) {
				expanded = append(expanded, fp)
			}
		}
	}

	seen := make(map[string]struct{}, len(expanded))
	unique := make([]string, 0, len(expanded))
	for _, f := range expanded {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		unique = append(unique, f)
	}
	return unique, nil
}

// Label derives a display label from a trace path: its base name without the trace extension.
func Label(path string) string {
	base := filepath.Base(path)
	if _, ext := detectFormat(base); ext != "" {
		return base[:len(base)-len(ext)]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Labels derives one label per path. Distinct paths that share a label are
// suffixed -2, -3, ... in order of appearance so that no trace column is overwritten.
func Labels(paths []string) []string {
	labels := make([]string, len(paths))
	taken := make(map[string]bool, len(paths))
	for i, p := range paths {
		base := Label(p)
		label := base
		for n := 2; taken[label]; n++ {
			label = fmt.Sprintf("%s-%d", base, n)
		}
		taken[label] = true
		labels[i] = label
	}
	return labels
}
