package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sanspareilsmyn/powerlens/internal/compare"
)

// WriteMatrix encodes the comparison matrix as YAML or JSON depending on the
// extension of path.
func WriteMatrix(path string, m *compare.Matrix) error {
	export := m.Export()
	return WriteFile(path, func(w io.Writer) error {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(export); err != nil {
				return fmt.Errorf("%w: %w", ErrWriteFailed, err)
			}
		default:
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(export); err != nil {
				return fmt.Errorf("%w: %w", ErrWriteFailed, err)
			}
			if err := enc.Close(); err != nil {
				return fmt.Errorf("%w: %w", ErrWriteFailed, err)
			}
		}
		return nil
	})
}
