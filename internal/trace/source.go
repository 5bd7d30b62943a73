package trace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is the trace query collaborator. Rows returns a fully materialized,
// unordered set of counter rows for one logical query.
type Source interface {
	Rows(ctx context.Context, kind Kind) ([]Row, error)
	Close() error
}

type format int

const (
	formatUnknown format = iota
	formatSQLite
	formatJSONL
	formatJSONLZstd
)

// supportedExtensions is ordered so that compound extensions are tried first.
var supportedExtensions = []struct {
	ext    string
	format format
}{
	{".jsonl.zst", formatJSONLZstd},
	{".jsonl", formatJSONL},
	{".sqlite3", formatSQLite},
	{".sqlite", formatSQLite},
	{".db", formatSQLite},
}

func detectFormat(path string) (format, string) {
	lower := strings.ToLower(path)
	for _, e := range supportedExtensions {
		if strings.HasSuffix(lower, e.ext) {
			return e.format, e.ext
		}
	}
	return formatUnknown, ""
}

// IsSupported reports whether the path carries a recognised trace extension.
func IsSupported(path string) bool {
	f, _ := detectFormat(path)
	return f != formatUnknown
}

// Open opens the trace identified by path. Any failure is reported as ErrSourceUnavailable.
func Open(ctx context.Context, path string, sel Selector) (Source, error) {
	f, _ := detectFormat(path)
	if f == formatUnknown {
		return nil, fmt.Errorf("%w: %w: %s", ErrSourceUnavailable, ErrUnsupportedFormat, filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, path)
	}

	if f == formatSQLite {
		src, err := OpenSQLite(ctx, path, sel)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	src, err := OpenJSONL(path, sel)
	if err != nil {
		return nil, err
	}
	return src, nil
}
