package trace

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

const maxRecordBytes = 1 << 20

// JSONLSource serves rows from a newline-delimited JSON dump of counter rows,
// optionally zstd-compressed. The whole dump is read at open time.
type JSONLSource struct {
	rows []Row
	sel  Selector
}

// OpenJSONL reads every record of the dump at path. A malformed line makes the
// whole source unavailable.
func OpenJSONL(path string, sel Selector) (*JSONLSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer f.Close()

	var r io.Reader = f
	if fmtKind, _ := detectFormat(path); fmtKind == formatJSONLZstd {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create zstd decoder: %w", ErrSourceUnavailable, err)
		}
		defer dec.Close()
		r = dec
	}

	rows, err := ReadRecords(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}
	return &JSONLSource{rows: rows, sel: sel}, nil
}

// ReadRecords decodes one Record per non-empty line.
func ReadRecords(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	var rows []Row
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		rec, err := ParseRecordJSON(data)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, rec.Row())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Rows implements Source.
func (s *JSONLSource) Rows(_ context.Context, kind Kind) ([]Row, error) {
	var out []Row
	for _, r := range s.rows {
		if s.sel.Match(kind, r.Name) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *JSONLSource) Close() error {
	return nil
}
