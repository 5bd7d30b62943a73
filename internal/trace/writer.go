package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/zstd"
)

const createCounterSchema = `
	CREATE TABLE counter_track (
		id   INTEGER PRIMARY KEY,
		name TEXT,
		unit TEXT
	);
	CREATE TABLE counter (
		id       INTEGER PRIMARY KEY,
		ts       INTEGER,
		track_id INTEGER NOT NULL REFERENCES counter_track(id),
		value    REAL
	);
`

// WriteFile replaces the file at path with rows encoded in the format implied by its extension.
func WriteFile(ctx context.Context, path string, rows []Row) error {
	f, _ := detectFormat(path)
	if f == formatUnknown {
		return fmt.Errorf("%w: %w: %s", ErrWriteFailed, ErrUnsupportedFormat, path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	switch f {
	case formatSQLite:
		return WriteSQLite(ctx, path, rows)
	default:
		return writeJSONLFile(path, rows, f == formatJSONLZstd)
	}
}

// WriteSQLite creates the counter schema in a new database and inserts rows,
// one counter_track per distinct name.
func WriteSQLite(ctx context.Context, path string, rows []Row) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createCounterSchema); err != nil {
		return fmt.Errorf("%w: failed to create schema: %w", ErrWriteFailed, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer tx.Rollback()

	trackIDs := make(map[string]int64)
	for _, r := range rows {
		id, ok := trackIDs[r.Name]
		if !ok {
			res, err := tx.ExecContext(ctx, `INSERT INTO counter_track (name, unit) VALUES (?, ?)`, r.Name, r.Unit)
			if err != nil {
				return fmt.Errorf("%w: failed to insert track %q: %w", ErrWriteFailed, r.Name, err)
			}
			if id, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("%w: %w", ErrWriteFailed, err)
			}
			trackIDs[r.Name] = id
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO counter (ts, track_id, value) VALUES (?, ?, ?)`, r.TS, id, r.Value); err != nil {
			return fmt.Errorf("%w: failed to insert counter: %w", ErrWriteFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// WriteJSONL encodes one row per line.
func WriteJSONL(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
	}
	return nil
}

func writeJSONLFile(path string, rows []Row, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWriteFailed, cerr)
		}
	}()

	if !compress {
		return WriteJSONL(f, rows)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("%w: failed to create zstd encoder: %w", ErrWriteFailed, err)
	}
	if err := WriteJSONL(enc, rows); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
