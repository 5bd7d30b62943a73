package trace

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const counterSelect = `
	SELECT c.ts AS ts, c.value AS value, ct.name AS name, ct.unit AS unit
	FROM counter AS c
	JOIN counter_track AS ct ON c.track_id = ct.id
`

// SQLiteSource queries the counter tables of a trace exported to SQLite
// (the trace processor's counter and counter_track schema).
type SQLiteSource struct {
	db  *sql.DB
	sel Selector
}

// OpenSQLite opens and pings the database at path.
func OpenSQLite(ctx context.Context, path string, sel Selector) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open sqlite database: %w", ErrSourceUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping sqlite database: %w", ErrSourceUnavailable, err)
	}
	return &SQLiteSource{db: db, sel: sel}, nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Rows implements Source. Selection is pushed down into SQL using the same
// exact-name and substring rules as Selector.Match.
func (s *SQLiteSource) Rows(ctx context.Context, kind Kind) ([]Row, error) {
	where, args := s.whereClause(kind)
	if where == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, counterSelect+"WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s query failed: %w", ErrSourceUnavailable, kind, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			ts    sql.NullInt64
			value sql.NullFloat64
			name  sql.NullString
			unit  sql.NullString
		)
		if err := rows.Scan(&ts, &value, &name, &unit); err != nil {
			return nil, fmt.Errorf("%w: %s scan failed: %w", ErrSourceUnavailable, kind, err)
		}
		out = append(out, Row{TS: ts.Int64, Value: value.Float64, Name: name.String, Unit: unit.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s rows failed: %w", ErrSourceUnavailable, kind, err)
	}
	return out, nil
}

func (s *SQLiteSource) whereClause(kind Kind) (string, []interface{}) {
	var (
		terms []string
		args  []interface{}
	)
	switch kind {
	case KindBattery:
		if len(s.sel.BatteryNames) == 0 {
			return "", nil
		}
		placeholders := make([]string, len(s.sel.BatteryNames))
		for i, n := range s.sel.BatteryNames {
			placeholders[i] = "?"
			args = append(args, n)
		}
		return "lower(ct.name) IN (" + strings.Join(placeholders, ", ") + ")", args
	case KindRail:
		terms, args = substringTerms(s.sel.RailPatterns)
	case KindFrequency:
		terms, args = substringTerms(s.sel.FrequencyPatterns)
	}
	if len(terms) == 0 {
		return "", nil
	}
	return strings.Join(terms, " OR "), args
}

// substringTerms uses instr rather than LIKE so that '_' and '%' in patterns are literal.
func substringTerms(patterns []string) ([]string, []interface{}) {
	terms := make([]string, 0, len(patterns))
	args := make([]interface{}, 0, len(patterns))
	for _, p := range patterns {
		terms = append(terms, "instr(lower(ct.name), ?) > 0")
		args = append(args, p)
	}
	return terms, args
}
