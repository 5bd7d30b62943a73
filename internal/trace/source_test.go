package trace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/powerlens/internal/config"
)

func testSelector() Selector {
	return NewSelector(config.SignalsConfig{
		BatteryNames:      []string{"batt.current_ua"},
		RailPatterns:      []string{"power"},
		FrequencyPatterns: []string{"freq"},
	})
}

func sampleRows() []Row {
	return []Row{
		{TS: 2_000_000_000, Value: 250, Name: "power.rails.gpu", Unit: "uJ"},
		{TS: 0, Value: 100, Name: "power.rails.gpu", Unit: "uJ"},
		{TS: 1_000_000_000, Value: 150, Name: "power.rails.gpu", Unit: "uJ"},
		{TS: 0, Value: -420000, Name: "batt.current_ua", Unit: "uA"},
		{TS: 500, Value: 1800000, Name: "cpu0.freq", Unit: "kHz"},
		{TS: 500, Value: 1, Name: "unrelated", Unit: ""},
	}
}

func namesOf(rows []Row) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}

func TestRoundTripFormats(t *testing.T) {
	ctx := context.Background()

	for _, ext := range []string{".db", ".sqlite", ".jsonl", ".jsonl.zst"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "trace"+ext)
			require.NoError(t, WriteFile(ctx, path, sampleRows()))

			src, err := Open(ctx, path, testSelector())
			require.NoError(t, err)
			defer src.Close()

			rails, err := src.Rows(ctx, KindRail)
			require.NoError(t, err)
			assert.ElementsMatch(t, []Row{
				{TS: 0, Value: 100, Name: "power.rails.gpu", Unit: "uJ"},
				{TS: 1_000_000_000, Value: 150, Name: "power.rails.gpu", Unit: "uJ"},
				{TS: 2_000_000_000, Value: 250, Name: "power.rails.gpu", Unit: "uJ"},
			}, rails)

			battery, err := src.Rows(ctx, KindBattery)
			require.NoError(t, err)
			assert.Equal(t, []string{"batt.current_ua"}, namesOf(battery))

			freq, err := src.Rows(ctx, KindFrequency)
			require.NoError(t, err)
			assert.Equal(t, []string{"cpu0.freq"}, namesOf(freq))
		})
	}
}

func TestWriteFileReplacesExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trace.db")
	require.NoError(t, WriteFile(ctx, path, sampleRows()))
	require.NoError(t, WriteFile(ctx, path, sampleRows()[:1]))

	src, err := Open(ctx, path, testSelector())
	require.NoError(t, err)
	defer src.Close()

	rails, err := src.Rows(ctx, KindRail)
	require.NoError(t, err)
	assert.Len(t, rails, 1)
}

func TestSQLiteNullColumnsDefault(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nulls.db")
	require.NoError(t, WriteFile(ctx, path, nil))

	src, err := OpenSQLite(ctx, path, testSelector())
	require.NoError(t, err)
	defer src.Close()

	_, err = src.db.ExecContext(ctx, `INSERT INTO counter_track (id, name, unit) VALUES (1, 'power.rails.npu', NULL)`)
	require.NoError(t, err)
	_, err = src.db.ExecContext(ctx, `INSERT INTO counter (ts, track_id, value) VALUES (NULL, 1, NULL)`)
	require.NoError(t, err)

	rows, err := src.Rows(ctx, KindRail)
	require.NoError(t, err)
	assert.Equal(t, []Row{{Name: "power.rails.npu"}}, rows)
}

func TestSQLitePatternsAreLiteral(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "literal.db")
	require.NoError(t, WriteFile(ctx, path, []Row{
		{TS: 1, Value: 1, Name: "odpm_rail", Unit: "uJ"},
		{TS: 1, Value: 1, Name: "odpmXrail", Unit: "uJ"},
	}))

	src, err := OpenSQLite(ctx, path, Selector{RailPatterns: []string{"odpm_"}})
	require.NoError(t, err)
	defer src.Close()

	rows, err := src.Rows(ctx, KindRail)
	require.NoError(t, err)
	assert.Equal(t, []string{"odpm_rail"}, namesOf(rows))

	battery, err := src.Rows(ctx, KindBattery)
	require.NoError(t, err)
	assert.Empty(t, battery)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Open(ctx, filepath.Join(dir, "trace.pftrace"), testSelector())

		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		src, err := Open(ctx, filepath.Join(dir, "missing.db"), testSelector())

		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Nil(t, src)
	})

	t.Run("directory", func(t *testing.T) {
		sub := filepath.Join(dir, "dir.db")
		require.NoError(t, os.Mkdir(sub, 0o755))

		_, err := Open(ctx, sub, testSelector())

		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("malformed jsonl line", func(t *testing.T) {
		path := filepath.Join(dir, "bad.jsonl")
		require.NoError(t, os.WriteFile(path, []byte("{\"ts\": 1}\n\nnot json\n"), 0o644))

		_, err := Open(ctx, path, testSelector())

		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.ErrorIs(t, err, ErrMalformedRecord)
		assert.Contains(t, err.Error(), "line 3")
	})
}

func TestReadRecordsSkipsBlankLines(t *testing.T) {
	input := "\n{\"ts\": 1, \"value\": 2, \"name\": \"a\"}\n   \n{\"ts\": 3}\n"

	rows, err := ReadRecords(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []Row{{TS: 1, Value: 2, Name: "a"}, {TS: 3}}, rows)
}
