package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordJSON(t *testing.T) {
	t.Run("full record keeps nanosecond precision", func(t *testing.T) {
		rec, err := ParseRecordJSON([]byte(`{"ts": 9007199254740993, "value": 12.5, "name": "power.rails.gpu", "unit": "uJ"}`))

		require.NoError(t, err)
		assert.Equal(t, Row{TS: 9007199254740993, Value: 12.5, Name: "power.rails.gpu", Unit: "uJ"}, rec.Row())
	})

	t.Run("missing and null fields default", func(t *testing.T) {
		rec, err := ParseRecordJSON([]byte(`{"ts": 1000, "value": null}`))

		require.NoError(t, err)
		assert.Equal(t, Row{TS: 1000}, rec.Row())
	})

	t.Run("numeric strings are accepted as values", func(t *testing.T) {
		rec, err := ParseRecordJSON([]byte(`{"value": "3.25"}`))

		require.NoError(t, err)
		v, ok := rec.GetFloat64("value")
		assert.True(t, ok)
		assert.Equal(t, 3.25, v)
	})

	t.Run("integral float timestamps", func(t *testing.T) {
		rec, err := ParseRecordJSON([]byte(`{"ts": 2e9, "frac": 1.5}`))

		require.NoError(t, err)
		ts, ok := rec.GetInt64("ts")
		assert.True(t, ok)
		assert.Equal(t, int64(2_000_000_000), ts)

		_, ok = rec.GetInt64("frac")
		assert.False(t, ok)
	})

	t.Run("wrong types are ignored", func(t *testing.T) {
		rec, err := ParseRecordJSON([]byte(`{"name": 7, "value": true}`))

		require.NoError(t, err)
		_, ok := rec.GetString("name")
		assert.False(t, ok)
		_, ok = rec.GetFloat64("value")
		assert.False(t, ok)
	})

	for name, input := range map[string]string{
		"invalid json": `{"ts": `,
		"array":        `[1, 2]`,
		"null":         `null`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRecordJSON([]byte(input))

			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}
