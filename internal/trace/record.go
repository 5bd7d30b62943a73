package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record is a counter row decoded from a JSON object with arbitrary keys.
// Missing or null fields are tolerated and resolve to zero values.
type Record map[string]interface{}

// ParseRecordJSON decodes one JSON object. Numbers are kept as json.Number so
// nanosecond timestamps above 2^53 survive without rounding.
func ParseRecordJSON(data []byte) (Record, error) {
	var rec Record

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedRecord)
	}
	return rec, nil
}

// GetFloat64 retrieves a float64 value for a given key.
// Returns false for missing keys, nulls, and non-numeric values.
func (r Record) GetFloat64(key string) (float64, bool) {
	val, exists := r[key]
	if !exists || val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// GetInt64 retrieves an integer value for a given key. Integral floats are accepted.
func (r Record) GetInt64(key string) (int64, bool) {
	val, exists := r[key]
	if !exists || val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// GetString retrieves a string value for a given key.
func (r Record) GetString(key string) (string, bool) {
	val, exists := r[key]
	if !exists || val == nil {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// Row converts the record into a counter row, substituting zero or empty defaults
// for absent fields so that no row is ever dropped.
func (r Record) Row() Row {
	ts, _ := r.GetInt64("ts")
	value, _ := r.GetFloat64("value")
	name, _ := r.GetString("name")
	unit, _ := r.GetString("unit")
	return Row{TS: ts, Value: value, Name: name, Unit: unit}
}
