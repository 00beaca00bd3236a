// Package normalize holds pure helpers for coercing document-extraction
// output into canonical shapes: scalar unwrapping, multi-format date
// parsing, and date-safe JSON serialization.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ISODate is the canonical calendar-date layout.
const ISODate = "2006-01-02"

// dateLayouts is the parse priority order. Ambiguous inputs like
// "03/04/05" resolve day-first, then month-first, then ISO; this order is
// load-bearing and must not be rearranged.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/06",
	"01/02/2006",
	"01/02/06",
	"2006-01-02",
}

// Scalar unwraps a document-extraction field value. Handles a bare scalar,
// a mapping with a "value" key, and a sequence of such mappings; returns
// nil for absent/empty input and the raw input for unknown shapes. Never
// fails on malformed input.
func Scalar(field any) any {
	switch v := field.(type) {
	case nil:
		return nil
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if val, ok := m["value"]; ok {
					return val
				}
			}
		}
		if len(v) == 0 {
			return nil
		}
		return v[0]
	case map[string]any:
		return v["value"]
	default:
		return v
	}
}

// ScalarString is Scalar coerced to a string; non-string scalars are
// formatted, nil becomes "".
func ScalarString(field any) string {
	v := Scalar(field)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ParseDate tries each layout in priority order and returns the first
// successful parse. Two-digit years are windowed so that anything parsed
// before 1930 lands in the following century. Returns false (with a
// diagnostic log) when no layout matches.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "06") && !strings.Contains(layout, "2006") && t.Year() < 1930 {
			t = t.AddDate(100, 0, 0)
		}
		return t, true
	}
	zap.L().Debug("normalize: could not parse date", zap.String("value", value))
	return time.Time{}, false
}

// ParseDateISO is ParseDate rendered to the canonical ISO string, or ""
// when the input does not parse.
func ParseDateISO(value string) string {
	t, ok := ParseDate(value)
	if !ok {
		return ""
	}
	return t.Format(ISODate)
}

// Dates rewrites every time.Time value in a record to its ISO calendar-date
// string. The input map is returned for chaining.
func Dates(record map[string]any) map[string]any {
	for key, value := range record {
		if t, ok := value.(time.Time); ok {
			record[key] = t.Format(ISODate)
		}
	}
	return record
}

// MarshalWithDates serializes arbitrary nested data to JSON, rendering
// time.Time leaves as ISO calendar dates and falling back to a string
// representation for anything else json can't handle. It never fails.
func MarshalWithDates(data any) string {
	b, err := json.Marshal(sanitize(data))
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(data))
	}
	return string(b)
}

func sanitize(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(ISODate)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitize(val)
		}
		return out
	case nil, bool, string, float64, float32, int, int32, int64:
		return t
	default:
		if _, err := json.Marshal(t); err != nil {
			return fmt.Sprint(t)
		}
		return t
	}
}
