package collector

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"QuantAI/internal/model"
)

// normalize converts provider rows into an ascending Series with unique
// timestamps. Rows with a missing price (market holidays) or an impossible
// bar are skipped and counted. A row whose time cannot be read makes the
// whole payload malformed.
func normalize(rows []RawRow, cols ColumnMap) (model.Series, int, error) {
	series := make(model.Series, 0, len(rows))
	dropped := 0

	for i, row := range rows {
		ts, err := parseTime(row[cols.Time], cols)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: column %q: %w", i, cols.Time, err)
		}

		bar := model.Bar{Time: ts}
		ok := true
		for _, f := range []struct {
			col string
			dst *float64
		}{
			{cols.Open, &bar.Open},
			{cols.High, &bar.High},
			{cols.Low, &bar.Low},
			{cols.Close, &bar.Close},
		} {
			v, present, err := parseNumber(row[f.col])
			if err != nil {
				return nil, 0, fmt.Errorf("row %d: column %q: %w", i, f.col, err)
			}
			if !present {
				ok = false
				break
			}
			*f.dst = v
		}
		if !ok {
			dropped++
			continue
		}

		vol, _, err := parseNumber(row[cols.Volume])
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: column %q: %w", i, cols.Volume, err)
		}
		bar.Volume = vol

		if !bar.Valid() {
			dropped++
			continue
		}
		series = append(series, bar)
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })

	// Keep the last row for a repeated timestamp.
	out := series[:0]
	for _, bar := range series {
		if n := len(out); n > 0 && out[n-1].Time.Equal(bar.Time) {
			out[n-1] = bar
			dropped++
			continue
		}
		out = append(out, bar)
	}
	return out, dropped, nil
}

func parseTime(v any, cols ColumnMap) (time.Time, error) {
	loc := cols.Location
	if loc == nil {
		loc = time.UTC
	}
	if cols.TimeLayout == "" {
		secs, present, err := parseNumber(v)
		if err != nil {
			return time.Time{}, err
		}
		if !present {
			return time.Time{}, fmt.Errorf("missing timestamp")
		}
		return time.Unix(int64(secs), 0).In(loc), nil
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("unexpected time value %v", v)
	}
	t, err := time.ParseInLocation(cols.TimeLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// parseNumber reads a numeric cell. nil, "" and "-" are reported as absent.
func parseNumber(v any) (float64, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		if math.IsNaN(n) {
			return 0, false, nil
		}
		return n, true, nil
	case int64:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case json.Number:
		f, err := n.Float64()
		return f, err == nil, err
	case string:
		s := strings.TrimSpace(n)
		if s == "" || s == "-" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, err
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("unexpected value %v (%T)", v, v)
	}
}
