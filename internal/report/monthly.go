// Package report builds the monthly trend series and state summaries the
// dashboards chart.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// MonthKey is the column holding the bucket key.
	MonthKey = "month"
	// CountKey is the single counter of a non-split series.
	CountKey = "count"
	// UnknownCategory collects records with an empty category.
	UnknownCategory = "unknown"
)

// Predicate keeps a record when it returns true.
type Predicate[T any] func(T) bool

// Options configures AggregateMonthly.
type Options[T any] struct {
	// Date returns the record's date string. Required.
	Date func(T) string
	// Category returns the split value, e.g. status. Used when Split is set.
	Category func(T) string
	Split    bool
	Filters  []Predicate[T]
	// Location is the zone calendar months are taken in. Defaults to
	// time.Local.
	Location *time.Location
}

// Row is one month of a series. Counts holds one entry per column after
// the month, in the order returned by Columns.
type Row struct {
	Month  string
	Counts map[string]int
	keys   []string
}

// Columns returns the column names in order, starting with "month".
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r.keys)+1)
	cols = append(cols, MonthKey)
	return append(cols, r.keys...)
}

// Value returns the text form of column key.
func (r Row) Value(key string) string {
	if key == MonthKey {
		return r.Month
	}
	return strconv.Itoa(r.Counts[key])
}

// MarshalJSON writes the row as a flat object with the month first and the
// counts in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"month":`)
	m, _ := json.Marshal(r.Month)
	buf.Write(m)
	for _, k := range r.keys {
		buf.WriteByte(',')
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(r.Counts[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a row written by MarshalJSON, keeping the column
// order of the input.
func (r *Row) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("report row: expected object, got %v", tok)
	}
	out := Row{Counts: map[string]int{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		if key == MonthKey {
			if err := dec.Decode(&out.Month); err != nil {
				return fmt.Errorf("report row month: %w", err)
			}
			continue
		}
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("report row %s: %w", key, err)
		}
		if _, dup := out.Counts[key]; !dup {
			out.keys = append(out.keys, key)
		}
		out.Counts[key] = n
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the date formats stored on tournaments and shipments.
// Values without an offset are read in loc; values with one are converted
// to loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// monthIndex numbers months contiguously so that index+1 is the next month.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func monthLabel(idx int) string {
	return fmt.Sprintf("%04d-%02d", idx/12, idx%12+1)
}

// AggregateMonthly buckets records by calendar month and returns one row
// per month from the earliest to the latest bucket, ascending, with empty
// months zero-filled. Records with an unparsable date or failing a filter
// are dropped. No surviving records yields no rows.
//
// In split mode each row carries a count for every category seen, sorted
// by name; otherwise each row has a single "count".
func AggregateMonthly[T any](records []T, opts Options[T]) []Row {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	buckets := make(map[int]map[string]int)
	categories := make(map[string]struct{})
	minIdx, maxIdx := 0, 0

next:
	for _, rec := range records {
		t, ok := ParseDate(opts.Date(rec), loc)
		if !ok {
			continue
		}
		for _, keep := range opts.Filters {
			if !keep(rec) {
				continue next
			}
		}

		key := CountKey
		if opts.Split {
			key = UnknownCategory
			if opts.Category != nil {
				if c := strings.TrimSpace(opts.Category(rec)); c != "" {
					key = c
				}
			}
		}
		categories[key] = struct{}{}

		idx := monthIndex(t)
		if len(buckets) == 0 || idx < minIdx {
			minIdx = idx
		}
		if len(buckets) == 0 || idx > maxIdx {
			maxIdx = idx
		}
		b := buckets[idx]
		if b == nil {
			b = make(map[string]int)
			buckets[idx] = b
		}
		b[key]++
	}

	if len(buckets) == 0 {
		return []Row{}
	}

	keys := []string{CountKey}
	if opts.Split {
		keys = make([]string, 0, len(categories))
		for c := range categories {
			keys = append(keys, c)
		}
		sort.Strings(keys)
	}

	rows := make([]Row, 0, maxIdx-minIdx+1)
	for idx := minIdx; idx <= maxIdx; idx++ {
		counts := make(map[string]int, len(keys))
		for _, k := range keys {
			counts[k] = buckets[idx][k]
		}
		rows = append(rows, Row{Month: monthLabel(idx), Counts: counts, keys: keys})
	}
	return rows
}
