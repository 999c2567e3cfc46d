package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// table is a CSV file held as columns by name.
type table struct {
	cols []string
	rows []map[string]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: header: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &table{cols: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, c := range header {
			if i < len(rec) {
				row[c] = rec[i]
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// concat stacks tables, taking the union of their columns in first-seen
// order. Cells a table lacks are empty.
func concat(ts []*table) *table {
	out := &table{}
	for _, t := range ts {
		out.cols = lo.Union(out.cols, t.cols)
		out.rows = append(out.rows, t.rows...)
	}
	return out
}

// readFeeds reads name from every feed directory and concatenates them.
func readFeeds(feeds []string, name string) (*table, error) {
	ts := make([]*table, 0, len(feeds))
	for _, dir := range feeds {
		t, err := readTable(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("gtfs feed: %w", err)
		}
		ts = append(ts, t)
	}
	return concat(ts), nil
}

// require reports the first column missing from t.
func (t *table) require(name string, cols ...string) error {
	for _, c := range cols {
		if !lo.Contains(t.cols, c) {
			return fmt.Errorf("%s: missing column %q", name, c)
		}
	}
	return nil
}

// dropEmptyColumns removes columns with no value in any row.
func (t *table) dropEmptyColumns() {
	t.cols = lo.Filter(t.cols, func(c string, _ int) bool {
		return lo.SomeBy(t.rows, func(r map[string]string) bool { return r[c] != "" })
	})
}

func (t *table) dropColumns(names ...string) {
	t.cols = lo.Without(t.cols, names...)
}

// columnValues converts the cells of column c to JSON values. A column
// whose every non-empty cell is an integer becomes int64, failing that a
// float64, otherwise the strings are kept. Empty cells become nil.
func (t *table) columnValues(c string) []any {
	cells := lo.Map(t.rows, func(r map[string]string, _ int) string { return strings.TrimSpace(r[c]) })
	filled := lo.Compact(cells)

	allInt := len(filled) > 0 && lo.EveryBy(filled, func(s string) bool {
		_, err := strconv.ParseInt(s, 10, 64)
		return err == nil
	})
	allFloat := len(filled) > 0 && lo.EveryBy(filled, func(s string) bool {
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	})

	out := make([]any, len(cells))
	for i, s := range cells {
		switch {
		case s == "":
			out[i] = nil
		case allInt:
			out[i], _ = strconv.ParseInt(s, 10, 64)
		case allFloat:
			out[i], _ = strconv.ParseFloat(s, 64)
		default:
			out[i] = t.rows[i][c]
		}
	}
	return out
}

// routesPerStop joins stop_times to trips on trip_id and the result to
// routes on route_id, returning the distinct routes serving each stop,
// sorted.
func routesPerStop(routes, trips, stopTimes *table) map[string][]string {
	known := lo.SliceToMap(routes.rows, func(r map[string]string) (string, bool) {
		return r["route_id"], true
	})
	tripRoute := make(map[string]string, len(trips.rows))
	for _, r := range trips.rows {
		if known[r["route_id"]] {
			tripRoute[r["trip_id"]] = r["route_id"]
		}
	}

	sets := make(map[string]map[string]bool)
	for _, st := range stopTimes.rows {
		route, ok := tripRoute[st["trip_id"]]
		if !ok {
			continue
		}
		stop := st["stop_id"]
		if sets[stop] == nil {
			sets[stop] = make(map[string]bool)
		}
		sets[stop][route] = true
	}

	out := make(map[string][]string, len(sets))
	for stop, set := range sets {
		ids := lo.Keys(set)
		sort.Strings(ids)
		out[stop] = ids
	}
	return out
}
