package geo

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/samber/lo"
)

// RoutesProperty holds the list of routes serving a stop. Stops no trip
// visits get null.
const RoutesProperty = "route_id"

// BusStopOptions controls BuildBusStops.
type BusStopOptions struct {
	// Boroughs, when set, tags each stop with the BoroughProperty value of
	// the polygon containing it.
	Boroughs        *geojson.FeatureCollection
	BoroughProperty string
	Logger          *slog.Logger
}

// FindFeeds returns the GTFS feed directories matching pattern, sorted.
// A directory is a feed when it holds a stops.txt.
func FindFeeds(pattern string) ([]string, error) {
	stops, err := filepath.Glob(filepath.Join(pattern, "stops.txt"))
	if err != nil {
		return nil, fmt.Errorf("feed pattern: %w", err)
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("no GTFS feeds match %s", pattern)
	}
	feeds := lo.Map(stops, func(p string, _ int) string { return filepath.Dir(p) })
	sort.Strings(feeds)
	return feeds, nil
}

// BuildBusStops merges the stops of every feed into point features. Each
// stop keeps its non-empty GTFS columns except location_type and
// stop_desc, plus the sorted list of routes that serve it.
func BuildBusStops(feeds []string, opt BusStopOptions) (*geojson.FeatureCollection, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}

	stops, err := readFeeds(feeds, "stops.txt")
	if err != nil {
		return nil, err
	}
	routes, err := readFeeds(feeds, "routes.txt")
	if err != nil {
		return nil, err
	}
	trips, err := readFeeds(feeds, "trips.txt")
	if err != nil {
		return nil, err
	}
	stopTimes, err := readFeeds(feeds, "stop_times.txt")
	if err != nil {
		return nil, err
	}
	if err := errors.Join(
		stops.require("stops.txt", "stop_id", "stop_lat", "stop_lon"),
		routes.require("routes.txt", "route_id"),
		trips.require("trips.txt", "trip_id", "route_id"),
		stopTimes.require("stop_times.txt", "trip_id", "stop_id"),
	); err != nil {
		return nil, fmt.Errorf("gtfs: %w", err)
	}
	log.Info("read gtfs", "feeds", len(feeds), "stops", len(stops.rows),
		"routes", len(routes.rows), "trips", len(trips.rows), "stop_times", len(stopTimes.rows))

	stops.dropEmptyColumns()
	stops.dropColumns("location_type", "stop_desc")
	served := routesPerStop(routes, trips, stopTimes)

	values := make(map[string][]any, len(stops.cols))
	for _, c := range stops.cols {
		values[c] = stops.columnValues(c)
	}

	var tagger *boroughIndex
	if opt.Boroughs != nil {
		tagger = newBoroughIndex(opt.Boroughs, opt.BoroughProperty)
	}

	fc := geojson.NewFeatureCollection()
	for i, row := range stops.rows {
		lat, err := strconv.ParseFloat(row["stop_lat"], 64)
		if err != nil {
			return nil, fmt.Errorf("stop %s: stop_lat: %w", row["stop_id"], err)
		}
		lon, err := strconv.ParseFloat(row["stop_lon"], 64)
		if err != nil {
			return nil, fmt.Errorf("stop %s: stop_lon: %w", row["stop_id"], err)
		}
		pt := orb.Point{lon, lat}

		f := geojson.NewFeature(pt)
		for _, c := range stops.cols {
			f.Properties[c] = values[c][i]
		}
		if r, ok := served[row["stop_id"]]; ok {
			f.Properties[RoutesProperty] = r
		} else {
			f.Properties[RoutesProperty] = nil
		}
		if tagger != nil {
			f.Properties["borough"] = tagger.lookup(pt)
		}
		fc.Append(f)
	}
	log.Info("built bus stops", "features", len(fc.Features), "served", len(served))
	return fc, nil
}

// boroughIndex finds the polygon feature containing a point.
type boroughIndex struct {
	tree *rtreego.Rtree
	prop string
}

type boroughEntry struct {
	rect rtreego.Rect
	geom orb.Geometry
	name any
}

func (e *boroughEntry) Bounds() rtreego.Rect { return e.rect }

func newBoroughIndex(fc *geojson.FeatureCollection, prop string) *boroughIndex {
	idx := &boroughIndex{tree: rtreego.NewTree(2, 4, 16), prop: prop}
	for _, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		b := f.Geometry.Bound()
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{b.Min[0], b.Min[1]},
			rtreego.Point{b.Max[0], b.Max[1]},
		)
		if err != nil {
			continue
		}
		idx.tree.Insert(&boroughEntry{rect: rect, geom: f.Geometry, name: f.Properties[prop]})
	}
	return idx
}

// lookup returns the property of the first polygon containing pt, or nil.
func (idx *boroughIndex) lookup(pt orb.Point) any {
	for _, s := range idx.tree.SearchIntersect(rtreego.Point{pt[0], pt[1]}.ToRect(1e-9)) {
		e := s.(*boroughEntry)
		switch g := e.geom.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, pt) {
				return e.name
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, pt) {
				return e.name
			}
		}
	}
	return nil
}

// BuildBusStopsFile builds the stop layer from the feeds matching pattern
// and writes it to outPath. boroughPath may be empty.
func BuildBusStopsFile(pattern, outPath, boroughPath, boroughProp string, log *slog.Logger) (int, error) {
	feeds, err := FindFeeds(pattern)
	if err != nil {
		return 0, err
	}
	opt := BusStopOptions{BoroughProperty: boroughProp, Logger: log}
	if boroughPath != "" {
		if opt.Boroughs, err = ReadFeatureCollection(boroughPath); err != nil {
			return 0, err
		}
	}
	fc, err := BuildBusStops(feeds, opt)
	if err != nil {
		return 0, err
	}
	if err := WriteFeatureCollection(outPath, fc); err != nil {
		return 0, err
	}
	return len(fc.Features), nil
}
