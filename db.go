package tempora

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DB is an in-memory time-series database. Points are partitioned into
// series by measurement and tag set; each series keeps its points sorted by
// timestamp. A secondary index from measurement name to series keys narrows
// queries and drives measurement-level deletion. The DB is safe for
// concurrent use.
type DB struct {
	config Config
	logger *slog.Logger

	mu sync.RWMutex
	// series is the source of truth: series key -> series.
	series map[string]*Series
	// measurements maps a measurement name to the keys of its series.
	// Always derivable from the series map; empty buckets are removed.
	measurements map[string]map[string]struct{}
}

// Stats summarizes database contents.
type Stats struct {
	TotalPoints      int
	SeriesCount      int
	MeasurementCount int
	// Measurements lists distinct measurement names, sorted.
	Measurements []string
}

// New creates an empty database. A zero Config is usable; missing values
// are filled with defaults.
func New(cfg Config) *DB {
	cfg.normalize()
	return &DB{
		config:       cfg,
		logger:       cfg.Logging.logger(),
		series:       make(map[string]*Series),
		measurements: make(map[string]map[string]struct{}),
	}
}

// Write constructs a point and stores it, creating the series on first
// sight of its key. Tags may be nil and a zero timestamp defaults to now.
// Repeated identical writes accumulate points; nothing is deduplicated.
func (db *DB) Write(measurement string, fields map[string]any, tags map[string]string, ts time.Time) error {
	p, err := NewPoint(measurement, fields, tags, ts)
	if err != nil {
		return err
	}
	db.seriesFor(p).insert(p)
	return nil
}

// WritePoint stores an externally constructed point. The point's own tags
// govern routing.
func (db *DB) WritePoint(p Point) error {
	if p.Measurement == "" {
		return ErrEmptyMeasurement
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	db.seriesFor(p).insert(p)
	return nil
}

// WriteBatch stores a sequence of points, routing each by its own series
// key. On an invalid point the batch stops; points before it remain
// written.
func (db *DB) WriteBatch(points []Point) error {
	for i, p := range points {
		if err := db.WritePoint(p); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}
	return nil
}

// seriesFor returns the series for p's key, creating and indexing it on
// first sight.
func (db *DB) seriesFor(p Point) *Series {
	key := p.SeriesKey()

	db.mu.RLock()
	s := db.series[key]
	db.mu.RUnlock()
	if s != nil {
		return s
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if s = db.series[key]; s != nil {
		return s
	}

	s = newSeries(p.Measurement, cloneTags(p.Tags), db.config.SeriesCapacityHint)
	db.series[key] = s
	bucket := db.measurements[p.Measurement]
	if bucket == nil {
		bucket = make(map[string]struct{})
		db.measurements[p.Measurement] = bucket
	}
	bucket[key] = struct{}{}

	db.logger.Debug("series created", "key", key)
	return s
}

// Query is a convenience wrapper that builds and executes a query in one
// call. Empty or zero arguments leave the corresponding filter unset.
func (db *DB) Query(measurement string, tags map[string]string, start, end time.Time, limit int) ([]Point, error) {
	q := db.NewQuery()
	if measurement != "" {
		q.From(measurement)
	}
	if len(tags) > 0 {
		q.WhereTags(tags)
	}
	if !start.IsZero() || !end.IsZero() {
		q.Between(start, end)
	}
	if limit > 0 {
		q.Limit(limit)
	}
	return q.Execute()
}

// LookupSeries returns the series for a measurement and exact tag set, or
// false when no such series exists.
func (db *DB) LookupSeries(measurement string, tags map[string]string) (*Series, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s, ok := db.series[seriesKey(measurement, tags)]
	return s, ok
}

// DeleteMeasurement removes every series registered under the measurement
// and drops its index bucket. It returns the number of series removed;
// an unknown measurement is a no-op returning 0.
func (db *DB) DeleteMeasurement(measurement string) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	bucket, ok := db.measurements[measurement]
	if !ok {
		return 0
	}
	for key := range bucket {
		delete(db.series, key)
	}
	delete(db.measurements, measurement)

	db.logger.Debug("measurement deleted", "measurement", measurement, "series", len(bucket))
	return len(bucket)
}

// DeleteSeries removes the single series identified by the measurement and
// exact tag set, pruning the measurement bucket when it empties. It reports
// whether a series was removed.
func (db *DB) DeleteSeries(measurement string, tags map[string]string) bool {
	key := seriesKey(measurement, tags)

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.series[key]; !ok {
		return false
	}
	delete(db.series, key)
	if bucket, ok := db.measurements[measurement]; ok {
		delete(bucket, key)
		if len(bucket) == 0 {
			delete(db.measurements, measurement)
		}
	}

	db.logger.Debug("series deleted", "key", key)
	return true
}

// Clear drops all series and index state.
func (db *DB) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.series = make(map[string]*Series)
	db.measurements = make(map[string]map[string]struct{})
}

// Measurements returns the distinct measurement names, sorted.
func (db *DB) Measurements() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.measurementsLocked()
}

func (db *DB) measurementsLocked() []string {
	names := make([]string, 0, len(db.measurements))
	for name := range db.measurements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SeriesCount returns the number of series.
func (db *DB) SeriesCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.series)
}

// SeriesKeys returns every registered series key, sorted.
func (db *DB) SeriesKeys() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	keys := make([]string, 0, len(db.series))
	for key := range db.series {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// PointCount returns the total number of points across all series.
func (db *DB) PointCount() int {
	db.mu.RLock()
	series := make([]*Series, 0, len(db.series))
	for _, s := range db.series {
		series = append(series, s)
	}
	db.mu.RUnlock()

	total := 0
	for _, s := range series {
		total += s.Count()
	}
	return total
}

// Stats returns point, series, and measurement counts plus the sorted list
// of measurement names.
func (db *DB) Stats() Stats {
	db.mu.RLock()
	series := make([]*Series, 0, len(db.series))
	for _, s := range db.series {
		series = append(series, s)
	}
	st := Stats{
		SeriesCount:      len(db.series),
		MeasurementCount: len(db.measurements),
		Measurements:     db.measurementsLocked(),
	}
	db.mu.RUnlock()

	for _, s := range series {
		st.TotalPoints += s.Count()
	}
	return st
}

// candidates returns the series to scan for a query, sorted by series key so
// result concatenation and limit truncation are deterministic. When a
// measurement filter is set, the secondary index narrows the scan to that
// measurement's series.
func (db *DB) candidates(measurement string) []*Series {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var keys []string
	if measurement != "" {
		bucket := db.measurements[measurement]
		keys = make([]string, 0, len(bucket))
		for key := range bucket {
			keys = append(keys, key)
		}
	} else {
		keys = make([]string, 0, len(db.series))
		for key := range db.series {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]*Series, 0, len(keys))
	for _, key := range keys {
		out = append(out, db.series[key])
	}
	return out
}
