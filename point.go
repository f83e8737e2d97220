package tempora

import (
	"sort"
	"strings"
	"time"
)

// Point represents a single time-series sample: a measurement name, a map of
// field values (the data), optional tags (metadata used for filtering and
// series partitioning), and a timestamp.
type Point struct {
	// Measurement is the sample category (e.g., "cpu", "temperature").
	Measurement string
	// Fields holds the measured values keyed by field name. Values may be
	// numeric, string, or bool; only numeric values participate in ordering
	// predicates and aggregation.
	Fields map[string]any
	// Tags are optional key-value labels. Tags define series identity:
	// points with the same measurement and tag set belong to one series.
	Tags map[string]string
	// Timestamp is the observation time.
	Timestamp time.Time
}

// NewPoint creates a Point. Tags default to an empty map and the timestamp
// defaults to the current time when zero. An empty measurement is a caller
// error and returns ErrEmptyMeasurement.
func NewPoint(measurement string, fields map[string]any, tags map[string]string, ts time.Time) (Point, error) {
	if measurement == "" {
		return Point{}, ErrEmptyMeasurement
	}
	if tags == nil {
		tags = map[string]string{}
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	return Point{
		Measurement: measurement,
		Fields:      fields,
		Tags:        tags,
		Timestamp:   ts,
	}, nil
}

// SeriesKey returns the canonical series identity of the point.
// The format is the measurement alone when there are no tags, otherwise
// "measurement,k1=v1,k2=v2" with tags sorted by key. Two points with the
// same measurement and the same tag mapping always produce the same key,
// regardless of how the tag map was built.
func (p Point) SeriesKey() string {
	return seriesKey(p.Measurement, p.Tags)
}

func seriesKey(measurement string, tags map[string]string) string {
	if len(tags) == 0 {
		return measurement
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(measurement)
	for _, k := range keys {
		b.WriteByte(',')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(tags[k])
	}
	return b.String()
}

func cloneTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
