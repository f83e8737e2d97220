package tempora

import "time"

// AggregateResult summarizes one reduced field over a collection of points.
// It is not a point: it carries the measurement and tags of the first input
// point, the time span from the first to the last input point, the reduced
// value, and how many values contributed.
type AggregateResult struct {
	Measurement string
	Tags        map[string]string
	Start       time.Time
	End         time.Time
	// Value is the reduced result. For Min and Max it is meaningful only
	// when Count > 0; callers must check Count before trusting it so that
	// "no data" is never read as a literal zero.
	Value float64
	// Count is the number of points whose field value contributed.
	Count int
}

// The reducers below take an already-selected point collection, typically a
// query result; they do not filter by tag or time themselves. Only numeric
// field values contribute. Missing fields and non-numeric values are
// skipped, not errors.

// Sum reduces a field to its arithmetic total. Zero with Count 0 when
// nothing contributes.
func Sum(points []Point, field string) AggregateResult {
	res := summarize(points)
	for _, p := range points {
		if v, ok := numericValue(p.Fields[field]); ok {
			res.Value += v
			res.Count++
		}
	}
	return res
}

// Average reduces a field to its arithmetic mean. Zero with Count 0 when
// nothing contributes.
func Average(points []Point, field string) AggregateResult {
	res := Sum(points, field)
	if res.Count > 0 {
		res.Value /= float64(res.Count)
	}
	return res
}

// Min reduces a field to its smallest contributing value.
func Min(points []Point, field string) AggregateResult {
	res := summarize(points)
	for _, p := range points {
		if v, ok := numericValue(p.Fields[field]); ok {
			if res.Count == 0 || v < res.Value {
				res.Value = v
			}
			res.Count++
		}
	}
	return res
}

// Max reduces a field to its largest contributing value.
func Max(points []Point, field string) AggregateResult {
	res := summarize(points)
	for _, p := range points {
		if v, ok := numericValue(p.Fields[field]); ok {
			if res.Count == 0 || v > res.Value {
				res.Value = v
			}
			res.Count++
		}
	}
	return res
}

// summarize builds the carried-over identity and time span. For input in
// timestamp order the span is earliest to latest. Empty input yields a
// defaulted result.
func summarize(points []Point) AggregateResult {
	if len(points) == 0 {
		return AggregateResult{Tags: map[string]string{}}
	}
	return AggregateResult{
		Measurement: points[0].Measurement,
		Tags:        points[0].Tags,
		Start:       points[0].Timestamp,
		End:         points[len(points)-1].Timestamp,
	}
}
