package tempora

import (
	"fmt"
	"time"
)

// Query accumulates filters against a DB and executes them. Every setter
// returns the same handle so filters chain fluently:
//
//	points, err := db.NewQuery().
//		From("cpu").
//		WhereTags(map[string]string{"region": "us-east"}).
//		WhereField("value", OpGt, 50.0).
//		Limit(10).
//		Execute()
//
// All filters are conjunctive. A Query is transient: build, execute,
// discard.
type Query struct {
	db *DB

	measurement string
	tags        map[string]string
	start, end  time.Time
	predicates  []fieldPredicate
	limit       int
	err         error
}

type fieldPredicate struct {
	field string
	op    Op
	value any
}

// NewQuery creates a query bound to the database's series collection.
func (db *DB) NewQuery() *Query {
	return &Query{db: db}
}

// From filters results to a single measurement.
func (q *Query) From(measurement string) *Query {
	q.measurement = measurement
	return q
}

// WhereTags requires every given tag key to be present with an equal value
// on a series. Series with additional tags still match. Repeated calls
// merge; the last value set for a key wins.
func (q *Query) WhereTags(tags map[string]string) *Query {
	if q.tags == nil {
		q.tags = make(map[string]string, len(tags))
	}
	for k, v := range tags {
		q.tags[k] = v
	}
	return q
}

// Between restricts results to start <= timestamp <= end. A zero start or
// end leaves that side unbounded.
func (q *Query) Between(start, end time.Time) *Query {
	q.start = start
	q.end = end
	return q
}

// WhereField appends a predicate on a field value. Supported operators are
// OpEq, OpNeq, OpGt, OpLt, OpGte, OpLte. Multiple calls AND together.
// A point missing the field never matches. An unknown operator is a caller
// error surfaced by Execute.
func (q *Query) WhereField(field string, op Op, value any) *Query {
	if q.err == nil && !op.valid() {
		q.err = fmt.Errorf("%w: %q", ErrUnsupportedOp, op)
	}
	q.predicates = append(q.predicates, fieldPredicate{field: field, op: op, value: value})
	return q
}

// Limit caps the number of results. The cap applies to the concatenated
// result across series, not per series. n <= 0 means unlimited.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Execute runs the query. Series are prefiltered by measurement and tag
// subset match, each surviving series contributes its binary-searched time
// range slice, and field predicates then filter individual points. Series
// are visited in series-key order, so cross-series concatenation and limit
// truncation are deterministic; within one series points are ascending by
// timestamp.
func (q *Query) Execute() ([]Point, error) {
	if q.err != nil {
		return nil, q.err
	}

	limit := q.limit
	if limit <= 0 {
		limit = q.db.config.MaxResults
	}

	var results []Point
	for _, s := range q.db.candidates(q.measurement) {
		if !q.matchSeries(s) {
			continue
		}
		for _, p := range s.Range(q.start, q.end) {
			ok, err := q.matchFields(p)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			results = append(results, p)
			if limit > 0 && len(results) == limit {
				return results, nil
			}
		}
	}
	return results, nil
}

// matchSeries applies the measurement filter and the conjunctive tag subset
// match: every filter key must be present on the series with an equal
// value.
func (q *Query) matchSeries(s *Series) bool {
	if q.measurement != "" && s.Measurement() != q.measurement {
		return false
	}
	tags := s.Tags()
	for k, v := range q.tags {
		got, ok := tags[k]
		if !ok || got != v {
			return false
		}
	}
	return true
}

func (q *Query) matchFields(p Point) (bool, error) {
	for _, pred := range q.predicates {
		v, ok := p.Fields[pred.field]
		if !ok {
			return false, nil
		}
		match, err := compareValues(v, pred.value, pred.op)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", pred.field, err)
		}
		if !match {
			return false, nil
		}
	}
	return true, nil
}
