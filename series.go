package tempora

import (
	"sort"
	"sync"
	"time"
)

// Series holds every point sharing one measurement and exact tag set.
// Points are kept sorted by timestamp at all times so range queries reduce
// to two binary searches. A Series is created by the DB on first write to a
// new series key and is safe for concurrent use: writers take the lock
// exclusively during insert, readers share it during queries.
type Series struct {
	measurement string
	tags        map[string]string

	mu     sync.RWMutex
	points []Point
}

func newSeries(measurement string, tags map[string]string, capacityHint int) *Series {
	return &Series{
		measurement: measurement,
		tags:        tags,
		points:      make([]Point, 0, capacityHint),
	}
}

// Measurement returns the measurement name shared by all points in the
// series.
func (s *Series) Measurement() string {
	return s.measurement
}

// Tags returns the identity-defining tag set. The returned map must not be
// modified.
func (s *Series) Tags() map[string]string {
	return s.tags
}

// insert places p at its sorted position. The insertion index is the first
// position with a strictly greater timestamp, so points with equal
// timestamps keep their arrival order and nothing is deduplicated.
// Cost is O(log n) to locate plus O(n) to shift the tail.
func (s *Series) insert(p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Timestamp.After(p.Timestamp)
	})
	s.points = append(s.points, Point{})
	copy(s.points[i+1:], s.points[i:])
	s.points[i] = p
}

// Range returns the points with start <= timestamp <= end in ascending
// timestamp order. A zero start or end leaves that side unbounded. The
// bounds are located with two binary searches; the result is a copy the
// caller may keep.
func (s *Series) Range(start, end time.Time) []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := 0
	if !start.IsZero() {
		lo = sort.Search(len(s.points), func(i int) bool {
			return !s.points[i].Timestamp.Before(start)
		})
	}
	hi := len(s.points)
	if !end.IsZero() {
		hi = sort.Search(len(s.points), func(i int) bool {
			return s.points[i].Timestamp.After(end)
		})
	}
	if lo >= hi {
		return nil
	}
	out := make([]Point, hi-lo)
	copy(out, s.points[lo:hi])
	return out
}

// Latest returns the newest n points in ascending timestamp order.
// n <= 0 yields nil; n larger than the series returns everything.
func (s *Series) Latest(n int) []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	if n > len(s.points) {
		n = len(s.points)
	}
	out := make([]Point, n)
	copy(out, s.points[len(s.points)-n:])
	return out
}

// Oldest returns the oldest n points in ascending timestamp order.
// n <= 0 yields nil; n larger than the series returns everything.
func (s *Series) Oldest(n int) []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	if n > len(s.points) {
		n = len(s.points)
	}
	out := make([]Point, n)
	copy(out, s.points[:n])
	return out
}

// Count returns the number of points in the series.
func (s *Series) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Points returns a snapshot of all points in ascending timestamp order.
func (s *Series) Points() []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// TimeSpan returns the earliest and latest timestamps in the series.
// ok is false when the series is empty.
func (s *Series) TimeSpan() (start, end time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.points) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.points[0].Timestamp, s.points[len(s.points)-1].Timestamp, true
}

// Clear removes all points from the series. The series itself stays
// registered with the DB.
func (s *Series) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = s.points[:0]
}
