package tempora

import (
	"errors"
	"testing"
	"time"
)

func seedDB(t *testing.T) *DB {
	t.Helper()
	db := New(DefaultConfig())
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	writes := []struct {
		measurement string
		tags        map[string]string
		fields      map[string]any
		offset      time.Duration
	}{
		{"cpu", map[string]string{"host": "a", "region": "us-east"}, map[string]any{"value": 85.0, "state": "busy"}, 0},
		{"cpu", map[string]string{"host": "a", "region": "us-east"}, map[string]any{"value": 30.0, "state": "idle"}, time.Minute},
		{"cpu", map[string]string{"host": "b", "region": "us-west"}, map[string]any{"value": 60.0, "state": "busy"}, 2 * time.Minute},
		{"mem", map[string]string{"host": "a"}, map[string]any{"used": 70.0}, 3 * time.Minute},
	}
	for i, w := range writes {
		if err := db.Write(w.measurement, w.fields, w.tags, base.Add(w.offset)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	return db
}

func TestQueryTagSubsetSemantics(t *testing.T) {
	db := New(DefaultConfig())
	err := db.Write("cpu", map[string]any{"value": 1.0}, map[string]string{"a": "1", "b": "2"}, time.Now())
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name string
		tags map[string]string
		want int
	}{
		{"subset matches", map[string]string{"a": "1"}, 1},
		{"full set matches", map[string]string{"a": "1", "b": "2"}, 1},
		{"extra key rejects", map[string]string{"a": "1", "c": "3"}, 0},
		{"wrong value rejects", map[string]string{"a": "2"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := db.NewQuery().WhereTags(tt.tags).Execute()
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if len(points) != tt.want {
				t.Errorf("matches = %d, want %d", len(points), tt.want)
			}
		})
	}
}

func TestQueryFieldPredicates(t *testing.T) {
	db := seedDB(t)

	tests := []struct {
		name  string
		build func(q *Query) *Query
		want  int
	}{
		{
			name:  "greater than",
			build: func(q *Query) *Query { return q.From("cpu").WhereField("value", OpGt, 50.0) },
			want:  2,
		},
		{
			name: "conjunctive predicates",
			build: func(q *Query) *Query {
				return q.From("cpu").WhereField("value", OpGt, 50.0).WhereField("value", OpLt, 80.0)
			},
			want: 1,
		},
		{
			name:  "string equality",
			build: func(q *Query) *Query { return q.From("cpu").WhereField("state", OpEq, "busy") },
			want:  2,
		},
		{
			name:  "not equal",
			build: func(q *Query) *Query { return q.From("cpu").WhereField("state", OpNeq, "busy") },
			want:  1,
		},
		{
			name:  "absent field never matches",
			build: func(q *Query) *Query { return q.From("cpu").WhereField("used", OpGt, 0.0) },
			want:  0,
		},
		{
			name:  "numeric compare across int and float",
			build: func(q *Query) *Query { return q.From("cpu").WhereField("value", OpGte, 60) },
			want:  2,
		},
		{
			name:  "string ordering",
			build: func(q *Query) *Query { return q.From("cpu").WhereField("state", OpLt, "idle") },
			want:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := tt.build(db.NewQuery()).Execute()
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if len(points) != tt.want {
				t.Errorf("matches = %d, want %d", len(points), tt.want)
			}
		})
	}
}

func TestQueryUnsupportedOperator(t *testing.T) {
	db := seedDB(t)
	_, err := db.NewQuery().From("cpu").WhereField("value", Op("~="), 1.0).Execute()
	if !errors.Is(err, ErrUnsupportedOp) {
		t.Errorf("error = %v, want ErrUnsupportedOp", err)
	}
}

func TestQueryIncomparableTypes(t *testing.T) {
	db := seedDB(t)
	_, err := db.NewQuery().From("cpu").WhereField("value", OpGt, "high").Execute()
	if !errors.Is(err, ErrIncomparable) {
		t.Errorf("error = %v, want ErrIncomparable", err)
	}

	// Equality across incompatible types is fine; it just never matches.
	points, err := db.NewQuery().From("cpu").WhereField("value", OpEq, "high").Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("matches = %d, want 0", len(points))
	}
}

func TestQueryTimeRange(t *testing.T) {
	db := seedDB(t)
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	points, err := db.NewQuery().
		From("cpu").
		Between(base.Add(time.Minute), base.Add(2*time.Minute)).
		Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(points) != 2 {
		t.Errorf("matches = %d, want 2 (bounds are inclusive)", len(points))
	}
}

func TestQueryLimitDeterministic(t *testing.T) {
	db := seedDB(t)

	// Series are visited sorted by series key, so the limit always keeps
	// the same points.
	first, err := db.NewQuery().From("cpu").Limit(2).Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("limit returned %d points", len(first))
	}
	for i := 0; i < 10; i++ {
		again, err := db.NewQuery().From("cpu").Limit(2).Execute()
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		for j := range again {
			if again[j].Fields["value"] != first[j].Fields["value"] {
				t.Fatalf("run %d returned different points under limit", i)
			}
		}
	}
}

func TestQueryWhereTagsMerge(t *testing.T) {
	db := seedDB(t)

	// Last write wins per key.
	points, err := db.NewQuery().
		From("cpu").
		WhereTags(map[string]string{"host": "zz"}).
		WhereTags(map[string]string{"host": "b"}).
		Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("matches = %d, want 1", len(points))
	}
}

func TestQueryUnknownMeasurement(t *testing.T) {
	db := seedDB(t)
	points, err := db.NewQuery().From("network").Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("unknown measurement returned %d points", len(points))
	}
}

func TestQueryNoFilters(t *testing.T) {
	db := seedDB(t)
	points, err := db.NewQuery().Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(points) != 4 {
		t.Errorf("matches = %d, want all 4", len(points))
	}
}

func TestQueryMaxResultsCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxResults = 3
	db := New(cfg)
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		_ = db.Write("cpu", map[string]any{"value": float64(i)}, nil, base.Add(time.Duration(i)*time.Second))
	}

	points, err := db.NewQuery().From("cpu").Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(points) != 3 {
		t.Errorf("uncapped query returned %d points, want MaxResults 3", len(points))
	}

	// An explicit limit overrides the config cap.
	points, err = db.NewQuery().From("cpu").Limit(5).Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(points) != 5 {
		t.Errorf("limited query returned %d points, want 5", len(points))
	}
}
