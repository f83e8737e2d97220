package tempora

import (
	"errors"
	"testing"
)

func TestNumericValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 3.5, 3.5, true},
		{"float32", float32(2), 2, true},
		{"int", 7, 7, true},
		{"int64", int64(-9), -9, true},
		{"uint32", uint32(12), 12, true},
		{"string", "85", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := numericValue(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("numericValue(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name       string
		have, want any
		op         Op
		match      bool
	}{
		{"numeric eq across types", 85, 85.0, OpEq, true},
		{"numeric neq", 85, 86.0, OpNeq, true},
		{"numeric gt", 85.0, 50, OpGt, true},
		{"numeric lte", 50.0, 50.0, OpLte, true},
		{"string eq", "busy", "busy", OpEq, true},
		{"string lt", "alpha", "beta", OpLt, true},
		{"bool eq", true, true, OpEq, true},
		{"mismatched eq never matches", 85.0, "85", OpEq, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compareValues(tt.have, tt.want, tt.op)
			if err != nil {
				t.Fatalf("compare: %v", err)
			}
			if got != tt.match {
				t.Errorf("compareValues(%v, %v, %q) = %v, want %v", tt.have, tt.want, tt.op, got, tt.match)
			}
		})
	}
}

func TestCompareValuesIncomparable(t *testing.T) {
	if _, err := compareValues(85.0, "high", OpGt); !errors.Is(err, ErrIncomparable) {
		t.Errorf("error = %v, want ErrIncomparable", err)
	}
	if _, err := compareValues(true, false, OpLt); !errors.Is(err, ErrIncomparable) {
		t.Errorf("error = %v, want ErrIncomparable", err)
	}
}
