package tempora

import "fmt"

// Op is a field comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "!="
	OpGt  Op = ">"
	OpLt  Op = "<"
	OpGte Op = ">="
	OpLte Op = "<="
)

func (op Op) valid() bool {
	switch op {
	case OpEq, OpNeq, OpGt, OpLt, OpGte, OpLte:
		return true
	}
	return false
}

// numericValue extracts a float64 from a variant field value. The second
// return is false for non-numeric values; callers treat those as "not
// applicable" rather than errors. bool is not numeric.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// compareValues evaluates "have op want" over two variant values. Numeric
// pairs compare numerically across concrete types (int 85 equals float64 85).
// Equality operators accept any pair; ordering operators require either two
// numbers or two strings and return ErrIncomparable otherwise.
func compareValues(have, want any, op Op) (bool, error) {
	hn, hok := numericValue(have)
	wn, wok := numericValue(want)

	switch op {
	case OpEq, OpNeq:
		var eq bool
		if hok && wok {
			eq = hn == wn
		} else {
			eq = have == want
		}
		if op == OpEq {
			return eq, nil
		}
		return !eq, nil
	case OpGt, OpLt, OpGte, OpLte:
		if hok && wok {
			return compareOrdered(hn, wn, op), nil
		}
		hs, hsok := have.(string)
		ws, wsok := want.(string)
		if hsok && wsok {
			return compareOrdered(hs, ws, op), nil
		}
		return false, fmt.Errorf("%w: %T vs %T", ErrIncomparable, have, want)
	}
	return false, fmt.Errorf("%w: %q", ErrUnsupportedOp, op)
}

func compareOrdered[T float64 | string](have, want T, op Op) bool {
	switch op {
	case OpGt:
		return have > want
	case OpLt:
		return have < want
	case OpGte:
		return have >= want
	case OpLte:
		return have <= want
	}
	return false
}
