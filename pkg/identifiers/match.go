package identifiers

import (
	"encoding/json"
	"math/big"
	"strings"
)

// Level is how tolerant a comparison is. Higher levels accept more.
type Level int

const (
	LevelNone Level = iota
	// LevelStrict: both sides are strings and byte-equal.
	LevelStrict
	// LevelNumeric: both sides parse as the same number.
	LevelNumeric
	// LevelLoose: canonical forms are equal ignoring case and surrounding space.
	LevelLoose
)

// Levels lists the comparison passes in the order they are tried.
var Levels = []Level{LevelStrict, LevelNumeric, LevelLoose}

func (l Level) String() string {
	switch l {
	case LevelStrict:
		return "strict"
	case LevelNumeric:
		return "numeric"
	case LevelLoose:
		return "loose"
	}
	return "none"
}

// Compare returns the tightest level at which a and b are equal, or LevelNone.
func Compare(a, b any) Level {
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok && sa == sb {
			return LevelStrict
		}
	}

	na, okA := number(a)
	nb, okB := number(b)
	if okA && okB && na.Cmp(nb) == 0 {
		return LevelNumeric
	}

	ca, okA := Canonical(a)
	cb, okB := Canonical(b)
	if okA && okB && ca != "" && strings.EqualFold(ca, cb) {
		return LevelLoose
	}

	return LevelNone
}

// EqualAt reports whether a and b are equal at level or any tighter level.
func EqualAt(a, b any, level Level) bool {
	got := Compare(a, b)
	return got != LevelNone && got <= level
}

func number(v any) (*big.Rat, bool) {
	switch t := v.(type) {
	case json.Number:
		return parseDecimal(t.String())
	case string:
		return parseDecimal(t)
	case float64:
		return ratFromFloat(t)
	case float32:
		return ratFromFloat(float64(t))
	case int:
		return new(big.Rat).SetInt64(int64(t)), true
	case int64:
		return new(big.Rat).SetInt64(t), true
	case int32:
		return new(big.Rat).SetInt64(int64(t)), true
	}
	return nil, false
}
