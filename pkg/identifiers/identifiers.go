// Package identifiers normalizes record identifiers that may arrive as JSON
// numbers or strings, and compares them at increasing levels of tolerance.
package identifiers

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Canonical returns the string form of an identifier value. Numbers render
// without exponent or trailing zeros, so 7, 7.0 and json.Number("7") all
// become "7". Integral json.Numbers keep every digit. ok is false for nil
// and for values that are not scalars.
func Canonical(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		n, ok := parseDecimal(t.String())
		if !ok {
			return strings.TrimSpace(t.String()), true
		}
		if n.IsInt() {
			return n.Num().String(), true
		}
		f, _ := n.Float64()
		return formatFloat(f), true
	case float64:
		return formatFloat(t), true
	case float32:
		return formatFloat(float64(t)), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case fmt.Stringer:
		return strings.TrimSpace(t.String()), true
	}
	return "", false
}

// CanonicalString is Canonical with the empty string for unusable values.
func CanonicalString(v any) string {
	s, _ := Canonical(v)
	return s
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseDecimal reads a decimal literal exactly. Exponent forms go through
// float64 so a huge exponent cannot blow up the allocation.
func parseDecimal(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return ratFromFloat(f)
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	dot := false
	seen := false
	for _, c := range digits {
		switch {
		case c >= '0' && c <= '9':
			seen = true
		case c == '.' && !dot:
			dot = true
		default:
			return nil, false
		}
	}
	if !seen {
		return nil, false
	}
	return new(big.Rat).SetString(s)
}

func ratFromFloat(f float64) (*big.Rat, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return new(big.Rat).SetFloat64(f), true
}

// StorageID builds the local id for an associated record of a pair:
// <prefix>_<vendor>_<tour>_<unix millis>.
func StorageID(prefix, vendorID, tourID string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%d", prefix, vendorID, tourID, at.UnixMilli())
}

// HasPrefix reports whether a raw id is already a storage id for prefix.
func HasPrefix(prefix, id string) bool {
	return strings.HasPrefix(id, prefix+"_") && len(id) > len(prefix)+1
}
