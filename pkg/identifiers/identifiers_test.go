package identifiers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	type testCase struct {
		name     string
		input    any
		expected string
		ok       bool
	}

	testCases := []testCase{
		{name: "string", input: "abc", expected: "abc", ok: true},
		{name: "padded string", input: "  12 ", expected: "12", ok: true},
		{name: "json number", input: json.Number("7"), expected: "7", ok: true},
		{name: "json number with fraction", input: json.Number("7.0"), expected: "7", ok: true},
		{name: "json number past float precision", input: json.Number("12345678901234567891"), expected: "12345678901234567891", ok: true},
		{name: "json number leading zeros", input: json.Number("007"), expected: "7", ok: true},
		{name: "json number exponent", input: json.Number("1e3"), expected: "1000", ok: true},
		{name: "json number fraction", input: json.Number("2.50"), expected: "2.5", ok: true},
		{name: "float", input: 12.0, expected: "12", ok: true},
		{name: "fractional float", input: 1.5, expected: "1.5", ok: true},
		{name: "int", input: 42, expected: "42", ok: true},
		{name: "int64", input: int64(42), expected: "42", ok: true},
		{name: "nil", input: nil, expected: "", ok: false},
		{name: "slice", input: []any{1}, expected: "", ok: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, ok := Canonical(testCase.input)
			assert.Equal(t, testCase.ok, ok)
			assert.Equal(t, testCase.expected, result)
		})
	}
}

func TestCompare(t *testing.T) {
	type testCase struct {
		name     string
		a        any
		b        any
		expected Level
	}

	testCases := []testCase{
		{name: "equal strings", a: "7", b: "7", expected: LevelStrict},
		{name: "number and string", a: json.Number("7"), b: "7", expected: LevelNumeric},
		{name: "string and float", a: "12", b: 12.0, expected: LevelNumeric},
		{name: "zero padded", a: "007", b: json.Number("7"), expected: LevelNumeric},
		{name: "case differs", a: "ABC-1", b: "abc-1", expected: LevelLoose},
		{name: "whitespace differs", a: " abc", b: "abc", expected: LevelLoose},
		{name: "different", a: "7", b: "8", expected: LevelNone},
		{name: "adjacent large numbers", a: json.Number("12345678901234567890"), b: json.Number("12345678901234567891"), expected: LevelNone},
		{name: "large number and string", a: json.Number("12345678901234567891"), b: "12345678901234567891", expected: LevelNumeric},
		{name: "large string and float", a: "12345678901234567891", b: 12345678901234567891.0, expected: LevelNone},
		{name: "fraction syntax is not a number", a: "1/2", b: json.Number("0.5"), expected: LevelNone},
		{name: "nil", a: nil, b: "7", expected: LevelNone},
		{name: "empty vs empty non string", a: "", b: nil, expected: LevelNone},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Compare(testCase.a, testCase.b))
		})
	}
}

func TestEqualAt(t *testing.T) {
	assert.True(t, EqualAt("7", "7", LevelStrict))
	assert.True(t, EqualAt("7", "7", LevelLoose), "tighter matches hold at looser levels")
	assert.False(t, EqualAt(json.Number("7"), "7", LevelStrict))
	assert.True(t, EqualAt(json.Number("7"), "7", LevelNumeric))
	assert.False(t, EqualAt("Abc", "abc", LevelNumeric))
	assert.True(t, EqualAt("Abc", "abc", LevelLoose))
}

func TestStorageID(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	id := StorageID("contact", "7", "12", at)
	assert.Equal(t, "contact_7_12_1700000000123", id)
	assert.True(t, HasPrefix("contact", id))
	assert.False(t, HasPrefix("policy", id))
	assert.False(t, HasPrefix("contact", "contact_"))
	assert.False(t, HasPrefix("contact", "c-19"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ops@example.com", NormalizeEmail("  Ops@Example.COM "))
	assert.Equal(t, "+1 555 0100", NormalizePhone(" +1 555 0100\t"))
}
