package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeValue_RoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		value Value
	}{
		{"null", Null{}},
		{"string", String("home")},
		{"empty string", String("")},
		{"string with quotes", String(`say "hi"`)},
		{"int", Int(42)},
		{"negative int", Int(-7)},
		{"zero", Int(0)},
		{"float", Float(19.99)},
		{"negative float", Float(-0.5)},
		{"tiny float", Float(1e-12)},
		{"bool true", Bool(true)},
		{"bool false", Bool(false)},
		{"bytes", Bytes{0xde, 0xad, 0xbe, 0xef}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeValue(tc.value)
			require.NoError(t, err)

			decoded, err := DecodeValue(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.value, decoded)
		})
	}
}

func TestEncodeValue_IntegralFloatStaysFloat(t *testing.T) {
	// Float(5) must not decode as Int(5) - the kind is part of the value.
	encoded, err := EncodeValue(Float(5))
	require.NoError(t, err)

	decoded, err := DecodeValue(encoded)
	require.NoError(t, err)
	assert.Equal(t, Float(5), decoded)
}

func TestEncodeValue_NilValueEncodesAsNull(t *testing.T) {
	encoded, err := EncodeValue(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", encoded)
}

func TestEncodeDecodeValue_EmptyBytes(t *testing.T) {
	encoded, err := EncodeValue(Bytes{})
	require.NoError(t, err)

	decoded, err := DecodeValue(encoded)
	require.NoError(t, err)
	assert.Equal(t, Bytes{}, decoded)
}

func TestEncodeDecodeValue_TimeKeepsInstant(t *testing.T) {
	local := time.Date(2024, 12, 24, 18, 0, 0, 0, time.FixedZone("CET", 3600))

	encoded, err := EncodeValue(Time(local))
	require.NoError(t, err)

	decoded, err := DecodeValue(encoded)
	require.NoError(t, err)

	got, ok := decoded.(Time)
	require.True(t, ok)
	assert.True(t, time.Time(got).Equal(local), "instant must survive encoding")
}

func TestDecodeValue_RejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"nul",
		`{"$time":"not a timestamp"}`,
		`{"$bytes":"***"}`,
		"12abc",
		`"unterminated`,
	}

	for _, input := range cases {
		_, err := DecodeValue(input)
		assert.Error(t, err, "input %q", input)
	}
}
