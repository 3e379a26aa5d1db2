package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUTC_RejectsZeroTime(t *testing.T) {
	_, err := NormalizeUTC(time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero timestamp")
}

func TestNormalizeUTC_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	local := time.Date(2024, 3, 1, 20, 0, 0, 0, loc)

	got, err := NormalizeUTC(local)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 12, got.Hour())
	assert.True(t, got.Equal(local))
}

func TestFormatParseRoundTrip(t *testing.T) {
	orig := time.Date(2024, 3, 1, 12, 30, 45, 123456789, time.UTC)

	parsed, err := ParseUTC(FormatUTC(orig))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(orig))
	assert.Equal(t, time.UTC, parsed.Location())
}

func TestParseUTC_Invalid(t *testing.T) {
	_, err := ParseUTC("not a timestamp")
	assert.Error(t, err)
}

func TestCanonicalID(t *testing.T) {
	assert.Equal(t, "123456789012345678", CanonicalID("123456789012345678"))
	assert.Equal(t, "42", CanonicalID(42))
	assert.Equal(t, "9007199254740993", CanonicalID(int64(9007199254740993)))
	assert.Equal(t, "77", CanonicalID(uint64(77)))
	assert.Equal(t, "1024", CanonicalID(float64(1024)))
	assert.Equal(t, "", CanonicalID(nil))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("hello world")
	b := Fingerprint("hello world")
	c := Fingerprint("hello there")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
	// Raw content never appears in the digest.
	assert.NotContains(t, a, "hello")
}
