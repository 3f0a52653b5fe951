package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	utc := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	converted, err := Convert(utc, "Asia/Kolkata")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15T17:30:00+05:30", converted.Format(time.RFC3339))
}

func TestConvertIsLossless(t *testing.T) {
	utc := time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

	converted, err := Convert(utc, "Europe/London")
	require.NoError(t, err)

	// Same instant, different representation.
	assert.True(t, converted.Equal(utc))
	assert.Equal(t, utc, converted.UTC())
}

func TestConvertUnknownZone(t *testing.T) {
	_, err := Convert(time.Now(), "Mars/Olympus_Mons")
	require.Error(t, err)

	var cerr ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "Mars/Olympus_Mons", cerr.Zone)
	assert.Equal(t, "Unknown timezone: Mars/Olympus_Mons", err.Error())
}

func TestFormatFallsBackWithoutLocation(t *testing.T) {
	utc := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-15T12:00:00Z", Format(utc, nil))
}

func TestFormatInZone(t *testing.T) {
	utc := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	loc, err := Load("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15T07:00:00-05:00", Format(utc, loc))
}
