// Package timezone converts stored UTC instants into a caller-requested
// zone for display. Conversion never mutates stored data and is lossless:
// the instant is unchanged, only its representation moves.
package timezone

import (
	"fmt"
	"time"
)

// ConversionError reports an unrecognized zone name.
type ConversionError struct {
	Zone string
}

func (e ConversionError) Error() string {
	return fmt.Sprintf("Unknown timezone: %s", e.Zone)
}

// Load resolves an IANA zone name.
func Load(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, ConversionError{Zone: name}
	}
	return loc, nil
}

// Convert shifts t into the named zone.
func Convert(t time.Time, name string) (time.Time, error) {
	loc, err := Load(name)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// Format renders t in loc as RFC 3339. A nil loc is the best-effort
// fallback: the stored value is emitted untransformed rather than failing
// the response.
func Format(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(time.RFC3339)
}
