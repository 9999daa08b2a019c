// Package clock supplies the current instant in the operating timezone.
// The offset is a static configuration value, not a tz-database rule.
package clock

import "time"

// Clock returns "now". Operations that compare a caller-supplied instant
// against the current time capture Now() once per call and reuse it.
type Clock interface {
	Now() time.Time
}

// Fixed is a real clock pinned to a fixed UTC offset.
type Fixed struct {
	loc *time.Location
}

// NewFixed builds a clock for the operating timezone at the given UTC
// offset in hours.
func NewFixed(name string, offsetHours int) Fixed {
	return Fixed{loc: time.FixedZone(name, offsetHours*3600)}
}

func (c Fixed) Now() time.Time { return time.Now().In(c.loc) }

// Location exposes the operating timezone for converting parsed instants.
func (c Fixed) Location() *time.Location { return c.loc }

// Frozen is a test clock that always reports the same instant.
type Frozen struct {
	T time.Time
}

func (f Frozen) Now() time.Time { return f.T }
