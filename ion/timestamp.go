package ion

import (
	"fmt"
	"time"
)

// TimestampPrecision indicates how much of a timestamp is significant.
type TimestampPrecision uint8

const (
	PrecisionYear TimestampPrecision = iota
	PrecisionMonth
	PrecisionDay
	PrecisionMinute
	PrecisionSecond
	PrecisionNanosecond
)

// Time is a point in time with explicit precision and a known or
// unknown UTC offset. Two timestamps are equal only if they name the same
// instant at the same precision.
type Time struct {
	t         time.Time
	precision TimestampPrecision
	hasOffset bool
}

// NewTimestamp creates a timestamp from civil components. offsetMinutes is
// ignored for date-only precisions.
func NewTimestamp(year int, month time.Month, day, hour, min, sec, nanos int, offsetMinutes int, precision TimestampPrecision) Time {
	loc := time.UTC
	hasOffset := false
	if precision >= PrecisionMinute {
		hasOffset = true
		if offsetMinutes != 0 {
			loc = time.FixedZone("", offsetMinutes*60)
		}
	}
	return Time{
		t:         time.Date(year, month, day, hour, min, sec, nanos, loc),
		precision: precision,
		hasOffset: hasOffset,
	}
}

// Date creates a day-precision timestamp.
func Date(year int, month time.Month, day int) Time {
	return NewTimestamp(year, month, day, 0, 0, 0, 0, 0, PrecisionDay)
}

// AsTime returns the underlying time value.
func (ts Time) AsTime() time.Time {
	return ts.t
}

// Precision returns the timestamp's precision.
func (ts Time) Precision() TimestampPrecision {
	return ts.precision
}

// Equal reports whether two timestamps name the same instant at the same
// precision.
func (ts Time) Equal(o Time) bool {
	return ts.precision == o.precision && ts.hasOffset == o.hasOffset && ts.t.Equal(o.t)
}

func (ts Time) String() string {
	switch ts.precision {
	case PrecisionYear:
		return fmt.Sprintf("%04dT", ts.t.Year())
	case PrecisionMonth:
		return ts.t.Format("2006-01") + "T"
	case PrecisionDay:
		return ts.t.Format("2006-01-02") + "T"
	case PrecisionMinute:
		return ts.t.Format("2006-01-02T15:04Z07:00")
	case PrecisionSecond:
		return ts.t.Format("2006-01-02T15:04:05Z07:00")
	default:
		return ts.t.Format("2006-01-02T15:04:05.999999999Z07:00")
	}
}
