package state

import (
	"fmt"
	"time"
)

// naiveLayout is the ISO-8601 form without a UTC offset. It is how
// timezone-naive timestamps appear on the wire.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a point in time that remembers whether it was given with a
// timezone. A naive timestamp is a bare wall-clock reading; an aware one
// names an instant. The two never compare equal and round-trip through
// serialization without losing the distinction.
type Timestamp struct {
	Time  time.Time
	Aware bool
}

// NaiveTime returns a timezone-naive timestamp carrying t's wall-clock
// reading. Any location attached to t is discarded.
func NaiveTime(t time.Time) Timestamp {
	return Timestamp{
		Time: time.Date(t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC),
	}
}

// AwareTime returns a timezone-aware timestamp for the instant t.
func AwareTime(t time.Time) Timestamp {
	return Timestamp{Time: t, Aware: true}
}

// Equal reports whether two timestamps have the same awareness and, for
// aware values, name the same instant; naive values compare by wall clock.
func (t Timestamp) Equal(o Timestamp) bool {
	if t.Aware != o.Aware {
		return false
	}
	if t.Aware {
		return t.Time.Equal(o.Time)
	}
	return t.Time.Format(naiveLayout) == o.Time.Format(naiveLayout)
}

// String returns the wire form of the timestamp.
func (t Timestamp) String() string {
	b, _ := t.MarshalText()
	return string(b)
}

// MarshalText encodes the timestamp in ISO-8601 form: aware values as
// canonical UTC with an explicit offset, naive values without one.
func (t Timestamp) MarshalText() ([]byte, error) {
	if t.Aware {
		return []byte(t.Time.UTC().Format(time.RFC3339Nano)), nil
	}
	return []byte(t.Time.Format(naiveLayout)), nil
}

// UnmarshalText decodes an ISO-8601 timestamp, using the presence of a UTC
// offset to decide between the aware and naive forms.
func (t *Timestamp) UnmarshalText(data []byte) error {
	s := string(data)
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = Timestamp{Time: parsed.UTC(), Aware: true}
		return nil
	}
	parsed, err := time.Parse(naiveLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	*t = Timestamp{Time: parsed}
	return nil
}
