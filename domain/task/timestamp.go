package task

import (
	"bytes"
	"fmt"
	"time"
)

// TimestampLayout is the wire layout for task timestamps (yyyy-MM-ddTHH:mm:ss).
const TimestampLayout = "2006-01-02T15:04:05"

// Timestamp is a time.Time that marshals to JSON using TimestampLayout. It
// accepts either TimestampLayout or RFC 3339 when unmarshaling.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, returning nil for a nil pointer.
func NewTimestamp(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	return &Timestamp{Time: *t}
}

// Ptr returns the wrapped time, or nil for a nil receiver.
func (ts *Timestamp) Ptr() *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + ts.Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: timestamp must be a string", ErrInvalidTask)
	}

	t, err := ParseTimestamp(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

// ParseTimestamp parses s as TimestampLayout, falling back to RFC 3339.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", ErrInvalidTask, s)
	}
	return t, nil
}
