package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts the API is known to emit. Naive timestamps are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTime parses an ISO-8601 timestamp with or without a zone.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// TruncateMinute drops seconds and below. Two instants share a chart slot
// when their truncated values are equal.
func TruncateMinute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// flexTime decodes either an ISO string or epoch seconds.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = flexTime(time.Time{})
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, err := ParseTime(s)
		if err != nil {
			return err
		}
		*f = flexTime(t)
		return nil
	}
	secs, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid epoch timestamp %s: %w", data, err)
	}
	whole := int64(secs)
	nanos := int64((secs - float64(whole)) * float64(time.Second))
	*f = flexTime(time.Unix(whole, nanos).UTC())
	return nil
}

// UnmarshalJSON accepts naive ISO timestamps for created.
func (s *Sell) UnmarshalJSON(data []byte) error {
	type alias Sell
	aux := struct {
		*alias
		Created flexTime `json:"created"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Created = time.Time(aux.Created)
	return nil
}

// UnmarshalJSON accepts naive ISO timestamps for created.
func (o *Order) UnmarshalJSON(data []byte) error {
	type alias Order
	aux := struct {
		*alias
		Created flexTime `json:"created"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.Created = time.Time(aux.Created)
	if o.Sells == nil {
		o.Sells = []Sell{}
	}
	return nil
}
