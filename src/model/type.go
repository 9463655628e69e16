package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Values above this are treated as milliseconds when a timestamp is given as a number.
const millisecondsThreshold = 1e12

// Numeric timestamps beyond this many seconds from the epoch are rejected.
const maxUnixSeconds = 1e11

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseUnixTimestamp converts a date-like string to Unix seconds.
func ParseUnixTimestamp(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
		return NumericUnixTimestamp(floatValue)
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.Unix(), true
		}
	}

	return 0, false
}

// NumericUnixTimestamp accepts seconds or milliseconds and returns seconds.
func NumericUnixTimestamp(value float64) (int64, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	if math.Abs(value) >= millisecondsThreshold {
		value = value / 1000
	}

	if math.Abs(value) > maxUnixSeconds {
		return 0, false
	}

	return int64(math.Floor(value)), true
}

type UnixTimestamp int64

func (t *UnixTimestamp) UnmarshalJSON(b []byte) error {
	var strValue string
	err := json.Unmarshal(b, &strValue)
	if err == nil {
		seconds, ok := ParseUnixTimestamp(strValue)
		if !ok {
			return fmt.Errorf("UnixTimestamp: unparseable value %q", strValue)
		}
		*t = UnixTimestamp(seconds)
		return nil
	}

	var floatValue float64
	err = json.Unmarshal(b, &floatValue)

	if err == nil {
		seconds, ok := NumericUnixTimestamp(floatValue)
		if !ok {
			return fmt.Errorf("UnixTimestamp: non-finite value %s", string(b))
		}
		*t = UnixTimestamp(seconds)
		return nil
	}

	return fmt.Errorf("UnixTimestamp: unsupported data type given, %s", err.Error())
}

func (t UnixTimestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value())
}

func (t UnixTimestamp) Value() int64 {
	return int64(t)
}

// Price keeps NaN for unparseable input so that callers can drop the row.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = Price(math.NaN())
		return nil
	}

	var strValue string
	err := json.Unmarshal(b, &strValue)
	if err == nil {
		floatValue, parseErr := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
		if parseErr != nil {
			floatValue = math.NaN()
		}
		*p = Price(floatValue)
		return nil
	}

	var floatValue float64
	err = json.Unmarshal(b, &floatValue)

	if err == nil {
		*p = Price(floatValue)
		return nil
	}

	return fmt.Errorf("Price: unsupported data type given, %s", err.Error())
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.IsFinite() {
		return []byte("null"), nil
	}

	return json.Marshal(p.Value())
}

func (p Price) Value() float64 {
	return float64(p)
}

func (p Price) IsFinite() bool {
	return IsFinite(p.Value())
}

func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
