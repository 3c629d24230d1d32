package common

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format accepted alongside RFC 3339.
const DateLayout = "2006-01-02"

// QueryBool parses an optional boolean query parameter.
func QueryBool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, BadRequest(name, name+" must be true or false", err)
	}
	return &v, nil
}

// QueryTime parses an optional date (YYYY-MM-DD, interpreted in loc) or RFC 3339 timestamp.
func QueryTime(r *http.Request, name string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := ParseTime(raw, loc)
	if err != nil {
		return nil, BadRequest(name, name+" must be a date (YYYY-MM-DD) or RFC 3339 timestamp", err)
	}
	return &t, nil
}

// ParseTime accepts YYYY-MM-DD (in loc) or RFC 3339.
func ParseTime(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
