package model

import (
	"bytes"
	"database/sql/driver"
	"fmt"
)

// Severity is the normalized severity of an [Advisory].
//
// The zero value is Unknown and must never be silently upgraded to a
// mid-range numeric value: an advisory whose severity cannot be determined
// reports Unknown, not Medium.
type Severity uint

const (
	Unknown Severity = iota
	Low
	Medium
	High
	Critical
)

var severityName = [...]string{
	Unknown:  "UNKNOWN",
	Low:      "LOW",
	Medium:   "MEDIUM",
	High:     "HIGH",
	Critical: "CRITICAL",
}

// String implements [fmt.Stringer].
func (s Severity) String() string {
	if int(s) >= len(severityName) {
		return "UNKNOWN"
	}
	return severityName[s]
}

// MarshalText implements [encoding.TextMarshaler].
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (s *Severity) UnmarshalText(b []byte) error {
	for i, name := range severityName {
		if bytes.EqualFold(b, []byte(name)) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("depguard: unknown severity %q", string(b))
}

// ParseSeverity normalizes a free-form severity string from an advisory
// feed. Anything unrecognized maps to Unknown rather than guessing a
// mid-range value.
func ParseSeverity(s string) Severity {
	var sev Severity
	if err := sev.UnmarshalText([]byte(s)); err != nil {
		return Unknown
	}
	return sev
}

// Value implements [driver.Valuer] so Severity can be persisted through the
// optional cache storage interface.
func (s Severity) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan implements [sql.Scanner].
func (s *Severity) Scan(i interface{}) error {
	switch v := i.(type) {
	case []byte:
		return s.UnmarshalText(v)
	case string:
		return s.UnmarshalText([]byte(v))
	case int64:
		if v >= int64(len(severityName)) {
			return fmt.Errorf("depguard: unable to scan Severity from enum %d", v)
		}
		*s = Severity(v)
	default:
		return fmt.Errorf("depguard: unable to scan Severity from type %T", i)
	}
	return nil
}
