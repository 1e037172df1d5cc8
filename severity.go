package depguard

import "github.com/kennethkcox/depguard/internal/model"

// Severity is the normalized severity of an [Advisory].
//
// The zero value is Unknown and must never be silently upgraded to a
// mid-range numeric value: an advisory whose severity cannot be determined
// reports Unknown, not Medium.
type Severity = model.Severity

const (
	Unknown  = model.Unknown
	Low      = model.Low
	Medium   = model.Medium
	High     = model.High
	Critical = model.Critical
)

// ParseSeverity normalizes a free-form severity string from an advisory
// feed. Anything unrecognized maps to Unknown rather than guessing a
// mid-range value.
func ParseSeverity(s string) Severity {
	return model.ParseSeverity(s)
}
