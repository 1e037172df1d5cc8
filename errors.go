package depguard

import (
	"errors"
	"strings"
)

// Error is the depguard error domain type.
//
// Errors coming from depguard components should be able to be inspected as
// ([errors.As]) an *Error at some point in the error chain.
//
// Implementers of depguard components should create an Error at the system
// boundary (e.g. when reading a file, launching a subprocess, or calling an
// injected collaborator) and intermediate layers should not wrap in another
// Error except to add additional [ErrorKind] information. That is to say,
// use [fmt.Errorf] with a "%w" verb in preference to creating a containing
// Error.
type Error struct {
	Inner   error
	Kind    ErrorKind
	Message string
	Op      string
}

// Assert this implements all the cool features.
var (
	_ error                       = (*Error)(nil)
	_ interface{ Is(error) bool } = (*Error)(nil)
	_ interface{ Unwrap() error } = (*Error)(nil)
)

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	b.WriteString("[")
	switch e.Kind {
	case ErrConflict,
		ErrInternal,
		ErrInvalid,
		ErrPrecondition,
		ErrTransient:
		b.WriteString(string(e.Kind))
	default:
		b.WriteString("???")
	}
	b.WriteString("]: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Message != "" && e.Inner != nil {
		b.WriteString(": ")
	}
	if e.Op == "" && e.Message == "" {
		b.Reset()
	}
	if e.Inner != nil {
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Is enables [errors.Is].
//
// It compares the error kind. Callers should compare against a declared
// [ErrorKind] over a specific error.
func (e *Error) Is(kind error) bool {
	switch kind {
	case ErrVersionDependent:
		return !errors.Is(e, ErrTransient) && !errors.Is(e, ErrPermanent)
	default:
	}
	return errors.Is(e.Kind, kind)
}

// Unwrap enables [errors.Unwrap].
func (e *Error) Unwrap() error {
	return e.Inner
}

// ErrorKind represents classes of errors to be checked against.
//
// If an error is unsure which kind to use, ErrInternal should be used.
type ErrorKind string

// Defined error kinds.
var (
	ErrConflict     = ErrorKind("conflict")     // conflicting action
	ErrInternal     = ErrorKind("internal")     // non-specific internal error
	ErrInvalid      = ErrorKind("invalid")      // invalid request
	ErrPrecondition = ErrorKind("precondition") // some precondition unfulfilled
	ErrTransient    = ErrorKind("transient")    // may succeed on retry
	ErrPermanent    = ErrorKind("permanent")    // will never succeed

	// ErrVersionDependent should only be used for an [Is] comparison.
	// It's true for any error that's not marked as transient or permanent.
	ErrVersionDependent = ErrorKind("version dependent") // neither transient nor permanent, may not error in a future version

)

// Error implements error.
func (e ErrorKind) Error() string {
	return string(e)
}

// The following constructors name the error taxonomy from the design: each
// wraps ErrorKind with the Op a caller would naturally supply, so call
// sites read like "return ManifestParsingError(op, err)" instead of
// repeating the Kind/Op pair everywhere.

// ManifestParsingError reports a manifest or lockfile that failed to parse.
// Recovery: the caller skips the manifest and continues the scan.
func ManifestParsingError(op string, inner error) *Error {
	return &Error{Op: op, Kind: ErrInvalid, Message: "manifest parsing failed", Inner: inner}
}

// VulnerabilityFetchError reports an advisory-provider failure.
// Recovery: retried per policy; on exhaustion the batch yields zero advisories.
func VulnerabilityFetchError(op string, inner error) *Error {
	return &Error{Op: op, Kind: ErrTransient, Message: "vulnerability feed fetch failed", Inner: inner}
}

// FileSystemError reports an unreadable path or a size-cap overflow.
// Recovery: skip the file.
func FileSystemError(op string, inner error) *Error {
	return &Error{Op: op, Kind: ErrPrecondition, Message: "filesystem access failed", Inner: inner}
}

// ValidationError reports invalid caller-supplied input.
// Recovery: reject the operation without mutating state.
func ValidationError(op, msg string) *Error {
	return &Error{Op: op, Kind: ErrInvalid, Message: msg}
}

// SecurityError reports a rejected input with security implications (path
// traversal, non-HTTPS advisory URL, out-of-range numeric config).
// Recovery: reject the operation without mutating state.
func SecurityError(op, msg string) *Error {
	return &Error{Op: op, Kind: ErrInvalid, Message: "security: " + msg}
}

// NetworkError reports a failed outbound request, with URL context folded
// into Message. Recovery: retried per policy.
func NetworkError(op, url string, inner error) *Error {
	return &Error{Op: op, Kind: ErrTransient, Message: "request to " + url + " failed", Inner: inner}
}

// AnalysisError reports a single advisory's reachability/taint analysis
// failing. Recovery: the advisory is still emitted, with
// is-reachable=false and detection-method="none".
func AnalysisError(op string, inner error) *Error {
	return &Error{Op: op, Kind: ErrInternal, Message: "analysis failed", Inner: inner}
}
