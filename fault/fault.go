// Package fault defines the error taxonomy used by provisioning steps.
// Every failure surfaced by the sequencer is one of these kinds, wrapped
// around the underlying cause.
package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a provisioning failure.
type Kind int

const (
	// KindUnknown covers failures that fit no other category.
	KindUnknown Kind = iota
	// KindPackageManager covers yum/rpm invocations that fail.
	KindPackageManager
	// KindDownload covers network fetch failures.
	KindDownload
	// KindBuild covers extract/configure/make/install failures.
	KindBuild
	// KindVerification covers postcondition checks that come back false.
	KindVerification
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPackageManager:
		return "PackageManagerError"
	case KindDownload:
		return "DownloadError"
	case KindBuild:
		return "BuildError"
	case KindVerification:
		return "VerificationError"
	default:
		return "UnknownError"
	}
}

// Error is a classified provisioning failure. Step carries the name of the
// step that produced it when known.
type Error struct {
	kind Kind
	step string
	err  error
}

// New creates a classified error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap classifies an existing error. Returns nil if err is nil.
func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, err: errors.Wrap(err, message)}
}

// Wrapf classifies an existing error with a formatted message. Returns nil if
// err is nil.
func Wrapf(kind Kind, err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, err: errors.Wrapf(err, format, args...)}
}

// WithStep returns a copy of the error bound to the given step name.
func (e *Error) WithStep(step string) *Error {
	if e == nil {
		return nil
	}
	return &Error{kind: e.kind, step: step, err: e.err}
}

// Kind returns the failure classification.
func (e *Error) Kind() Kind {
	if e == nil {
		return KindUnknown
	}
	return e.kind
}

// Step returns the name of the step the error is bound to, if any.
func (e *Error) Step() string {
	if e == nil {
		return ""
	}
	return e.step
}

func (e *Error) Error() string {
	if e.step != "" {
		return fmt.Sprintf("%s: step %q: %v", e.kind, e.step, e.err)
	}
	return fmt.Sprintf("%s: %v", e.kind, e.err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.err
}

// KindOf extracts the Kind from err, walking the wrap chain. Returns
// KindUnknown for nil or unclassified errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind()
	}
	return KindUnknown
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind() == kind
	}
	return false
}
