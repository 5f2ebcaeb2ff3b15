// Package cerrors defines the compiler's user-visible error taxonomy:
// collected, bulk-reported CompileErrors with optional QName and
// source-location context, plus a distinct internal-error kind for
// invariant violations that callers must not attempt to recover from.
//
// Style grounded on pkg/cramberry/errors.go: sentinel Kind values instead
// of a deep type hierarchy, struct errors with Unwrap support for the
// underlying cause, and an Errors ([]*CompileError) aggregate that itself
// implements error so callers can choose to inspect structured fields or
// just treat a compile failure as "one error".
package cerrors

import (
	"fmt"
	"strings"

	"github.com/blockberries/wireforge/pkg/ir"
)

// Kind classifies a CompileError, matching spec.md §7's taxonomy.
type Kind int

const (
	KindName Kind = iota
	KindDefinition
	KindSemantic
	KindHashCollision
	KindConversion
	// KindInternal signals an invariant violation (e.g. a type expected to
	// be lowered appearing post-lowering). Never recoverable by callers.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindDefinition:
		return "definition"
	case KindSemantic:
		return "semantic"
	case KindHashCollision:
		return "hash-collision"
	case KindConversion:
		return "conversion"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// CompileError is one user-visible (or internal) compiler diagnostic.
type CompileError struct {
	Kind    Kind
	Message string
	QName   ir.QName      // optional; zero value means "no QName context"
	Loc     *ir.SourceLoc // optional; nil means "no source location"
	Cause   error         // optional wrapped cause
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Loc != nil && e.Loc.File != "" {
		fmt.Fprintf(&b, "%s:%d:%d: ", e.Loc.File, e.Loc.Line, e.Loc.Column)
	}
	fmt.Fprintf(&b, "%s: ", e.Kind)
	if !e.QName.IsEmpty() {
		fmt.Fprintf(&b, "%s: ", e.QName)
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *CompileError) Unwrap() error { return e.Cause }

// New builds a plain CompileError with no QName or location context.
func New(kind Kind, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At builds a CompileError scoped to a QName.
func At(kind Kind, name ir.QName, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, QName: name, Message: fmt.Sprintf(format, args...)}
}

// AtLoc builds a CompileError scoped to a QName and source location.
func AtLoc(kind Kind, name ir.QName, loc ir.SourceLoc, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, QName: name, Loc: &loc, Message: fmt.Sprintf(format, args...)}
}

// Internal builds a KindInternal error, wrapping cause if non-nil.
func Internal(cause error, format string, args ...any) *CompileError {
	return &CompileError{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Errors aggregates CompileErrors collected during a bulk-reporting pass.
// It implements error itself so a whole batch can be returned or wrapped
// as a single Go error, while callers who want structured detail can range
// over it directly.
type Errors []*CompileError

func (es Errors) Error() string {
	if len(es) == 0 {
		return "no errors"
	}
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// HasInternal reports whether the batch contains an internal-invariant
// violation, which a caller must not attempt to recover from.
func (es Errors) HasInternal() bool {
	for _, e := range es {
		if e.Kind == KindInternal {
			return true
		}
	}
	return false
}
