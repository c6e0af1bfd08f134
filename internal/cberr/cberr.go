// Package cberr is the common currency for fatal interpreter errors.
// Every component that can fail — range checks, name resolution,
// array bounds, struct registration, the driver — returns a *cberr.Error
// as a plain Go error rather than panicking, the same accumulate-and-return
// style the lexer and parser use for their own error lists. The
// Kind field is one of the diagnostic package's error-kind codes so a
// caller (or a test) can branch on what went wrong without parsing the
// message text.
package cberr

import (
	"fmt"

	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/diagnostic"
)

// Error is a single fatal interpreter error, tagged with the kind of
// failure and the source position it occurred at (ast.NoPos if none
// is available, e.g. an error raised from within a builtin).
type Error struct {
	Kind    diagnostic.DiagnosticCode
	Message string
	Pos     ast.Pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs an Error, formatting Message like fmt.Sprintf.
func New(kind diagnostic.DiagnosticCode, pos ast.Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// Is reports whether err is a *Error of the given kind, so callers can
// branch without a type assertion at every call site.
func Is(err error, kind diagnostic.DiagnosticCode) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == kind
}
