// Package diagnostic provides error reporting for the Cb interpreter:
// severity-ranked messages with precise source locations, rendered
// with a caret under the offending source line.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/cb-lang/cb/internal/sourcemap"
)

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	// Error is a fatal diagnostic that stops the run.
	Error Severity = iota
	// Warning is a non-blocking issue.
	Warning
	// Info is an informational message.
	Info
	// Note provides additional context for another diagnostic.
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Position represents a position in source code.
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// Range represents a range in source code.
type Range struct {
	Start Position
	End   Position
}

// RelatedInfo provides additional location information for a diagnostic.
type RelatedInfo struct {
	Range   Range
	Message string
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity Severity
	Code     string        // Error code (e.g., "E0001", "type-mismatch")
	Message  string        // Human-readable message
	Range    Range         // Source location
	Related  []RelatedInfo // Related locations
}

// Error returns a formatted error string.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Message)
}

// DiagnosticList collects diagnostics during compilation.
type DiagnosticList struct {
	diagnostics []Diagnostic
	lineIndex   *sourcemap.LineIndex
	source      string
	hasErrors   bool
}

// NewDiagnosticList creates a new diagnostic list for the given source.
func NewDiagnosticList(source string) *DiagnosticList {
	return &DiagnosticList{
		diagnostics: make([]Diagnostic, 0),
		lineIndex:   sourcemap.NewLineIndex(source),
		source:      source,
	}
}

// Add adds a diagnostic to the list.
func (dl *DiagnosticList) Add(d Diagnostic) {
	dl.diagnostics = append(dl.diagnostics, d)
	if d.Severity == Error {
		dl.hasErrors = true
	}
}

// AddError adds an error diagnostic at the given byte offset.
func (dl *DiagnosticList) AddError(offset int, message string) {
	dl.AddErrorRange(offset, offset+1, message)
}

// AddErrorRange adds an error diagnostic for a byte range.
func (dl *DiagnosticList) AddErrorRange(start, end int, message string) {
	dl.Add(Diagnostic{
		Severity: Error,
		Message:  message,
		Range:    dl.MakeRange(start, end),
	})
}

// AddErrorWithCode adds an error diagnostic with an error code.
func (dl *DiagnosticList) AddErrorWithCode(offset int, code, message string) {
	dl.Add(Diagnostic{
		Severity: Error,
		Code:     code,
		Message:  message,
		Range:    dl.MakeRange(offset, offset+1),
	})
}

// AddWarning adds a warning diagnostic at the given byte offset.
func (dl *DiagnosticList) AddWarning(offset int, message string) {
	dl.Add(Diagnostic{
		Severity: Warning,
		Message:  message,
		Range:    dl.MakeRange(offset, offset+1),
	})
}

// AddNote adds a note diagnostic at the given byte offset.
func (dl *DiagnosticList) AddNote(offset int, message string) {
	dl.Add(Diagnostic{
		Severity: Note,
		Message:  message,
		Range:    dl.MakeRange(offset, offset+1),
	})
}

// MakePosition converts a byte offset to a Position.
func (dl *DiagnosticList) MakePosition(offset int) Position {
	line, col := dl.lineIndex.ByteOffsetToLineColumn(offset)
	return Position{
		Offset: offset,
		Line:   line + 1, // Convert to 1-based
		Column: col + 1,  // Convert to 1-based
	}
}

// MakeRange converts byte offsets to a Range.
func (dl *DiagnosticList) MakeRange(start, end int) Range {
	return Range{
		Start: dl.MakePosition(start),
		End:   dl.MakePosition(end),
	}
}

// HasErrors returns true if there are any error-level diagnostics.
func (dl *DiagnosticList) HasErrors() bool {
	return dl.hasErrors
}

// Diagnostics returns all collected diagnostics.
func (dl *DiagnosticList) Diagnostics() []Diagnostic {
	return dl.diagnostics
}

// Errors returns only error-level diagnostics.
func (dl *DiagnosticList) Errors() []Diagnostic {
	var errors []Diagnostic
	for _, d := range dl.diagnostics {
		if d.Severity == Error {
			errors = append(errors, d)
		}
	}
	return errors
}

// Warnings returns only warning-level diagnostics.
func (dl *DiagnosticList) Warnings() []Diagnostic {
	var warnings []Diagnostic
	for _, d := range dl.diagnostics {
		if d.Severity == Warning {
			warnings = append(warnings, d)
		}
	}
	return warnings
}

// Count returns the total number of diagnostics.
func (dl *DiagnosticList) Count() int {
	return len(dl.diagnostics)
}

// ErrorCount returns the number of error-level diagnostics.
func (dl *DiagnosticList) ErrorCount() int {
	count := 0
	for _, d := range dl.diagnostics {
		if d.Severity == Error {
			count++
		}
	}
	return count
}

// Format formats all diagnostics as a human-readable string.
func (dl *DiagnosticList) Format() string {
	if len(dl.diagnostics) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, d := range dl.diagnostics {
		sb.WriteString(dl.FormatDiagnostic(&d))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatDiagnostic formats a single diagnostic with source context.
func (dl *DiagnosticList) FormatDiagnostic(d *Diagnostic) string {
	var sb strings.Builder

	// Main error line
	sb.WriteString(fmt.Sprintf("%d:%d: %s: %s\n",
		d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Message))

	// Add source context
	sourceLine := dl.getSourceLine(d.Range.Start.Line)
	if sourceLine != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", sourceLine))
		// Add caret indicator
		caret := strings.Repeat(" ", d.Range.Start.Column-1+4) + "^"
		if d.Range.End.Line == d.Range.Start.Line && d.Range.End.Column > d.Range.Start.Column {
			caret += strings.Repeat("~", d.Range.End.Column-d.Range.Start.Column-1)
		}
		sb.WriteString(caret)
		sb.WriteByte('\n')
	}

	// Add related info
	for _, rel := range d.Related {
		sb.WriteString(fmt.Sprintf("  %d:%d: note: %s\n",
			rel.Range.Start.Line, rel.Range.Start.Column, rel.Message))
	}

	return sb.String()
}

// getSourceLine returns the source code line at the given 1-based line number.
func (dl *DiagnosticList) getSourceLine(line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(dl.source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// Clear removes all diagnostics.
func (dl *DiagnosticList) Clear() {
	dl.diagnostics = dl.diagnostics[:0]
	dl.hasErrors = false
}

// DiagnosticCode names a Cb error kind. These map directly onto the
// error-kind taxonomy the interpreter's error values carry; the string
// form is what a diagnostic's Code field holds so a test or a --debug
// trace can match on kind without string-matching the message text.
type DiagnosticCode string

const (
	// Lexing/parsing.
	CodeParseError DiagnosticCode = "parse-error"

	// Name resolution.
	CodeUndefinedVariable DiagnosticCode = "undefined-variable"
	CodeUndefinedFunction DiagnosticCode = "undefined-function"

	// Typing.
	CodeTypeMismatch    DiagnosticCode = "type-mismatch"
	CodeTypeRangeError  DiagnosticCode = "type-range-error"
	CodeDivisionByZero  DiagnosticCode = "division-by-zero"

	// Mutability.
	CodeConstReassign    DiagnosticCode = "const-reassign"
	CodeConstArrayAssign DiagnosticCode = "const-array-assign"

	// Arrays and strings.
	CodeArrayOutOfBounds        DiagnosticCode = "array-out-of-bounds"
	CodeStringOutOfBounds       DiagnosticCode = "string-out-of-bounds"
	CodeArrayShapeMismatch      DiagnosticCode = "array-shape-mismatch"
	CodeDynamicArrayNotSupported DiagnosticCode = "dynamic-array-not-supported"

	// Structs, unions, interfaces.
	CodeUnknownStructMember       DiagnosticCode = "unknown-struct-member"
	CodeTooManyInitializers       DiagnosticCode = "too-many-initializers"
	CodePrivateMemberAccess       DiagnosticCode = "private-member-access"
	CodeStructCycleError          DiagnosticCode = "struct-cycle-error"
	CodeUnionConstraintViolation  DiagnosticCode = "union-constraint-violation"

	// Program entry and calls.
	CodeMainNotFound            DiagnosticCode = "main-not-found"
	CodeArgumentCountMismatch   DiagnosticCode = "argument-count-mismatch"
	CodeMaxCallDepthExceeded    DiagnosticCode = "max-call-depth-exceeded"

	// Assertions.
	CodeAssertionFailed DiagnosticCode = "assertion-failed"
)

// DiagnosticFilter controls which diagnostics are reported.
type DiagnosticFilter struct {
	// Rules maps diagnostic rule names to their severity override.
	// A nil value means use default severity.
	// Special severity "off" disables the diagnostic.
	Rules map[string]Severity
}

// NewDiagnosticFilter creates a new filter with default settings.
func NewDiagnosticFilter() *DiagnosticFilter {
	return &DiagnosticFilter{
		Rules: make(map[string]Severity),
	}
}

// SetRule sets the severity for a diagnostic rule.
func (f *DiagnosticFilter) SetRule(rule string, severity Severity) {
	f.Rules[rule] = severity
}

// DisableRule disables a diagnostic rule.
func (f *DiagnosticFilter) DisableRule(rule string) {
	// Use a special sentinel value to indicate disabled
	f.Rules[rule] = Severity(255)
}

// IsDisabled returns true if the rule is disabled.
func (f *DiagnosticFilter) IsDisabled(rule string) bool {
	if sev, ok := f.Rules[rule]; ok {
		return sev == Severity(255)
	}
	return false
}

// GetSeverity returns the severity for a rule, or the default if not set.
func (f *DiagnosticFilter) GetSeverity(rule string, defaultSev Severity) Severity {
	if sev, ok := f.Rules[rule]; ok {
		if sev == Severity(255) {
			return defaultSev // Return default for disabled (caller should check IsDisabled first)
		}
		return sev
	}
	return defaultSev
}

// Standard diagnostic rules. These gate optional warnings the driver
// can downgrade or silence via a DiagnosticFilter, distinct from the
// DiagnosticCode values above, which classify hard interpreter errors.
const (
	RuleUnreachableFunction = "unreachable_function"
	RuleUnusedVariable      = "unused_variable"
)
