// Package api provides the public API for running Cb source.
//
// This package is intended for programmatic use of the interpreter.
// For CLI usage, see cmd/cb.
package api

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/cb-lang/cb/internal/dce"
	"github.com/cb-lang/cb/internal/driver"
	"github.com/cb-lang/cb/internal/interp"
	"github.com/cb-lang/cb/internal/parser"
	"github.com/cb-lang/cb/internal/printer"
	"github.com/cb-lang/cb/internal/profile"
	"github.com/cb-lang/cb/internal/structure"
	"github.com/cb-lang/cb/internal/typemgr"
)

// Options controls how a run behaves.
type Options struct {
	// Debug enables an execution trace (returned in Result.Trace) and
	// a per-function call-count profile (returned in Result.Profile).
	Debug bool

	// WarnUnreachable enables the post-registration unreachable
	// function/method pass; unreachable names come back as warnings.
	WarnUnreachable bool

	// MaxCallDepth bounds recursion; 0 uses a sensible default (2000).
	MaxCallDepth int
}

// DefaultOptions returns the options used when the caller doesn't
// need anything non-default.
func DefaultOptions() Options {
	return Options{WarnUnreachable: true, MaxCallDepth: 2000}
}

// Result is everything a run produces.
type Result struct {
	// ExitCode is main's integer return value, or 0 for a void main,
	// or 1 if Err is non-nil.
	ExitCode int

	// Stdout collects everything the program printed.
	Stdout string

	// Warnings holds unreachable-function/method messages, present
	// only when Options.WarnUnreachable was set.
	Warnings []string

	// Trace holds the --debug execution trace text, present only
	// when Options.Debug was set.
	Trace string

	// Profile holds a profile.proto-encoded call-count profile,
	// present only when Options.Debug was set.
	Profile []byte

	// Errors holds syntax errors from a source file that failed to
	// parse; Err is nil in that case (there's no single fatal error,
	// just a list of parse diagnostics).
	Errors []string

	// Err is the fatal runtime error that stopped the program, if
	// any — nil on a successful run or a parse failure.
	Err error
}

// Run parses and executes source (named fileName for diagnostics) and
// returns everything the run produced.
func Run(fileName, source string, opts Options) Result {
	p := parser.New(fileName, source)
	program, perrs := p.Parse()
	if len(perrs) > 0 {
		msgs := make([]string, len(perrs))
		for i, e := range perrs {
			msgs[i] = e.Error()
		}
		return Result{ExitCode: 1, Errors: msgs}
	}

	maxCallDepth := opts.MaxCallDepth
	if maxCallDepth <= 0 {
		maxCallDepth = 2000
	}

	var stdout bytes.Buffer
	var trace bytes.Buffer
	var tracer *printer.Tracer
	if opts.Debug {
		tracer = printer.New(&trace, printer.Options{Enabled: true})
	} else {
		tracer = printer.New(io.Discard, printer.Options{Enabled: false})
	}

	types := typemgr.New()
	structs := structure.New()
	in := interp.New(types, structs, tracer, &stdout, maxCallDepth, fileName, source)
	if opts.Debug {
		in.Profiler = profile.New()
	}

	if err := driver.RegisterGlobals(in, types, structs, program); err != nil {
		return Result{ExitCode: 1, Stdout: stdout.String(), Err: err}
	}

	var warnings []string
	if opts.WarnUnreachable {
		for _, name := range dce.FindUnreachable(program) {
			warnings = append(warnings, fmt.Sprintf("warning: %q is never reached from main", name))
		}
	}

	exitCode, err := driver.RunMain(in)
	result := Result{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Warnings: warnings,
		Err:      err,
	}
	if opts.Debug {
		result.Trace = trace.String()
		var profBuf bytes.Buffer
		if werr := in.Profiler.Write(&profBuf); werr == nil {
			result.Profile = profBuf.Bytes()
		}
	}
	return result
}

// FormatErrors joins Result.Errors (parse failures) into one
// newline-separated string, for a caller that just wants to print them.
func (r Result) FormatErrors() string {
	return strings.Join(r.Errors, "\n")
}
