// Package diag implements the diagnostic bus shared by every compilation
// stage (spec §6.5): a flat list of leveled records with source spans, sorted
// before being handed to a host for rendering.
package diag

import (
	"fmt"
	"sort"

	"github.com/via-lang/via/lang/token"
)

// Level is the severity of a diagnostic record.
type Level uint8

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Record is one diagnostic, as produced by the lexer, parser, semantic pass,
// or codegen. Rendering (colorization, underlining source) is a host
// concern, not the core's (spec §1).
type Record struct {
	Level   Level
	Message string
	Span    token.Span
}

func (r Record) String() string {
	if r.Span.Valid() {
		return fmt.Sprintf("%s: %s: %s", r.Span, r.Level, r.Message)
	}
	return fmt.Sprintf("%s: %s", r.Level, r.Message)
}

func (r Record) Error() string { return r.String() }

// Bag accumulates diagnostics for one compilation. It is safe to pass by
// pointer through every stage of the pipeline; nothing about it is global.
type Bag struct {
	records []Record
}

// Add appends a diagnostic at the given level.
func (b *Bag) Add(level Level, span token.Span, format string, args ...any) {
	b.records = append(b.records, Record{Level: level, Message: fmt.Sprintf(format, args...), Span: span})
}

// Errorf is shorthand for Add(Error, ...).
func (b *Bag) Errorf(span token.Span, format string, args ...any) {
	b.Add(Error, span, format, args...)
}

// Internal records a codegen-bug diagnostic (spec §7, "internal compiler
// error"), for conditions the semantic pass should never let through but
// that a defensive codegen check caught anyway.
func (b *Bag) Internal(span token.Span, format string, args ...any) {
	b.Add(Error, span, "internal compiler error: "+format, args...)
}

// Records returns the accumulated diagnostics in insertion order.
func (b *Bag) Records() []Record { return b.records }

// HasErrors reports whether any Error-level record was added.
func (b *Bag) HasErrors() bool {
	for _, r := range b.records {
		if r.Level == Error {
			return true
		}
	}
	return false
}

// Sort orders records by span (line, then column), matching the
// go/scanner.ErrorList convention the teacher repo's scanner and parser
// packages rely on for stable, readable diagnostic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.records, func(i, j int) bool {
		si, sj := b.records[i].Span, b.records[j].Span
		if si.Line != sj.Line {
			return si.Line < sj.Line
		}
		return si.Col < sj.Col
	})
}

// Err returns nil if the bag has no Error-level records, otherwise an error
// whose Unwrap() []error exposes each Error-level record individually.
func (b *Bag) Err() error {
	var errs []error
	for _, r := range b.records {
		if r.Level == Error {
			rec := r
			errs = append(errs, rec)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &errList{errs: errs}
}

type errList struct{ errs []error }

func (e *errList) Error() string {
	if len(e.errs) == 1 {
		return e.errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more diagnostic(s))", e.errs[0], len(e.errs)-1)
}

func (e *errList) Unwrap() []error { return e.errs }
