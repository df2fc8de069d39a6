package core

import (
	"errors"
)

type DiagnosticKind int

const (
	LexicalDiagnostic DiagnosticKind = iota
	SyntaxDiagnostic
	RuntimeDiagnostic
)

func (k DiagnosticKind) String() string {
	switch k {
	case LexicalDiagnostic:
		return "lexical"
	case SyntaxDiagnostic:
		return "syntax"
	case RuntimeDiagnostic:
		return "runtime"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem. Lexeme and AtEnd describe where on the
// line it happened; turning them into text is up to the reporter.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int
	Lexeme  string
	AtEnd   bool
	Message string

	// Err is the error the diagnostic was built from.
	Err error
}

type Reporter interface {
	Report(d Diagnostic)
}

type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) {
	f(d)
}

// DiagnosticList collects everything reported to it.
type DiagnosticList struct {
	Diagnostics []Diagnostic
}

func (l *DiagnosticList) Report(d Diagnostic) {
	l.Diagnostics = append(l.Diagnostics, d)
}

func (l *DiagnosticList) Messages() []string {
	msgs := make([]string, len(l.Diagnostics))
	for i, d := range l.Diagnostics {
		msgs[i] = d.Message
	}
	return msgs
}

// Diagnostics converts an error returned by this package into the
// diagnostics it stands for. Unknown errors yield nothing.
func Diagnostics(err error) []Diagnostic {
	var lexErr *LexError
	var parseErrs ParseErrors
	var parseErr *ParseError
	var rtErr *RuntimeError

	switch {
	case errors.As(err, &lexErr):
		return []Diagnostic{{
			Kind:    LexicalDiagnostic,
			Line:    lexErr.Line,
			Lexeme:  lexErr.Lexeme,
			Message: lexErr.Message(),
			Err:     lexErr,
		}}
	case errors.As(err, &parseErrs):
		diags := make([]Diagnostic, 0, len(parseErrs))
		for _, e := range parseErrs {
			diags = append(diags, syntaxDiagnostic(e))
		}
		return diags
	case errors.As(err, &parseErr):
		return []Diagnostic{syntaxDiagnostic(parseErr)}
	case errors.As(err, &rtErr):
		return []Diagnostic{{
			Kind:    RuntimeDiagnostic,
			Line:    rtErr.Token.Line,
			Lexeme:  rtErr.Token.Lexeme,
			AtEnd:   rtErr.Token.Kind == EOF,
			Message: rtErr.Reason,
			Err:     rtErr,
		}}
	default:
		return nil
	}
}

func syntaxDiagnostic(e *ParseError) Diagnostic {
	return Diagnostic{
		Kind:    SyntaxDiagnostic,
		Line:    e.Token.Line,
		Lexeme:  e.Token.Lexeme,
		AtEnd:   e.Token.Kind == EOF,
		Message: e.Reason,
		Err:     e,
	}
}
