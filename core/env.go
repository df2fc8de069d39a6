package core

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type RuntimeErrorKind int

const (
	TypeError RuntimeErrorKind = iota
	UndefinedVariable
	ArityMismatch
	NotCallable
	VariableAlreadyDeclared
	TopLevelReturn
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case TypeError:
		return "TypeError"
	case UndefinedVariable:
		return "UndefinedVariable"
	case ArityMismatch:
		return "ArityMismatch"
	case NotCallable:
		return "NotCallable"
	case VariableAlreadyDeclared:
		return "VariableAlreadyDeclared"
	case TopLevelReturn:
		return "TopLevelReturn"
	default:
		return "RuntimeError"
	}
}

type stackEntry struct {
	name string
	line int
}

func (e stackEntry) String() string {
	return fmt.Sprintf("  in fn %s [line %d]", e.name, e.line)
}

type RuntimeError struct {
	Kind   RuntimeErrorKind
	Token  Token
	Reason string

	stackTrace []stackEntry
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("Runtime error [line %d]: %s", e.Token.Line, e.Reason)
	if len(e.stackTrace) == 0 {
		return msg
	}
	return msg + "\n" + strings.Join(e.Trace(), "\n")
}

// Trace lists the calls the error unwound through, innermost first.
func (e *RuntimeError) Trace() []string {
	trace := make([]string, len(e.stackTrace))
	for i, entry := range e.stackTrace {
		trace[i] = entry.String()
	}
	return trace
}

func newRuntimeError(kind RuntimeErrorKind, tok Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Kind:   kind,
		Token:  tok,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Environment is one lexical frame. Frames are shared by pointer: a block or
// call creates a child, and closures keep whichever frame they were declared
// in alive.
type Environment struct {
	enclosing *Environment
	values    map[string]Value
	names     []string
}

func NewEnvironment() *Environment {
	return NewEnclosedEnvironment(nil)
}

func NewEnclosedEnvironment(enclosing *Environment) *Environment {
	return &Environment{
		enclosing: enclosing,
		values:    make(map[string]Value),
	}
}

func (e *Environment) Enclosing() *Environment {
	return e.enclosing
}

// Declare binds name in this frame. A nil value leaves the slot empty; it
// reads as nil.
func (e *Environment) Declare(name Token, value Value) error {
	if _, ok := e.values[name.Lexeme]; ok {
		return newRuntimeError(VariableAlreadyDeclared, name,
			"Variable '%s' is already declared in this scope.", name.Lexeme)
	}

	e.values[name.Lexeme] = value
	e.names = append(e.names, name.Lexeme)
	return nil
}

func (e *Environment) Get(name Token) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if value, ok := env.values[name.Lexeme]; ok {
			if value == nil {
				return null, nil
			}
			return value, nil
		}
	}

	return nil, newRuntimeError(UndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
}

func (e *Environment) Assign(name Token, value Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = value
			return nil
		}
	}

	return newRuntimeError(UndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
}

// Names lists the names declared in this frame in declaration order.
func (e *Environment) Names() []string {
	names := make([]string, len(e.names))
	copy(names, e.names)
	return names
}

// Lookup reads a name from this frame only.
func (e *Environment) Lookup(name string) (Value, bool) {
	value, ok := e.values[name]
	if ok && value == nil {
		return null, true
	}
	return value, ok
}

// Context is the state one run, or one whole REPL session, evaluates against.
// Reusing a Context across Interpret calls keeps the globals alive.
type Context struct {
	// "<stdin>" for the REPL, otherwise the script path
	Name string

	Globals  *Environment
	Out      io.Writer
	Reporter Reporter
	Logger   *slog.Logger
}

func NewContext(name string, out io.Writer, reporter Reporter) Context {
	if out == nil {
		out = io.Discard
	}
	if reporter == nil {
		reporter = ReporterFunc(func(Diagnostic) {})
	}

	return Context{
		Name:     name,
		Globals:  NewEnvironment(),
		Out:      out,
		Reporter: reporter,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
