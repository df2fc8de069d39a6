package core

import (
	"errors"
	"log/slog"
)

func Scan(source string) ([]Token, error) {
	tokenizer := NewTokenizer(source)
	return tokenizer.Tokenize()
}

// Parse returns every declaration that parsed. The error is a *LexError when
// scanning failed (no declarations) or ParseErrors when some declarations
// were skipped.
func Parse(source string) ([]Decl, error) {
	tokens, err := Scan(source)
	if err != nil {
		return nil, err
	}

	parser := NewParser(tokens)
	program, errs := parser.parse()
	if len(errs) > 0 {
		return program, errs
	}
	return program, nil
}

// Execute runs program against ctx.Globals. The value returned is that of the
// last declaration when it was an expression statement, and nil otherwise.
// A runtime error stops execution; bindings made before it remain.
func Execute(ctx *Context, program []Decl) (Value, error) {
	ev := newEvaluator(ctx)

	var last Value
	for _, decl := range program {
		last = nil

		if expr, ok := decl.(Expr); ok {
			value, err := ev.evaluate(expr, ctx.Globals)
			if err != nil {
				return nil, err
			}
			last = value
			continue
		}

		out, err := ev.execute(decl, ctx.Globals)
		if err != nil {
			return nil, err
		}
		if out.returning {
			return nil, newRuntimeError(TopLevelReturn, out.keyword, "Can't return from top-level code.")
		}
	}

	return last, nil
}

// Interpret scans, parses and executes source, reporting every problem to
// ctx.Reporter before returning it. Nothing executes when the source has a
// lexical or syntax error.
func Interpret(ctx *Context, source string) (Value, error) {
	program, err := Parse(source)
	if err != nil {
		report(ctx, err)
		return nil, err
	}

	ctx.Logger.Debug("parsed", slog.String("name", ctx.Name), slog.Int("declarations", len(program)))

	value, err := Execute(ctx, program)
	if err != nil {
		report(ctx, err)
		return nil, err
	}
	return value, nil
}

func report(ctx *Context, err error) {
	for _, d := range Diagnostics(err) {
		ctx.Reporter.Report(d)
	}
}

// IsIncomplete reports whether source stops in the middle of something: an
// open string or block comment, or a construct the parser needed more tokens
// to finish.
func IsIncomplete(source string) bool {
	tokens, err := Scan(source)
	if err != nil {
		var lexErr *LexError
		return errors.As(err, &lexErr) &&
			(lexErr.Kind == UnterminatedString || lexErr.Kind == UnterminatedComment)
	}

	parser := NewParser(tokens)
	_, errs := parser.parse()
	for _, e := range errs {
		if e.Token.Kind == EOF {
			return true
		}
	}
	return false
}
