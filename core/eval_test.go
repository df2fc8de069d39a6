package core

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	ctx         Context
	out         *strings.Builder
	diagnostics *DiagnosticList
}

func newSession() *session {
	out := &strings.Builder{}
	diagnostics := &DiagnosticList{}
	return &session{
		ctx:         NewContext("test", out, diagnostics),
		out:         out,
		diagnostics: diagnostics,
	}
}

func (s *session) run(source string) (Value, error) {
	return Interpret(&s.ctx, source)
}

// lines returns what has been printed so far and clears it.
func (s *session) lines() []string {
	text := s.out.String()
	s.out.Reset()
	if text == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func run(t *testing.T, source string) []string {
	t.Helper()
	s := newSession()
	_, err := s.run(source)
	require.NoError(t, err)
	return s.lines()
}

func runError(t *testing.T, source string) (*RuntimeError, []string) {
	t.Helper()
	s := newSession()
	_, err := s.run(source)
	return runtimeError(t, err), s.lines()
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"print 1 + 2 * 3;", "7"},
		{"print (1 + 2) * 3;", "9"},
		{"print 10 - 4 - 3;", "3"},
		{"print 7 / 2;", "3.5"},
		{"print -(3);", "-3"},
		{"print --3;", "3"},
		{"print 0.1 + 0.2;", "0.30000000000000004"},
		{"print 1 / 0;", "+Inf"},
		{"print 3.0;", "3"},
		{"print 2.50;", "2.5"},
		{"print 100000000000 * 100000000000;", "1e+22"},
	}

	for _, test := range tests {
		t.Run(test.source, func(t *testing.T) {
			assert.Equal(t, []string{test.expected}, run(t, test.source))
		})
	}
}

func TestEvalComparisonAndEquality(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"print 1 < 2;", "true"},
		{"print 2 <= 2;", "true"},
		{"print 1 > 2;", "false"},
		{"print 3 >= 4;", "false"},
		{"print 1 == 1;", "true"},
		{"print 1 == \"1\";", "false"},
		{"print \"a\" == \"a\";", "true"},
		{"print nil == nil;", "true"},
		{"print nil == false;", "false"},
		{"print true != false;", "true"},
		{"print \"a\" != \"b\";", "true"},
	}

	for _, test := range tests {
		t.Run(test.source, func(t *testing.T) {
			assert.Equal(t, []string{test.expected}, run(t, test.source))
		})
	}
}

func TestEvalTruthiness(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"print !nil;", "true"},
		{"print !false;", "true"},
		{"print !true;", "false"},
		{"print !0;", "false"},
		{"print !\"\";", "false"},
		{"fun f() {} print !f;", "false"},
		{"if (0) print \"yes\"; else print \"no\";", "yes"},
		{"if (\"\") print \"yes\"; else print \"no\";", "yes"},
		{"if (nil) print \"yes\"; else print \"no\";", "no"},
	}

	for _, test := range tests {
		t.Run(test.source, func(t *testing.T) {
			assert.Equal(t, []string{test.expected}, run(t, test.source))
		})
	}
}

func TestEvalLogicalReturnsOperand(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"print nil or \"yes\";", "yes"},
		{"print 1 or 2;", "1"},
		{"print false or nil;", "nil"},
		{"print nil and 1;", "nil"},
		{"print 1 and 2;", "2"},
		{"print false and undefined;", "false"},
		{"print true or undefined;", "true"},
	}

	for _, test := range tests {
		t.Run(test.source, func(t *testing.T) {
			assert.Equal(t, []string{test.expected}, run(t, test.source))
		})
	}
}

func TestEvalLogicalShortCircuits(t *testing.T) {
	out := run(t, `
var calls = 0;
fun touch() { calls = calls + 1; return true; }
false and touch();
true or touch();
true and touch();
print calls;
`)
	assert.Equal(t, []string{"1"}, out)
}

func TestEvalStrings(t *testing.T) {
	assert.Equal(t, []string{"foobar"}, run(t, `print "foo" + "bar";`))
	assert.Equal(t, []string{"a", "b"}, run(t, "print \"a\nb\";"))
	assert.Equal(t, []string{""}, run(t, `print "";`))
}

func TestEvalVariables(t *testing.T) {
	out := run(t, `
var a = 1;
var b;
print a;
print b;
a = b = 3;
print a;
print b;
`)
	assert.Equal(t, []string{"1", "nil", "3", "3"}, out)
}

func TestEvalVarInitializerSeesOuterBinding(t *testing.T) {
	out := run(t, `
var a = 1;
{
  var a = a + 1;
  print a;
}
print a;
`)
	assert.Equal(t, []string{"2", "1"}, out)
}

func TestEvalBlockShadowing(t *testing.T) {
	out := run(t, "var a = 1; { var a = 2; print a; } print a;")
	assert.Equal(t, []string{"2", "1"}, out)
}

func TestEvalRedeclareInSameScope(t *testing.T) {
	rtErr, _ := runError(t, "{ var a = 1; var a = 2; }")
	assert.Equal(t, VariableAlreadyDeclared, rtErr.Kind)

	rtErr, _ = runError(t, "var a = 1; var a = 2;")
	assert.Equal(t, VariableAlreadyDeclared, rtErr.Kind)

	rtErr, _ = runError(t, "fun f() {} fun f() {}")
	assert.Equal(t, VariableAlreadyDeclared, rtErr.Kind)

	out := run(t, "{ var a = 1; { var a = 2; { var a = 3; print a; } print a; } print a; }")
	assert.Equal(t, []string{"3", "2", "1"}, out)
}

func TestEvalAssignOuterFromBlock(t *testing.T) {
	out := run(t, "var a = 1; { a = 2; { a = a + 1; } } print a;")
	assert.Equal(t, []string{"3"}, out)
}

func TestEvalControlFlow(t *testing.T) {
	out := run(t, `
for (var i = 0; i < 3; i = i + 1) print i;
var n = 3;
while (n > 0) { print n; n = n - 1; }
if (n == 0) print "done"; else print "not done";
`)
	assert.Equal(t, []string{"0", "1", "2", "3", "2", "1", "done"}, out)
}

func TestEvalForScopesInitializer(t *testing.T) {
	s := newSession()
	_, err := s.run("for (var i = 0; i < 1; i = i + 1) {}")
	require.NoError(t, err)

	_, err = s.run("print i;")
	rtErr := runtimeError(t, err)
	assert.Equal(t, UndefinedVariable, rtErr.Kind)
}

func TestEvalFunctions(t *testing.T) {
	out := run(t, `
fun add(a, b) { return a + b; }
fun nothing() {}
fun early(x) { if (x) return "early"; return "late"; }
print add(1, 2);
print nothing();
print early(true);
print early(false);
print add;
`)
	assert.Equal(t, []string{"3", "nil", "early", "late", "<fn add>"}, out)
}

func TestEvalRecursion(t *testing.T) {
	out := run(t, `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(15);
`)
	assert.Equal(t, []string{"610"}, out)
}

func TestEvalReturnFromLoop(t *testing.T) {
	out := run(t, `
fun find(limit) {
  for (var i = 0; ; i = i + 1) {
    while (true) {
      if (i == limit) return i;
      i = i + 1;
    }
  }
}
print find(4);
`)
	assert.Equal(t, []string{"4"}, out)
}

func TestEvalClosureCounter(t *testing.T) {
	out := run(t, `
fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; print i; }
  return count;
}
var c = makeCounter();
c();
c();
var d = makeCounter();
d();
`)
	assert.Equal(t, []string{"1", "2", "1"}, out)
}

func TestEvalClosureOutlivesBlock(t *testing.T) {
	out := run(t, `
var f;
{
  var secret = "kept";
  fun get() { return secret; }
  f = get;
}
print f();
`)
	assert.Equal(t, []string{"kept"}, out)
}

func TestEvalLexicalScope(t *testing.T) {
	out := run(t, `
var a = "global";
fun show() { print a; }
fun caller() { var a = "local"; show(); }
caller();
{
  var a = "block";
  show();
}
`)
	assert.Equal(t, []string{"global", "global"}, out)
}

func TestEvalClosureSeesLaterMutation(t *testing.T) {
	out := run(t, `
var x = 1;
fun get() { return x; }
x = 2;
print get();
`)
	assert.Equal(t, []string{"2"}, out)
}

func TestEvalFunctionEquality(t *testing.T) {
	out := run(t, `
fun f() {}
var g = f;
fun make() { fun inner() {} return inner; }
print f == g;
print make() == make();
print f == "f";
`)
	assert.Equal(t, []string{"true", "false", "false"}, out)
}

func TestEvalArityMismatch(t *testing.T) {
	rtErr, out := runError(t, `
fun f(a, b) { print "body"; }
f(1);
`)
	assert.Equal(t, ArityMismatch, rtErr.Kind)
	assert.Equal(t, "Expected 2 arguments but got 1.", rtErr.Reason)
	assert.Equal(t, 3, rtErr.Token.Line)
	assert.Empty(t, out)
}

func TestEvalNotCallable(t *testing.T) {
	rtErr, _ := runError(t, `"str"();`)
	assert.Equal(t, NotCallable, rtErr.Kind)
	assert.Equal(t, "Can only call functions, got string.", rtErr.Reason)

	rtErr, _ = runError(t, "var x; x();")
	assert.Equal(t, NotCallable, rtErr.Kind)
	assert.Equal(t, "Can only call functions, got nil.", rtErr.Reason)
}

func TestEvalTypeErrors(t *testing.T) {
	tests := []struct {
		source string
		reason string
	}{
		{`1 + "1";`, "Operands must be numbers or strings."},
		{`"a" + nil;`, "Operands must be numbers or strings."},
		{`1 - "1";`, "Operands must be numbers."},
		{`"a" < "b";`, "Operands must be numbers."},
		{`true * 2;`, "Operands must be numbers."},
		{`-"a";`, "Operand must be a number, got string."},
		{`-nil;`, "Operand must be a number, got nil."},
	}

	for _, test := range tests {
		t.Run(test.source, func(t *testing.T) {
			rtErr, _ := runError(t, test.source)
			assert.Equal(t, TypeError, rtErr.Kind)
			assert.Equal(t, test.reason, rtErr.Reason)
		})
	}
}

func TestEvalUndefinedVariable(t *testing.T) {
	rtErr, _ := runError(t, "print missing;")
	assert.Equal(t, UndefinedVariable, rtErr.Kind)
	assert.Equal(t, "missing", rtErr.Token.Lexeme)

	rtErr, _ = runError(t, "missing = 1;")
	assert.Equal(t, UndefinedVariable, rtErr.Kind)
}

func TestEvalDuplicateParameters(t *testing.T) {
	rtErr, _ := runError(t, "fun f(a, a) {} f(1, 2);")
	assert.Equal(t, VariableAlreadyDeclared, rtErr.Kind)
}

func TestEvalParameterShadowsNothingOutside(t *testing.T) {
	out := run(t, `
var a = "outer";
fun f(a) { a = "changed"; return a; }
print f("arg");
print a;
`)
	assert.Equal(t, []string{"changed", "outer"}, out)
}

func TestEvalTopLevelReturn(t *testing.T) {
	rtErr, out := runError(t, "print 1; return 2; print 3;")
	assert.Equal(t, TopLevelReturn, rtErr.Kind)
	assert.Equal(t, "Can't return from top-level code.", rtErr.Reason)
	assert.Equal(t, []string{"1"}, out)

	rtErr, _ = runError(t, "{ return; }")
	assert.Equal(t, TopLevelReturn, rtErr.Kind)
}

func TestEvalStopsAtRuntimeError(t *testing.T) {
	rtErr, out := runError(t, `print "before"; nil + 1; print "after";`)
	assert.Equal(t, TypeError, rtErr.Kind)
	assert.Equal(t, []string{"before"}, out)
}

func TestEvalStackTrace(t *testing.T) {
	rtErr, _ := runError(t, `
fun inner() {
  return 1 + nil;
}
fun outer() {
  return inner();
}
outer();
`)
	assert.Equal(t, TypeError, rtErr.Kind)
	assert.Equal(t, 3, rtErr.Token.Line)
	assert.Equal(t, []string{"  in fn inner [line 6]", "  in fn outer [line 8]"}, rtErr.Trace())
}

func TestEvalTraceLogging(t *testing.T) {
	var logs bytes.Buffer
	s := newSession()
	s.ctx.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := s.run("fun f() { return 1; } f();")
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "push call frame")
	assert.Contains(t, logs.String(), "pop call frame")
	assert.Contains(t, logs.String(), "fn=f")
}

func TestEvalTraceLoggingOnError(t *testing.T) {
	var logs bytes.Buffer
	s := newSession()
	s.ctx.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := s.run(`
fun inner() { return nil + 1; }
fun outer() { return inner(); }
outer();
`)
	runtimeError(t, err)

	assert.Equal(t, 2, strings.Count(logs.String(), "push call frame"))
	assert.Equal(t, 2, strings.Count(logs.String(), "pop call frame"))
	assert.Contains(t, logs.String(), "failed=true")
}

func TestEvalHugeNumberLiteral(t *testing.T) {
	assert.Equal(t, []string{"+Inf"}, run(t, "print 1"+strings.Repeat("0", 400)+";"))
}
