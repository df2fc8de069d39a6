package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/reeflective/readline"

	"github.com/ajkachnic/lox/config"
	"github.com/ajkachnic/lox/core"
	"github.com/ajkachnic/lox/highlight"
)

const version = "0.1.0"

const helpMessage = `lox is a small dynamically typed scripting language.

Usage:
  lox [flags]          start a REPL, or run stdin when it is not a terminal
  lox [flags] <file>   run a script
`

const replHelp = `:help   show this message
:env    list global variables
:quit   leave the REPL
`

// exit codes follow sysexits.h
const (
	exitUsage   = 64
	exitDataErr = 65
	exitRuntime = 70
	exitIOErr   = 74
)

var debugAst = flag.Bool("debug-ast", false, "print AST")
var debugTokens = flag.Bool("debug-tokens", false, "print tokens")
var highlightOnly = flag.Bool("highlight", false, "print the script syntax highlighted instead of running it")
var trace = flag.Bool("trace", false, "log call frames to stderr")
var noColor = flag.Bool("no-color", false, "disable coloured output")
var configPath = flag.String("config", "", "settings file (default $HOME/"+config.FileName+")")

var errorColor = color.New(color.FgRed, color.Bold)
var traceColor = color.New(color.FgRed)
var valueColor = color.New(color.FgCyan)

func main() {
	flag.Usage = func() {
		fmt.Print(helpMessage)
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		errorColor.Fprintln(os.Stderr, err.Error())
		os.Exit(exitUsage)
	}

	args := flag.Args()

	switch {
	case len(args) > 1:
		flag.Usage()
		os.Exit(exitUsage)
	case len(args) == 1:
		os.Exit(runFile(cfg, args[0]))
	case isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()):
		repl(cfg)
	default:
		os.Exit(runStdin(cfg))
	}
}

func loadConfig() (config.Config, error) {
	path, explicit := *configPath, *configPath != ""
	if !explicit {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return cfg, err
	}

	// flags win over the file
	if *debugAst {
		cfg.DebugAST = true
	}
	if *debugTokens {
		cfg.DebugTokens = true
	}
	if *trace {
		cfg.Trace = true
	}
	if *noColor {
		off := false
		cfg.Color = &off
	}
	if cfg.Color != nil {
		color.NoColor = !*cfg.Color
	}

	return cfg, nil
}

func newContext(cfg config.Config, name string) core.Context {
	ctx := core.NewContext(name, os.Stdout, core.ReporterFunc(printDiagnostic))
	if cfg.Trace {
		ctx.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return ctx
}

func printDiagnostic(d core.Diagnostic) {
	where := ""
	if d.AtEnd {
		where = " at end"
	} else if d.Lexeme != "" {
		where = fmt.Sprintf(" at '%s'", d.Lexeme)
	}

	errorColor.Fprintf(os.Stderr, "[line %d] %s error%s: %s\n", d.Line, d.Kind, where, d.Message)

	var rtErr *core.RuntimeError
	if errors.As(d.Err, &rtErr) {
		for _, entry := range rtErr.Trace() {
			traceColor.Fprintln(os.Stderr, entry)
		}
	}
}

func exitCode(err error) int {
	var lexErr *core.LexError
	var parseErrs core.ParseErrors

	switch {
	case err == nil:
		return 0
	case errors.As(err, &lexErr), errors.As(err, &parseErrs):
		return exitDataErr
	default:
		return exitRuntime
	}
}

func runSource(cfg config.Config, ctx *core.Context, source string) (core.Value, int) {
	if cfg.DebugTokens {
		tokens, _ := core.Scan(source)
		for _, tok := range tokens {
			fmt.Printf("[line %d] %s\n", tok.Line, tok)
		}
	}

	if cfg.DebugAST {
		program, _ := core.Parse(source)
		for _, decl := range program {
			fmt.Println(core.Render(decl))
		}
	}

	value, err := core.Interpret(ctx, source)
	return value, exitCode(err)
}

func runFile(cfg config.Config, path string) int {
	content, err := os.ReadFile(path)
	if err != nil {
		errorColor.Fprintln(os.Stderr, err.Error())
		return exitIOErr
	}

	if *highlightOnly {
		h := highlight.New(cfg.Style, "")
		if err := h.Write(os.Stdout, string(content)); err != nil {
			errorColor.Fprintln(os.Stderr, err.Error())
			return exitIOErr
		}
		return 0
	}

	ctx := newContext(cfg, path)
	_, code := runSource(cfg, &ctx, string(content))
	return code
}

func runStdin(cfg config.Config) int {
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		errorColor.Fprintln(os.Stderr, err.Error())
		return exitIOErr
	}

	ctx := newContext(cfg, "<stdin>")
	_, code := runSource(cfg, &ctx, string(content))
	return code
}

func repl(cfg config.Config) {
	pending := strings.Builder{}

	rl := readline.NewShell()
	rl.Prompt.Primary(func() string {
		if pending.Len() > 0 {
			return cfg.ContinuationPrompt
		}
		return cfg.Prompt
	})
	if !color.NoColor {
		h := highlight.New(cfg.Style, "")
		rl.SyntaxHighlighter = func(line []rune) string {
			return h.String(string(line))
		}
	}

	ctx := newContext(cfg, "<stdin>")

	fmt.Printf("lox %s. Type :help for help.\n", version)

	for {
		text, err := rl.Readline()

		if err == io.EOF {
			break
		} else if errors.Is(err, readline.ErrInterrupt) {
			// ^C drops whatever is pending
			pending.Reset()
			continue
		} else if err != nil {
			fmt.Println(err)
			break
		}

		if pending.Len() == 0 && strings.HasPrefix(strings.TrimSpace(text), ":") {
			if quit := command(&ctx, strings.TrimSpace(text)); quit {
				break
			}
			continue
		}

		if pending.Len() > 0 {
			pending.WriteByte('\n')
		}
		pending.WriteString(text)

		// an empty line submits whatever is pending
		source := pending.String()
		if strings.TrimSpace(text) != "" && core.IsIncomplete(source) {
			continue
		}
		pending.Reset()

		if strings.TrimSpace(source) == "" {
			continue
		}

		value, _ := runSource(cfg, &ctx, source)
		if value != nil {
			valueColor.Println(display(value))
		}
	}
}

// command runs a REPL meta-command and reports whether the REPL should stop.
func command(ctx *core.Context, text string) bool {
	switch strings.ToLower(text) {
	case ":quit", ":q":
		return true
	case ":env":
		for _, name := range ctx.Globals.Names() {
			value, _ := ctx.Globals.Lookup(name)
			fmt.Printf("%s = %s\n", name, display(value))
		}
	case ":help":
		fmt.Print(replHelp)
	default:
		fmt.Printf("unknown command %s. Type :help for help.\n", text)
	}
	return false
}

func display(value core.Value) string {
	if s, ok := value.(core.StringValue); ok {
		return s.Quote()
	}
	return value.String()
}
