package core

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

type TokenKind int

const (
	UNKNOWN TokenKind = iota

	// single-character tokens
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	COMMA
	DOT
	MINUS
	PLUS
	SEMICOLON
	SLASH
	STAR

	// one or two character tokens
	BANG
	BANG_EQUAL
	EQUAL
	EQUAL_EQUAL
	GREATER
	GREATER_EQUAL
	LESS
	LESS_EQUAL

	// literals
	IDENTIFIER
	STRING
	NUMBER

	// keywords
	AND
	CLASS
	ELSE
	FALSE
	FUN
	FOR
	IF
	NIL
	OR
	PRINT
	RETURN
	SUPER
	THIS
	TRUE
	VAR
	WHILE

	EOF
)

var keywords = map[string]TokenKind{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"fun":    FUN,
	"for":    FOR,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

func (k TokenKind) String() string {
	switch k {
	case LEFT_PAREN:
		return "("
	case RIGHT_PAREN:
		return ")"
	case LEFT_BRACE:
		return "{"
	case RIGHT_BRACE:
		return "}"
	case COMMA:
		return ","
	case DOT:
		return "."
	case MINUS:
		return "-"
	case PLUS:
		return "+"
	case SEMICOLON:
		return ";"
	case SLASH:
		return "/"
	case STAR:
		return "*"

	case BANG:
		return "!"
	case BANG_EQUAL:
		return "!="
	case EQUAL:
		return "="
	case EQUAL_EQUAL:
		return "=="
	case GREATER:
		return ">"
	case GREATER_EQUAL:
		return ">="
	case LESS:
		return "<"
	case LESS_EQUAL:
		return "<="

	case IDENTIFIER:
		return "identifier"
	case STRING:
		return "string"
	case NUMBER:
		return "number"

	case AND:
		return "and"
	case CLASS:
		return "class"
	case ELSE:
		return "else"
	case FALSE:
		return "false"
	case FUN:
		return "fun"
	case FOR:
		return "for"
	case IF:
		return "if"
	case NIL:
		return "nil"
	case OR:
		return "or"
	case PRINT:
		return "print"
	case RETURN:
		return "return"
	case SUPER:
		return "super"
	case THIS:
		return "this"
	case TRUE:
		return "true"
	case VAR:
		return "var"
	case WHILE:
		return "while"

	case EOF:
		return "<eof>"
	default:
		return "<unknown>"
	}
}

// IsKeyword reports whether k is one of the reserved words.
func (k TokenKind) IsKeyword() bool {
	return k >= AND && k <= WHILE
}

// Token is one lexical unit. Literal holds the decoded value of NUMBER and
// STRING tokens and is nil otherwise. Offset counts runes from the start of
// the source.
type Token struct {
	Kind    TokenKind
	Lexeme  string
	Literal Value
	Line    int
	Offset  int
}

func (t Token) String() string {
	switch t.Kind {
	case IDENTIFIER:
		return fmt.Sprintf("var(%s)", t.Lexeme)
	case STRING:
		return fmt.Sprintf("string(%s)", t.Lexeme)
	case NUMBER:
		return fmt.Sprintf("number(%s)", t.Lexeme)
	default:
		return t.Kind.String()
	}
}

type LexErrorKind int

const (
	UnknownCharacter LexErrorKind = iota
	UnterminatedString
	UnterminatedNumber
	UnterminatedComment
)

func (k LexErrorKind) String() string {
	switch k {
	case UnknownCharacter:
		return "UnknownCharacter"
	case UnterminatedString:
		return "UnterminatedString"
	case UnterminatedNumber:
		return "UnterminatedNumber"
	case UnterminatedComment:
		return "UnterminatedComment"
	default:
		return "LexError"
	}
}

// LexError is the first lexical error found in a source. Line and Offset
// locate the start of the offending lexeme.
type LexError struct {
	Kind   LexErrorKind
	Line   int
	Offset int
	Lexeme string
}

func (e *LexError) Message() string {
	switch e.Kind {
	case UnknownCharacter:
		return "Unexpected character."
	case UnterminatedString:
		return "Unterminated string."
	case UnterminatedNumber:
		return "Unterminated number."
	case UnterminatedComment:
		return "Unterminated block comment."
	default:
		return "Invalid token."
	}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("Lex error [line %d]: %s (%q)", e.Line, e.Message(), e.Lexeme)
}

type tokenizer struct {
	source    []rune
	start     int
	index     int
	line      int
	startLine int
	tokens    []Token
}

func NewTokenizer(source string) tokenizer {
	return tokenizer{
		source: []rune(source),
		line:   1,
		tokens: []Token{},
	}
}

func (t *tokenizer) isEOF() bool {
	return t.index >= len(t.source)
}

func (t *tokenizer) next() rune {
	char := t.source[t.index]
	t.index++

	if char == '\n' {
		t.line++
	}

	return char
}

func (t *tokenizer) peek() rune {
	if t.isEOF() {
		return 0
	}
	return t.source[t.index]
}

func (t *tokenizer) peekAhead(n int) rune {
	if t.index+n >= len(t.source) {
		return 0
	}

	return t.source[t.index+n]
}

func (t *tokenizer) match(expected rune) bool {
	if t.isEOF() || t.source[t.index] != expected {
		return false
	}
	t.next()
	return true
}

func (t *tokenizer) lexeme() string {
	return string(t.source[t.start:t.index])
}

func (t *tokenizer) emit(kind TokenKind, literal Value) {
	t.tokens = append(t.tokens, Token{
		Kind:    kind,
		Lexeme:  t.lexeme(),
		Literal: literal,
		Line:    t.startLine,
		Offset:  t.start,
	})
}

func (t *tokenizer) fail(kind LexErrorKind) *LexError {
	return &LexError{Kind: kind, Line: t.startLine, Offset: t.start, Lexeme: t.lexeme()}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (t *tokenizer) readString() error {
	for !t.isEOF() && t.peek() != '"' {
		t.next()
	}

	if t.isEOF() {
		return t.fail(UnterminatedString)
	}

	t.next() // closing quote
	value := string(t.source[t.start+1 : t.index-1])
	t.emit(STRING, StringValue(value))
	return nil
}

func (t *tokenizer) readNumber() error {
	for isDigit(t.peek()) {
		t.next()
	}

	if t.peek() == '.' {
		t.next()
		if !isDigit(t.peek()) {
			return t.fail(UnterminatedNumber)
		}
		for isDigit(t.peek()) {
			t.next()
		}
	}

	// out of range literals are still numbers; ParseFloat gives them as ±Inf
	f, err := strconv.ParseFloat(t.lexeme(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return t.fail(UnterminatedNumber)
	}
	t.emit(NUMBER, NumberValue(f))
	return nil
}

func (t *tokenizer) readIdentifier() {
	for unicode.IsLetter(t.peek()) || isDigit(t.peek()) {
		t.next()
	}

	if kind, ok := keywords[t.lexeme()]; ok {
		t.emit(kind, nil)
		return
	}
	t.emit(IDENTIFIER, nil)
}

func (t *tokenizer) skipBlockComment() error {
	for {
		if t.isEOF() {
			return t.fail(UnterminatedComment)
		}
		if t.peek() == '*' && t.peekAhead(1) == '/' {
			t.next()
			t.next()
			return nil
		}
		t.next()
	}
}

func (t *tokenizer) nextToken() error {
	ch := t.next()

	switch ch {
	case '(':
		t.emit(LEFT_PAREN, nil)
	case ')':
		t.emit(RIGHT_PAREN, nil)
	case '{':
		t.emit(LEFT_BRACE, nil)
	case '}':
		t.emit(RIGHT_BRACE, nil)
	case ',':
		t.emit(COMMA, nil)
	case '.':
		t.emit(DOT, nil)
	case '-':
		t.emit(MINUS, nil)
	case '+':
		t.emit(PLUS, nil)
	case ';':
		t.emit(SEMICOLON, nil)
	case '*':
		t.emit(STAR, nil)

	case '!':
		if t.match('=') {
			t.emit(BANG_EQUAL, nil)
		} else {
			t.emit(BANG, nil)
		}
	case '=':
		if t.match('=') {
			t.emit(EQUAL_EQUAL, nil)
		} else {
			t.emit(EQUAL, nil)
		}
	case '<':
		if t.match('=') {
			t.emit(LESS_EQUAL, nil)
		} else {
			t.emit(LESS, nil)
		}
	case '>':
		if t.match('=') {
			t.emit(GREATER_EQUAL, nil)
		} else {
			t.emit(GREATER, nil)
		}

	case '/':
		if t.match('/') {
			for !t.isEOF() && t.peek() != '\n' {
				t.next()
			}
		} else if t.match('*') {
			return t.skipBlockComment()
		} else {
			t.emit(SLASH, nil)
		}

	case ' ', '\r', '\t', '\n':
		// line counting happens in next()

	case '"':
		return t.readString()

	default:
		switch {
		case isDigit(ch):
			return t.readNumber()
		case unicode.IsLetter(ch):
			t.readIdentifier()
		default:
			return t.fail(UnknownCharacter)
		}
	}

	return nil
}

// Tokenize scans the whole source. The returned slice always ends with a
// single EOF token unless an error is returned, in which case it holds the
// tokens scanned before the error.
func (t *tokenizer) Tokenize() ([]Token, error) {
	for !t.isEOF() {
		t.start = t.index
		t.startLine = t.line
		if err := t.nextToken(); err != nil {
			return t.tokens, err
		}
	}

	t.tokens = append(t.tokens, Token{
		Kind:   EOF,
		Line:   t.line,
		Offset: len(t.source),
	})

	return t.tokens, nil
}
