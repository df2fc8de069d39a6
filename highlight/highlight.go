// Package highlight colours source text using the interpreter's own lexer,
// so what is highlighted is exactly what the interpreter will see.
package highlight

import (
	"errors"
	"io"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/styles"

	"github.com/ajkachnic/lox/core"
)

const (
	DefaultStyle     = "monokai"
	DefaultFormatter = "terminal256"
)

type Highlighter struct {
	formatter chroma.Formatter
	style     *chroma.Style
}

// New looks up a chroma style and formatter by name. Unknown names fall back
// to chroma's defaults.
func New(style, formatter string) *Highlighter {
	if style == "" {
		style = DefaultStyle
	}
	if formatter == "" {
		formatter = DefaultFormatter
	}

	return &Highlighter{
		formatter: formatters.Get(formatter),
		style:     styles.Get(style),
	}
}

func (h *Highlighter) Write(w io.Writer, source string) error {
	return h.formatter.Format(w, h.style, chroma.Literator(Tokens(source)...))
}

// String returns source highlighted, or unchanged if formatting failed.
func (h *Highlighter) String(source string) string {
	builder := strings.Builder{}
	if err := h.Write(&builder, source); err != nil {
		return source
	}
	return builder.String()
}

// Tokens splits source into chroma tokens. Concatenating the values gives
// back source exactly: whitespace and comments the lexer drops are kept as
// Text and Comment tokens, and input after a lexical error is kept too.
func Tokens(source string) []chroma.Token {
	runes := []rune(source)
	tokens, err := core.Scan(source)

	out := []chroma.Token{}
	i := 0
	prev := core.UNKNOWN

	for _, tok := range tokens {
		if tok.Kind == core.EOF {
			break
		}
		if tok.Offset > i {
			out = append(out, gap(string(runes[i:tok.Offset]))...)
		}

		typ := tokenType(tok.Kind)
		if tok.Kind == core.IDENTIFIER && prev == core.FUN {
			typ = chroma.NameFunction
		}
		out = append(out, chroma.Token{Type: typ, Value: tok.Lexeme})

		i = tok.Offset + len([]rune(tok.Lexeme))
		prev = tok.Kind
	}

	var lexErr *core.LexError
	if errors.As(err, &lexErr) && lexErr.Offset >= i {
		if lexErr.Offset > i {
			out = append(out, gap(string(runes[i:lexErr.Offset]))...)
		}
		out = append(out, chroma.Token{Type: errorType(lexErr.Kind), Value: lexErr.Lexeme})
		i = lexErr.Offset + len([]rune(lexErr.Lexeme))
	}

	if i < len(runes) {
		rest := string(runes[i:])
		if err != nil {
			out = append(out, chroma.Token{Type: chroma.Text, Value: rest})
		} else {
			out = append(out, gap(rest)...)
		}
	}

	return out
}

// gap splits the text between two tokens into whitespace and comments.
func gap(text string) []chroma.Token {
	out := []chroma.Token{}

	for text != "" {
		var end int
		var typ chroma.TokenType

		switch {
		case strings.HasPrefix(text, "//"):
			typ = chroma.CommentSingle
			end = strings.IndexByte(text, '\n')
			if end < 0 {
				end = len(text)
			}
		case strings.HasPrefix(text, "/*"):
			typ = chroma.CommentMultiline
			end = strings.Index(text[2:], "*/")
			if end < 0 {
				end = len(text)
			} else {
				end += 4
			}
		default:
			typ = chroma.Text
			end = strings.IndexByte(text, '/')
			if end < 0 {
				end = len(text)
			} else if end == 0 {
				end = 1
			}
		}

		out = append(out, chroma.Token{Type: typ, Value: text[:end]})
		text = text[end:]
	}

	return out
}

func tokenType(kind core.TokenKind) chroma.TokenType {
	switch kind {
	case core.TRUE, core.FALSE, core.NIL:
		return chroma.KeywordConstant
	case core.VAR, core.FUN, core.CLASS:
		return chroma.KeywordDeclaration
	case core.IDENTIFIER:
		return chroma.Name
	case core.STRING:
		return chroma.LiteralString
	case core.NUMBER:
		return chroma.LiteralNumber
	case core.LEFT_PAREN, core.RIGHT_PAREN, core.LEFT_BRACE, core.RIGHT_BRACE,
		core.COMMA, core.DOT, core.SEMICOLON:
		return chroma.Punctuation
	}

	if kind.IsKeyword() {
		return chroma.Keyword
	}
	return chroma.Operator
}

func errorType(kind core.LexErrorKind) chroma.TokenType {
	switch kind {
	case core.UnterminatedString:
		return chroma.LiteralString
	case core.UnterminatedComment:
		return chroma.CommentMultiline
	case core.UnterminatedNumber:
		return chroma.LiteralNumber
	default:
		return chroma.Error
	}
}
