package core

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func scanError(t *testing.T, source string) *LexError {
	t.Helper()
	_, err := Scan(source)
	require.Error(t, err)

	var lexErr *LexError
	require.True(t, errors.As(err, &lexErr))
	return lexErr
}

func TestScanArithmetic(t *testing.T) {
	tokens, err := Scan("1+2")
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{NUMBER, PLUS, NUMBER, EOF}, kinds(tokens))
	assert.Equal(t, NumberValue(1), tokens[0].Literal)
	assert.Equal(t, NumberValue(2), tokens[2].Literal)
	assert.Nil(t, tokens[1].Literal)
	for _, tok := range tokens {
		assert.Equal(t, 1, tok.Line)
	}
}

func TestScanMultilineString(t *testing.T) {
	tokens, err := Scan("\"ab\ncd\"")
	require.NoError(t, err)

	require.Equal(t, []TokenKind{STRING, EOF}, kinds(tokens))
	assert.Equal(t, StringValue("ab\ncd"), tokens[0].Literal)
	assert.Equal(t, "\"ab\ncd\"", tokens[0].Lexeme)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[1].Line)
}

func TestScanNumbers(t *testing.T) {
	tokens, err := Scan("5.7 9 0.25")
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{NUMBER, NUMBER, NUMBER, EOF}, kinds(tokens))
	assert.Equal(t, NumberValue(5.7), tokens[0].Literal)
	assert.Equal(t, NumberValue(9), tokens[1].Literal)
	assert.Equal(t, NumberValue(0.25), tokens[2].Literal)
	assert.Equal(t, "5.7", tokens[0].Lexeme)
}

func TestScanNumberOutOfRange(t *testing.T) {
	huge := "1" + strings.Repeat("0", 400)
	tokens, err := Scan("print " + huge + ";")
	require.NoError(t, err)

	require.Equal(t, []TokenKind{PRINT, NUMBER, SEMICOLON, EOF}, kinds(tokens))
	assert.Equal(t, huge, tokens[1].Lexeme)
	assert.True(t, math.IsInf(float64(tokens[1].Literal.(NumberValue)), 1))
}

func TestScanEveryToken(t *testing.T) {
	source := `and class else false fun for if nil or print return super this true var while {} () // comment
/*
block comment
*/
, . - + ; * ! = != == < > / <= >= "Hello world!" 5.7 9 variable var`

	tokens, err := Scan(source)
	require.NoError(t, err)

	expected := []TokenKind{
		AND, CLASS, ELSE, FALSE, FUN, FOR, IF, NIL, OR, PRINT, RETURN, SUPER, THIS, TRUE, VAR, WHILE,
		LEFT_BRACE, RIGHT_BRACE, LEFT_PAREN, RIGHT_PAREN,
		COMMA, DOT, MINUS, PLUS, SEMICOLON, STAR, BANG, EQUAL, BANG_EQUAL, EQUAL_EQUAL,
		LESS, GREATER, SLASH, LESS_EQUAL, GREATER_EQUAL, STRING, NUMBER, NUMBER, IDENTIFIER, VAR,
		EOF,
	}
	require.Equal(t, expected, kinds(tokens))

	for i, tok := range tokens {
		if i < 20 {
			assert.Equal(t, 1, tok.Line, "token %d (%s)", i, tok)
		} else {
			assert.Equal(t, 5, tok.Line, "token %d (%s)", i, tok)
		}
	}

	str := tokens[35]
	assert.Equal(t, `"Hello world!"`, str.Lexeme)
	assert.Equal(t, StringValue("Hello world!"), str.Literal)
	assert.Equal(t, "variable", tokens[38].Lexeme)
	assert.Equal(t, "", tokens[len(tokens)-1].Lexeme)
}

func TestScanMaximalMunch(t *testing.T) {
	tokens, err := Scan("orchid or and1 <== !!=")
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{IDENTIFIER, OR, IDENTIFIER, LESS_EQUAL, EQUAL, BANG, BANG_EQUAL, EOF}, kinds(tokens))
	assert.Equal(t, "orchid", tokens[0].Lexeme)
	assert.Equal(t, "and1", tokens[2].Lexeme)
}

func TestScanComments(t *testing.T) {
	tokens, err := Scan("print 1; // one\n/* two\nthree */ print 2;")
	require.NoError(t, err)

	assert.Equal(t, []TokenKind{PRINT, NUMBER, SEMICOLON, PRINT, NUMBER, SEMICOLON, EOF}, kinds(tokens))
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 3, tokens[3].Line)
	assert.Equal(t, 3, tokens[6].Line)
}

func TestScanLineCommentAtEnd(t *testing.T) {
	tokens, err := Scan("x // trailing")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{IDENTIFIER, EOF}, kinds(tokens))
}

func TestScanOffsets(t *testing.T) {
	tokens, err := Scan("var é = \"ü\";")
	require.NoError(t, err)

	offsets := []int{}
	for _, tok := range tokens {
		offsets = append(offsets, tok.Offset)
	}
	assert.Equal(t, []int{0, 4, 6, 8, 11, 12}, offsets)
}

func TestScanUnterminatedNumber(t *testing.T) {
	err := scanError(t, "5.;")
	assert.Equal(t, UnterminatedNumber, err.Kind)
	assert.Equal(t, "5.", err.Lexeme)
	assert.Equal(t, 1, err.Line)
}

func TestScanUnknownCharacter(t *testing.T) {
	err := scanError(t, "var c = false; if(c && !c){}")
	assert.Equal(t, UnknownCharacter, err.Kind)
	assert.Equal(t, "&", err.Lexeme)
	assert.Equal(t, 1, err.Line)
	assert.Equal(t, 20, err.Offset)
}

func TestScanUnterminatedString(t *testing.T) {
	err := scanError(t, "var c = \"Hello World!;")
	assert.Equal(t, UnterminatedString, err.Kind)
	assert.Equal(t, "\"Hello World!;", err.Lexeme)
	assert.Equal(t, 1, err.Line)
}

func TestScanUnterminatedStringReportsStartLine(t *testing.T) {
	err := scanError(t, "\n\"one\ntwo")
	assert.Equal(t, UnterminatedString, err.Kind)
	assert.Equal(t, 2, err.Line)
}

func TestScanUnterminatedBlockComment(t *testing.T) {
	err := scanError(t, "var x; /* never\nclosed")
	assert.Equal(t, UnterminatedComment, err.Kind)
	assert.Equal(t, "/* never\nclosed", err.Lexeme)
}

func TestScanReturnsTokensBeforeError(t *testing.T) {
	tokens, err := Scan("var a = 1 @")
	require.Error(t, err)
	assert.Equal(t, []TokenKind{VAR, IDENTIFIER, EQUAL, NUMBER}, kinds(tokens))
}

func TestLexErrorMessage(t *testing.T) {
	err := scanError(t, "#")
	assert.Equal(t, "Unexpected character.", err.Message())
	assert.Contains(t, err.Error(), "line 1")
}
