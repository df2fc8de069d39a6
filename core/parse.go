package core

import (
	"errors"
	"fmt"
	"strings"
)

const maxArgs = 255

type ParseError struct {
	Token  Token
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token.Kind == EOF {
		return fmt.Sprintf("Parse error [line %d] at end: %s", e.Token.Line, e.Reason)
	}
	return fmt.Sprintf("Parse error [line %d] at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Reason)
}

// ParseErrors holds every syntax error found in one parse, in source order.
type ParseErrors []*ParseError

func (e ParseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

type parser struct {
	tokens []Token
	index  int
	errors ParseErrors
}

func NewParser(tokens []Token) parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, Token{Kind: EOF, Line: line})
	}

	return parser{
		tokens: tokens,
	}
}

func (p *parser) isEOF() bool {
	return p.peek().Kind == EOF
}

func (p *parser) peek() Token {
	return p.tokens[p.index]
}

func (p *parser) previous() Token {
	return p.tokens[p.index-1]
}

func (p *parser) next() Token {
	if !p.isEOF() {
		p.index++
	}
	return p.previous()
}

func (p *parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.next()
			return true
		}
	}
	return false
}

func (p *parser) expect(kind TokenKind, reason string) (Token, error) {
	if p.check(kind) {
		return p.next(), nil
	}
	return Token{Kind: UNKNOWN}, &ParseError{Token: p.peek(), Reason: reason}
}

// report records an error that does not stop the current declaration.
func (p *parser) report(tok Token, reason string) {
	p.errors = append(p.errors, &ParseError{Token: tok, Reason: reason})
}

// synchronize discards tokens until the start of what is probably the next
// statement.
func (p *parser) synchronize() {
	p.next()

	for !p.isEOF() {
		if p.previous().Kind == SEMICOLON {
			return
		}

		switch p.peek().Kind {
		case CLASS, FUN, VAR, FOR, IF, WHILE, PRINT, RETURN:
			return
		}

		p.next()
	}
}

func (p *parser) parse() ([]Decl, ParseErrors) {
	decls := []Decl{}

	for !p.isEOF() {
		if decl := p.declaration(); decl != nil {
			decls = append(decls, decl)
		}
	}

	return decls, p.errors
}

// declaration returns nil when the declaration failed to parse; the error has
// been recorded and the parser resynchronized.
func (p *parser) declaration() Decl {
	var decl Decl
	var err error

	switch {
	case p.match(VAR):
		decl, err = p.varDeclaration()
	case p.match(FUN):
		decl, err = p.funDeclaration()
	default:
		decl, err = p.statement()
	}

	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			p.errors = append(p.errors, perr)
		} else {
			p.errors = append(p.errors, &ParseError{Token: p.peek(), Reason: err.Error()})
		}
		p.synchronize()
		return nil
	}

	return decl
}

func (p *parser) varDeclaration() (Decl, error) {
	name, err := p.expect(IDENTIFIER, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	node := &VarDecl{Name: name}
	if p.match(EQUAL) {
		if node.Init, err = p.expression(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(SEMICOLON, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}

	return node, nil
}

func (p *parser) funDeclaration() (Decl, error) {
	name, err := p.expect(IDENTIFIER, "Expect function name.")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(LEFT_PAREN, "Expect '(' after function name."); err != nil {
		return nil, err
	}

	params := []Token{}
	if !p.check(RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.report(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", maxArgs))
			}

			param, err := p.expect(IDENTIFIER, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)

			if !p.match(COMMA) {
				break
			}
		}
	}

	if _, err := p.expect(RIGHT_PAREN, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.expect(LEFT_BRACE, "Expect '{' before function body."); err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return &FunDecl{Name: name, Params: params, Body: body}, nil
}

func (p *parser) statement() (Stmt, error) {
	switch {
	case p.match(PRINT):
		return p.printStatement()
	case p.match(LEFT_BRACE):
		return p.block()
	case p.match(IF):
		return p.ifStatement()
	case p.match(WHILE):
		return p.whileStatement()
	case p.match(FOR):
		return p.forStatement()
	case p.match(RETURN):
		return p.returnStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *parser) printStatement() (Stmt, error) {
	keyword := p.previous()

	value, err := p.expression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(SEMICOLON, "Expect ';' after value."); err != nil {
		return nil, err
	}

	return &PrintStmt{Keyword: keyword, Expr: value}, nil
}

// block parses the declarations after an already consumed '{'.
func (p *parser) block() (*BlockStmt, error) {
	node := &BlockStmt{Brace: p.previous(), Decls: []Decl{}}

	for !p.check(RIGHT_BRACE) && !p.isEOF() {
		if decl := p.declaration(); decl != nil {
			node.Decls = append(node.Decls, decl)
		}
	}

	if _, err := p.expect(RIGHT_BRACE, "Expect '}' after block."); err != nil {
		return nil, err
	}

	return node, nil
}

func (p *parser) ifStatement() (Stmt, error) {
	keyword := p.previous()

	if _, err := p.expect(LEFT_PAREN, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RIGHT_PAREN, "Expect ')' after if condition."); err != nil {
		return nil, err
	}

	then, err := p.statement()
	if err != nil {
		return nil, err
	}

	node := &IfStmt{Keyword: keyword, Cond: cond, Then: then}
	if p.match(ELSE) {
		if node.Else, err = p.statement(); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (p *parser) whileStatement() (Stmt, error) {
	keyword := p.previous()

	if _, err := p.expect(LEFT_PAREN, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RIGHT_PAREN, "Expect ')' after condition."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	return &WhileStmt{Keyword: keyword, Cond: cond, Body: body}, nil
}

// forStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond) { body; incr; } }
//
// adding each block only when the clause it exists for is present.
func (p *parser) forStatement() (Stmt, error) {
	keyword := p.previous()

	if _, err := p.expect(LEFT_PAREN, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var init Decl
	var err error
	switch {
	case p.match(SEMICOLON):
	case p.match(VAR):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond Expr
	if !p.check(SEMICOLON) {
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var incr Expr
	if !p.check(RIGHT_PAREN) {
		if incr, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RIGHT_PAREN, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = &BlockStmt{Brace: keyword, Decls: []Decl{body, incr}}
	}
	if cond == nil {
		cond = &LiteralExpr{Value: BoolValue(true), Tok: keyword}
	}
	body = &WhileStmt{Keyword: keyword, Cond: cond, Body: body}
	if init != nil {
		body = &BlockStmt{Brace: keyword, Decls: []Decl{init, body}}
	}

	return body, nil
}

func (p *parser) returnStatement() (Stmt, error) {
	node := &ReturnStmt{Keyword: p.previous()}

	if !p.check(SEMICOLON) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		node.Value = value
	}

	if _, err := p.expect(SEMICOLON, "Expect ';' after return value."); err != nil {
		return nil, err
	}

	return node, nil
}

func (p *parser) expressionStatement() (Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(SEMICOLON, "Expect ';' after expression."); err != nil {
		return nil, err
	}

	return expr, nil
}

func (p *parser) expression() (Expr, error) {
	return p.assignment()
}

func (p *parser) assignment() (Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}

	if !p.match(EQUAL) {
		return expr, nil
	}

	equals := p.previous()
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}

	if variable, ok := expr.(*VariableExpr); ok {
		return &AssignExpr{Name: variable.Name, Value: value}, nil
	}

	p.report(equals, "Invalid assignment target.")
	return value, nil
}

func (p *parser) or() (Expr, error) {
	expr, err := p.and()
	if err != nil {
		return nil, err
	}

	for p.match(OR) {
		op := p.previous()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Left: expr, Op: op, Right: right}
	}

	return expr, nil
}

func (p *parser) and() (Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}

	for p.match(AND) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Left: expr, Op: op, Right: right}
	}

	return expr, nil
}

// binary parses a left-associative chain of operand (op operand)*.
func (p *parser) binary(operand func() (Expr, error), ops ...TokenKind) (Expr, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}

	for p.match(ops...) {
		op := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Left: expr, Op: op, Right: right}
	}

	return expr, nil
}

func (p *parser) equality() (Expr, error) {
	return p.binary(p.comparison, BANG_EQUAL, EQUAL_EQUAL)
}

func (p *parser) comparison() (Expr, error) {
	return p.binary(p.term, GREATER, GREATER_EQUAL, LESS, LESS_EQUAL)
}

func (p *parser) term() (Expr, error) {
	return p.binary(p.factor, MINUS, PLUS)
}

func (p *parser) factor() (Expr, error) {
	return p.binary(p.unary, SLASH, STAR)
}

func (p *parser) unary() (Expr, error) {
	if p.match(BANG, MINUS) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Right: right}, nil
	}

	return p.call()
}

func (p *parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for p.match(LEFT_PAREN) {
		if expr, err = p.finishCall(expr); err != nil {
			return nil, err
		}
	}

	return expr, nil
}

func (p *parser) finishCall(callee Expr) (Expr, error) {
	args := []Expr{}

	if !p.check(RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.report(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", maxArgs))
			}

			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if !p.match(COMMA) {
				break
			}
		}
	}

	paren, err := p.expect(RIGHT_PAREN, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}

	return &CallExpr{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *parser) primary() (Expr, error) {
	tok := p.peek()

	switch tok.Kind {
	case FALSE:
		p.next()
		return &LiteralExpr{Value: BoolValue(false), Tok: tok}, nil
	case TRUE:
		p.next()
		return &LiteralExpr{Value: BoolValue(true), Tok: tok}, nil
	case NIL:
		p.next()
		return &LiteralExpr{Value: null, Tok: tok}, nil
	case NUMBER, STRING:
		p.next()
		return &LiteralExpr{Value: tok.Literal, Tok: tok}, nil
	case IDENTIFIER:
		p.next()
		return &VariableExpr{Name: tok}, nil
	case LEFT_PAREN:
		p.next()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RIGHT_PAREN, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &GroupingExpr{Inner: inner, Tok: tok}, nil
	}

	return nil, &ParseError{Token: tok, Reason: "Expect expression."}
}
