package core

import (
	"strings"
)

// Decl is anything that can appear in a program or block. Every Stmt is a
// Decl and every Expr is a Stmt: an expression on its own is an expression
// statement.
type Decl interface {
	String() string
	line() int
	declNode()
}

type Stmt interface {
	Decl
	stmtNode()
}

type Expr interface {
	Stmt
	exprNode()
}

// Render prints a declaration as source text. Expressions used as statements
// get their terminating semicolon back.
func Render(d Decl) string {
	if _, ok := d.(Expr); ok {
		return d.String() + ";"
	}
	return d.String()
}

// Line returns the source line a declaration starts on.
func Line(d Decl) int {
	return d.line()
}

type LiteralExpr struct {
	Value Value
	Tok   Token
}

func (n *LiteralExpr) String() string {
	if n.Tok.Kind == NUMBER || n.Tok.Kind == STRING {
		return n.Tok.Lexeme
	}
	if s, ok := n.Value.(StringValue); ok {
		return s.Quote()
	}
	return n.Value.String()
}

type GroupingExpr struct {
	Inner Expr
	Tok   Token
}

func (n *GroupingExpr) String() string {
	return "(" + n.Inner.String() + ")"
}

type UnaryExpr struct {
	Op    Token
	Right Expr
}

func (n *UnaryExpr) String() string {
	return "(" + n.Op.Kind.String() + n.Right.String() + ")"
}

type BinaryExpr struct {
	Left  Expr
	Op    Token
	Right Expr
}

func (n *BinaryExpr) String() string {
	return "(" + n.Left.String() + " " + n.Op.Kind.String() + " " + n.Right.String() + ")"
}

type LogicalExpr struct {
	Left  Expr
	Op    Token
	Right Expr
}

func (n *LogicalExpr) String() string {
	return "(" + n.Left.String() + " " + n.Op.Kind.String() + " " + n.Right.String() + ")"
}

type VariableExpr struct {
	Name Token
}

func (n *VariableExpr) String() string {
	return n.Name.Lexeme
}

type AssignExpr struct {
	Name  Token
	Value Expr
}

func (n *AssignExpr) String() string {
	return "(" + n.Name.Lexeme + " = " + n.Value.String() + ")"
}

type CallExpr struct {
	Callee Expr
	Paren  Token
	Args   []Expr
}

func (n *CallExpr) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return n.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

type PrintStmt struct {
	Keyword Token
	Expr    Expr
}

func (n *PrintStmt) String() string {
	return "print " + n.Expr.String() + ";"
}

type BlockStmt struct {
	Brace Token
	Decls []Decl
}

func (n *BlockStmt) String() string {
	if len(n.Decls) == 0 {
		return "{ }"
	}
	decls := make([]string, len(n.Decls))
	for i, d := range n.Decls {
		decls[i] = Render(d)
	}
	return "{ " + strings.Join(decls, " ") + " }"
}

type IfStmt struct {
	Keyword Token
	Cond    Expr
	Then    Stmt
	Else    Stmt
}

func (n *IfStmt) String() string {
	if n.Else == nil {
		return "if (" + n.Cond.String() + ") " + Render(n.Then)
	}
	return "if (" + n.Cond.String() + ") " + Render(n.Then) + " else " + Render(n.Else)
}

type WhileStmt struct {
	Keyword Token
	Cond    Expr
	Body    Stmt
}

func (n *WhileStmt) String() string {
	return "while (" + n.Cond.String() + ") " + Render(n.Body)
}

type ReturnStmt struct {
	Keyword Token
	Value   Expr
}

func (n *ReturnStmt) String() string {
	if n.Value == nil {
		return "return;"
	}
	return "return " + n.Value.String() + ";"
}

type VarDecl struct {
	Name Token
	Init Expr
}

func (n *VarDecl) String() string {
	if n.Init == nil {
		return "var " + n.Name.Lexeme + ";"
	}
	return "var " + n.Name.Lexeme + " = " + n.Init.String() + ";"
}

type FunDecl struct {
	Name   Token
	Params []Token
	Body   *BlockStmt
}

func (n *FunDecl) String() string {
	params := make([]string, len(n.Params))
	for i, param := range n.Params {
		params[i] = param.Lexeme
	}
	return "fun " + n.Name.Lexeme + "(" + strings.Join(params, ", ") + ") " + n.Body.String()
}

func (n *LiteralExpr) line() int  { return n.Tok.Line }
func (n *GroupingExpr) line() int { return n.Tok.Line }
func (n *UnaryExpr) line() int    { return n.Op.Line }
func (n *BinaryExpr) line() int   { return n.Left.line() }
func (n *LogicalExpr) line() int  { return n.Left.line() }
func (n *VariableExpr) line() int { return n.Name.Line }
func (n *AssignExpr) line() int   { return n.Name.Line }
func (n *CallExpr) line() int     { return n.Callee.line() }
func (n *PrintStmt) line() int    { return n.Keyword.Line }
func (n *BlockStmt) line() int    { return n.Brace.Line }
func (n *IfStmt) line() int       { return n.Keyword.Line }
func (n *WhileStmt) line() int    { return n.Keyword.Line }
func (n *ReturnStmt) line() int   { return n.Keyword.Line }
func (n *VarDecl) line() int      { return n.Name.Line }
func (n *FunDecl) line() int      { return n.Name.Line }

func (*LiteralExpr) declNode()  {}
func (*GroupingExpr) declNode() {}
func (*UnaryExpr) declNode()    {}
func (*BinaryExpr) declNode()   {}
func (*LogicalExpr) declNode()  {}
func (*VariableExpr) declNode() {}
func (*AssignExpr) declNode()   {}
func (*CallExpr) declNode()     {}
func (*PrintStmt) declNode()    {}
func (*BlockStmt) declNode()    {}
func (*IfStmt) declNode()       {}
func (*WhileStmt) declNode()    {}
func (*ReturnStmt) declNode()   {}
func (*VarDecl) declNode()      {}
func (*FunDecl) declNode()      {}

func (*LiteralExpr) stmtNode()  {}
func (*GroupingExpr) stmtNode() {}
func (*UnaryExpr) stmtNode()    {}
func (*BinaryExpr) stmtNode()   {}
func (*LogicalExpr) stmtNode()  {}
func (*VariableExpr) stmtNode() {}
func (*AssignExpr) stmtNode()   {}
func (*CallExpr) stmtNode()     {}
func (*PrintStmt) stmtNode()    {}
func (*BlockStmt) stmtNode()    {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()   {}

func (*LiteralExpr) exprNode()  {}
func (*GroupingExpr) exprNode() {}
func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*LogicalExpr) exprNode()  {}
func (*VariableExpr) exprNode() {}
func (*AssignExpr) exprNode()   {}
func (*CallExpr) exprNode()     {}
