package core

import (
	"errors"
	"fmt"
	"log/slog"
)

// outcome is how a statement finished. A returning outcome travels up through
// enclosing blocks and loops until the call that owns it unwraps it.
type outcome struct {
	returning bool
	value     Value
	keyword   Token
}

var normal = outcome{}

type evaluator struct {
	ctx   *Context
	depth int
}

func newEvaluator(ctx *Context) *evaluator {
	return &evaluator{ctx: ctx}
}

func (ev *evaluator) execute(decl Decl, env *Environment) (outcome, error) {
	switch node := decl.(type) {
	case *VarDecl:
		var value Value
		if node.Init != nil {
			init, err := ev.evaluate(node.Init, env)
			if err != nil {
				return normal, err
			}
			value = init
		}
		return normal, env.Declare(node.Name, value)

	case *FunDecl:
		fn := FunctionValue{Decl: node, Closure: env}
		return normal, env.Declare(node.Name, fn)

	case *PrintStmt:
		value, err := ev.evaluate(node.Expr, env)
		if err != nil {
			return normal, err
		}
		fmt.Fprintln(ev.ctx.Out, value.String())
		return normal, nil

	case *BlockStmt:
		return ev.executeBlock(node.Decls, NewEnclosedEnvironment(env))

	case *IfStmt:
		cond, err := ev.evaluate(node.Cond, env)
		if err != nil {
			return normal, err
		}
		if cond.Truthy() {
			return ev.execute(node.Then, env)
		} else if node.Else != nil {
			return ev.execute(node.Else, env)
		}
		return normal, nil

	case *WhileStmt:
		for {
			cond, err := ev.evaluate(node.Cond, env)
			if err != nil {
				return normal, err
			}
			if !cond.Truthy() {
				return normal, nil
			}

			out, err := ev.execute(node.Body, env)
			if err != nil || out.returning {
				return out, err
			}
		}

	case *ReturnStmt:
		var value Value = null
		if node.Value != nil {
			v, err := ev.evaluate(node.Value, env)
			if err != nil {
				return normal, err
			}
			value = v
		}
		return outcome{returning: true, value: value, keyword: node.Keyword}, nil

	case Expr:
		_, err := ev.evaluate(node, env)
		return normal, err
	}

	return normal, fmt.Errorf("unknown declaration %T", decl)
}

// executeBlock runs decls in env, which the caller has already created.
func (ev *evaluator) executeBlock(decls []Decl, env *Environment) (outcome, error) {
	for _, decl := range decls {
		out, err := ev.execute(decl, env)
		if err != nil || out.returning {
			return out, err
		}
	}
	return normal, nil
}

func (ev *evaluator) evaluate(expr Expr, env *Environment) (Value, error) {
	switch node := expr.(type) {
	case *LiteralExpr:
		return node.Value, nil

	case *GroupingExpr:
		return ev.evaluate(node.Inner, env)

	case *UnaryExpr:
		right, err := ev.evaluate(node.Right, env)
		if err != nil {
			return nil, err
		}
		return ev.executeUnary(node.Op, right)

	case *BinaryExpr:
		left, err := ev.evaluate(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := ev.evaluate(node.Right, env)
		if err != nil {
			return nil, err
		}
		return ev.executeBinary(node.Op, left, right)

	case *LogicalExpr:
		left, err := ev.evaluate(node.Left, env)
		if err != nil {
			return nil, err
		}
		if node.Op.Kind == OR {
			if left.Truthy() {
				return left, nil
			}
		} else if !left.Truthy() {
			return left, nil
		}
		return ev.evaluate(node.Right, env)

	case *VariableExpr:
		return env.Get(node.Name)

	case *AssignExpr:
		value, err := ev.evaluate(node.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.Assign(node.Name, value); err != nil {
			return nil, err
		}
		return value, nil

	case *CallExpr:
		callee, err := ev.evaluate(node.Callee, env)
		if err != nil {
			return nil, err
		}

		fn, ok := callee.(FunctionValue)
		if !ok {
			return nil, newRuntimeError(NotCallable, node.Paren,
				"Can only call functions, got %s.", callee.Type())
		}

		args := make([]Value, 0, len(node.Args))
		for _, arg := range node.Args {
			value, err := ev.evaluate(arg, env)
			if err != nil {
				return nil, err
			}
			args = append(args, value)
		}

		return ev.call(fn, node.Paren, args)
	}

	return nil, fmt.Errorf("unknown expression %T", expr)
}

func (ev *evaluator) call(fn FunctionValue, paren Token, args []Value) (Value, error) {
	if len(args) != fn.Arity() {
		return nil, newRuntimeError(ArityMismatch, paren,
			"Expected %d arguments but got %d.", fn.Arity(), len(args))
	}

	env := NewEnclosedEnvironment(fn.Closure)
	for i, param := range fn.Decl.Params {
		if err := env.Declare(param, args[i]); err != nil {
			return nil, err
		}
	}

	name := fn.Decl.Name.Lexeme
	ev.depth++
	ev.ctx.Logger.Debug("push call frame",
		slog.String("fn", name),
		slog.Int("line", paren.Line),
		slog.Int("depth", ev.depth))
	var out outcome
	var err error
	defer func() {
		ev.ctx.Logger.Debug("pop call frame",
			slog.String("fn", name),
			slog.Bool("returned", out.returning),
			slog.Bool("failed", err != nil),
			slog.Int("depth", ev.depth))
		ev.depth--
	}()

	out, err = ev.executeBlock(fn.Decl.Body.Decls, env)
	if err != nil {
		var rtErr *RuntimeError
		if errors.As(err, &rtErr) {
			rtErr.stackTrace = append(rtErr.stackTrace, stackEntry{name: name, line: paren.Line})
		}
		return nil, err
	}

	if out.returning {
		return out.value, nil
	}
	return null, nil
}

func (ev *evaluator) executeUnary(op Token, right Value) (Value, error) {
	switch op.Kind {
	case MINUS:
		n, ok := right.(NumberValue)
		if !ok {
			return nil, newRuntimeError(TypeError, op, "Operand must be a number, got %s.", right.Type())
		}
		return -n, nil
	case BANG:
		return BoolValue(!right.Truthy()), nil
	}

	return nil, newRuntimeError(TypeError, op, "Unknown unary operator %s.", op.Kind)
}

func (ev *evaluator) executeBinary(op Token, left Value, right Value) (Value, error) {
	switch op.Kind {
	case EQUAL_EQUAL:
		return BoolValue(left.Eq(right)), nil
	case BANG_EQUAL:
		return BoolValue(!left.Eq(right)), nil
	case PLUS:
		switch l := left.(type) {
		case NumberValue:
			if r, ok := right.(NumberValue); ok {
				return l + r, nil
			}
		case StringValue:
			if r, ok := right.(StringValue); ok {
				return l + r, nil
			}
		}
		return nil, newRuntimeError(TypeError, op, "Operands must be numbers or strings.")
	}

	l, lok := left.(NumberValue)
	r, rok := right.(NumberValue)
	if !lok || !rok {
		return nil, newRuntimeError(TypeError, op, "Operands must be numbers.")
	}

	return ev.executeBinaryNumber(op, l, r)
}

func (ev *evaluator) executeBinaryNumber(op Token, a NumberValue, b NumberValue) (Value, error) {
	switch op.Kind {
	case MINUS:
		return a - b, nil
	case STAR:
		return a * b, nil
	case SLASH:
		return a / b, nil
	case GREATER:
		return BoolValue(a > b), nil
	case GREATER_EQUAL:
		return BoolValue(a >= b), nil
	case LESS:
		return BoolValue(a < b), nil
	case LESS_EQUAL:
		return BoolValue(a <= b), nil
	}

	return nil, newRuntimeError(TypeError, op, "Unknown binary operator %s.", op.Kind)
}
