package core

import (
	"math"
	"strconv"
)

type ValueType int

const (
	NilType ValueType = iota
	BoolType
	NumberType
	StringType
	FunctionType
)

func (t ValueType) String() string {
	switch t {
	case NilType:
		return "nil"
	case BoolType:
		return "boolean"
	case NumberType:
		return "number"
	case StringType:
		return "string"
	case FunctionType:
		return "function"
	default:
		return "<unknown>"
	}
}

type Value interface {
	String() string
	Eq(v Value) bool
	Truthy() bool
	Type() ValueType
}

type NilValue struct{}

func (v NilValue) String() string {
	return "nil"
}

func (v NilValue) Eq(other Value) bool {
	_, ok := other.(NilValue)
	return ok
}

func (v NilValue) Truthy() bool {
	return false
}

func (v NilValue) Type() ValueType {
	return NilType
}

var null = NilValue{}

type BoolValue bool

func (v BoolValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

func (v BoolValue) Eq(u Value) bool {
	if w, ok := u.(BoolValue); ok {
		return v == w
	}
	return false
}

func (v BoolValue) Truthy() bool {
	return bool(v)
}

func (v BoolValue) Type() ValueType {
	return BoolType
}

type NumberValue float64

// String drops the fractional part of integral numbers, so 3.0 prints as 3.
func (v NumberValue) String() string {
	f := float64(v)
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (v NumberValue) Eq(u Value) bool {
	if w, ok := u.(NumberValue); ok {
		return v == w
	}
	return false
}

// Zero is truthy too; only nil and false are not.
func (v NumberValue) Truthy() bool {
	return true
}

func (v NumberValue) Type() ValueType {
	return NumberType
}

type StringValue string

// String returns the raw contents. Quote renders it as source text.
func (v StringValue) String() string {
	return string(v)
}

func (v StringValue) Quote() string {
	return `"` + string(v) + `"`
}

func (v StringValue) Eq(u Value) bool {
	if w, ok := u.(StringValue); ok {
		return v == w
	}
	return false
}

func (v StringValue) Truthy() bool {
	return true
}

func (v StringValue) Type() ValueType {
	return StringType
}

// FunctionValue pairs a declaration with the frame that was active where the
// declaration was evaluated. Two function values are equal only when both
// halves are identical.
type FunctionValue struct {
	Decl    *FunDecl
	Closure *Environment
}

func (v FunctionValue) String() string {
	return "<fn " + v.Decl.Name.Lexeme + ">"
}

func (v FunctionValue) Eq(u Value) bool {
	if w, ok := u.(FunctionValue); ok {
		return v.Decl == w.Decl && v.Closure == w.Closure
	}
	return false
}

func (v FunctionValue) Truthy() bool {
	return true
}

func (v FunctionValue) Type() ValueType {
	return FunctionType
}

func (v FunctionValue) Arity() int {
	return len(v.Decl.Params)
}
