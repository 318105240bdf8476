// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package translator

import "fmt"

// clpfd tokens used when assembling fragments.
const (
	domainIn      = "in"
	domainRange   = ".."
	domainUnion   = `\/`
	implicationOp = "#==>"
	absLeft       = "abs("
	absRight      = ")"
)

// ArithmeticOp is a binary arithmetic operator.
type ArithmeticOp int

// Binary arithmetic operators.
const (
	Add ArithmeticOp = iota
	Subtract
	Multiply
	Divide
	Modulo
)

var arithmeticSymbols = map[ArithmeticOp]string{
	Add:      "+",
	Subtract: "-",
	Multiply: "*",
	Divide:   "//",
	Modulo:   "rem",
}

var arithmeticNames = map[ArithmeticOp]string{
	Add:      "add",
	Subtract: "subtract",
	Multiply: "multiply",
	Divide:   "divide",
	Modulo:   "modulo",
}

func (op ArithmeticOp) String() string {
	if s, ok := arithmeticNames[op]; ok {
		return s
	}
	return fmt.Sprintf("ArithmeticOp(%d)", int(op))
}

// UnaryOp is a unary arithmetic operator.
type UnaryOp int

// Unary arithmetic operators.
const (
	AbsoluteValue UnaryOp = iota
)

func (op UnaryOp) String() string {
	if op == AbsoluteValue {
		return "abs"
	}
	return fmt.Sprintf("UnaryOp(%d)", int(op))
}

// wrappers returns the prefix and suffix that surround the operand.
func (op UnaryOp) wrappers() (string, string, bool) {
	if op == AbsoluteValue {
		return absLeft, absRight, true
	}
	return "", "", false
}

// ComparisonOp is a reified comparison between two expressions.
type ComparisonOp int

// Comparison operators.
const (
	Equal ComparisonOp = iota
	NotEqual
	Greater
	GreaterEq
	Less
	LessEq
)

var comparisonSymbols = map[ComparisonOp]string{
	Equal:     "#=",
	NotEqual:  `#\=`,
	Greater:   "#>",
	GreaterEq: "#>=",
	Less:      "#<",
	LessEq:    "#=<",
}

var comparisonNames = map[ComparisonOp]string{
	Equal:     "equal",
	NotEqual:  "notEqual",
	Greater:   "greater",
	GreaterEq: "greaterEq",
	Less:      "less",
	LessEq:    "lessEq",
}

func (op ComparisonOp) String() string {
	if s, ok := comparisonNames[op]; ok {
		return s
	}
	return fmt.Sprintf("ComparisonOp(%d)", int(op))
}

// BoolOp is a boolean connective between two reified constraints.
type BoolOp int

// Boolean connectives.
const (
	And BoolOp = iota
	Or
)

var boolSymbols = map[BoolOp]string{
	And: `#/\`,
	Or:  `#\/`,
}

func (op BoolOp) String() string {
	switch op {
	case And:
		return "and"
	case Or:
		return "or"
	}
	return fmt.Sprintf("BoolOp(%d)", int(op))
}
