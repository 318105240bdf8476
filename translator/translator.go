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

// Package translator compiles a postfix stream of rule operations into a
// SWI-Prolog clpfd program.
//
// The `Translator` struct is a stack machine over text `Fragment`s. Callers walk
// their rule tree in postfix order, pushing variables and constants and
// reducing them with operators; `CommitRestriction` moves the finished clause
// on top of the stack into the restriction list. `Compile` assembles the
// restrictions into a `Program`: a predicate whose parameters are the
// registered variables in sorted order, followed by a labeling directive that
// minimises the use of actuators.
package translator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/golang/glog"
)

var (
	// ErrOddDomain is reported when the bounds below a domain variable do not
	// form min/max pairs.
	ErrOddDomain = errors.New("domain bounds are not min/max pairs")
	// ErrStackUnderflow is reported when an operation needs more fragments
	// than the stack holds.
	ErrStackUnderflow = errors.New("translation stack underflow")
	// ErrUnknownOperator is reported for operator values outside their enum.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrInvalidPredicate is reported for predicate names that are not plain
	// lower-case Prolog atoms.
	ErrInvalidPredicate = errors.New("invalid predicate name")
)

// Fragment is an immutable piece of compiled program text.
type Fragment string

const (
	// DomainErrorFragment replaces the whole stack when ReduceDomainUnion is
	// given an unpaired bound. It is not valid clpfd, so a program that
	// commits it is rejected when loaded.
	DomainErrorFragment Fragment = "VAR DOMAIN ERROR: NOT EVEN SIZE"
	// UnderflowFragment stands in for an operand missing from the stack.
	UnderflowFragment Fragment = "STACK UNDERFLOW"
)

// DefaultPredicate is the name of the generated predicate.
const DefaultPredicate = "route"

// Translator is the stack machine that builds a Program.
//
// A Translator is not safe for concurrent use.
type Translator struct {
	stack        []Fragment
	registry     *Registry
	restrictions []Fragment
	predicate    string
	classify     Classifier
	// The first and only the first error is reported by Err.
	err error
}

// Option configures a Translator.
type Option func(*Translator)

// WithPredicate sets the name of the generated predicate.
func WithPredicate(name string) Option {
	return func(t *Translator) {
		t.predicate = name
	}
}

// WithClassifier sets the actuator classifier used by the objective.
func WithClassifier(c Classifier) Option {
	return func(t *Translator) {
		if c != nil {
			t.classify = c
		}
	}
}

// New returns an empty Translator.
func New(opts ...Option) *Translator {
	t := &Translator{
		registry:  NewRegistry(),
		predicate: DefaultPredicate,
		classify:  DefaultClassifier,
	}
	for _, opt := range opts {
		opt(t)
	}
	if !isIdent(t.predicate) || !isLower(t.predicate[0]) {
		t.setErrorf("predicate %q: %w", t.predicate, ErrInvalidPredicate)
		t.predicate = DefaultPredicate
	}
	return t
}

func (t *Translator) setErrorf(format string, a ...any) {
	err := fmt.Errorf(format, a...)
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	if t.err == nil {
		t.err = err
	}
}

// Err returns the first error recorded while translating, if any. Recording
// an error never stops the stack machine.
func (t *Translator) Err() error {
	return t.err
}

func (t *Translator) push(f Fragment) {
	t.stack = append(t.stack, f)
}

func (t *Translator) pop() Fragment {
	if len(t.stack) == 0 {
		t.setErrorf("pop on empty stack: %w", ErrStackUnderflow)
		return UnderflowFragment
	}
	f := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return f
}

// popPair pops the right operand, then the left one.
func (t *Translator) popPair() (Fragment, Fragment) {
	right := t.pop()
	left := t.pop()
	return left, right
}

// Len returns the depth of the stack.
func (t *Translator) Len() int {
	return len(t.stack)
}

// Top returns the fragment on top of the stack without removing it.
func (t *Translator) Top() (Fragment, bool) {
	if len(t.stack) == 0 {
		return "", false
	}
	return t.stack[len(t.stack)-1], true
}

// PushVariable pushes the variable `name` and registers it.
func (t *Translator) PushVariable(name string) {
	t.registry.Add(name)
	t.push(Fragment(VariableTerm(name)))
}

// PushConstant pushes the decimal text of `v`.
func (t *Translator) PushConstant(v int64) {
	t.push(Fragment(strconv.FormatInt(v, 10)))
}

// ReduceArithmetic replaces the two top fragments with `(left op right)`.
func (t *Translator) ReduceArithmetic(op ArithmeticOp) {
	left, right := t.popPair()
	sym, ok := arithmeticSymbols[op]
	if !ok {
		t.setErrorf("arithmetic %v: %w", op, ErrUnknownOperator)
	}
	t.push(binary(left, sym, right))
}

// ReduceUnary wraps the top fragment with the notation of `op`.
func (t *Translator) ReduceUnary(op UnaryOp) {
	operand := t.pop()
	prefix, suffix, ok := op.wrappers()
	if !ok {
		t.setErrorf("unary %v: %w", op, ErrUnknownOperator)
	}
	t.push(Fragment(prefix) + operand + Fragment(suffix))
}

// ReduceComparison replaces the two top fragments with `(left cmp right)`.
func (t *Translator) ReduceComparison(op ComparisonOp) {
	left, right := t.popPair()
	sym, ok := comparisonSymbols[op]
	if !ok {
		t.setErrorf("comparison %v: %w", op, ErrUnknownOperator)
	}
	t.push(binary(left, sym, right))
}

// ReduceBool joins the two top fragments with a boolean connective.
//
// A conjunction stays on one logical line, `(left #/\` newline `right)`. A
// disjunction is laid out as a block with both operands indented by one tab
// and the operator on its own line. The layout only affects readability.
func (t *Translator) ReduceBool(op BoolOp) {
	left, right := t.popPair()
	sym, ok := boolSymbols[op]
	if !ok {
		t.setErrorf("boolean %v: %w", op, ErrUnknownOperator)
	}
	if op == Or {
		t.push("(\n" + indent(left) + " \n" + Fragment(sym) + "\n" + indent(right) + "\n)")
		return
	}
	t.push("(" + left + " " + Fragment(sym) + "\n" + right + ")")
}

// ReduceImplication replaces the two top fragments with `(left #==> right)`.
func (t *Translator) ReduceImplication() {
	left, right := t.popPair()
	t.push(binary(left, implicationOp, right))
}

// ReduceDomainUnion pops the variable on top of the stack and consumes every
// fragment below it as min/max bound pairs, pushed min first. It pushes
// `var in min1 .. max1 \/ min2 .. max2 ...` with intervals in pop order.
//
// The operation fails closed: when the bounds do not form at least one pair,
// the whole stack is replaced by DomainErrorFragment and ErrOddDomain is
// returned and recorded. The stack always ends with exactly one new fragment.
func (t *Translator) ReduceDomainUnion() (Fragment, error) {
	variable := t.pop()
	if n := len(t.stack); n == 0 || n%2 != 0 {
		t.stack = append(t.stack[:0], DomainErrorFragment)
		err := fmt.Errorf("%d bounds below %s: %w", n, variable, ErrOddDomain)
		t.setErrorf("%w", err)
		return DomainErrorFragment, err
	}
	var b strings.Builder
	b.WriteString(string(variable))
	b.WriteString(" " + domainIn + " ")
	for first := true; len(t.stack) > 0; first = false {
		hi := t.pop()
		lo := t.pop()
		if !first {
			b.WriteString(" " + domainUnion + " ")
		}
		b.WriteString(string(lo) + " " + domainRange + " " + string(hi))
	}
	f := Fragment(b.String())
	t.push(f)
	return f, nil
}

// PushDomain registers `name` and pushes `name in d`. An empty domain pushes a
// restriction that can never hold.
func (t *Translator) PushDomain(name string, d Domain) Fragment {
	t.registry.Add(name)
	f := Fragment(VariableTerm(name) + " " + domainIn + " " + d.String())
	if d.IsEmpty() {
		f = "(0 #= 1)"
	}
	t.push(f)
	return f
}

// CommitRestriction moves the top fragment into the restriction list.
func (t *Translator) CommitRestriction() {
	t.restrictions = append(t.restrictions, t.pop())
}

// Pop drops the top fragment without recording it.
func (t *Translator) Pop() {
	t.pop()
}

// Clear empties the stack. Registered variables and committed restrictions
// are kept.
func (t *Translator) Clear() {
	t.stack = t.stack[:0]
}

// Restrictions returns a copy of the committed restrictions, in commit order.
func (t *Translator) Restrictions() []Fragment {
	return append([]Fragment(nil), t.restrictions...)
}

// Variables returns the registered variable names in sorted order.
func (t *Translator) Variables() []string {
	return t.registry.Names()
}

func binary(left Fragment, sym string, right Fragment) Fragment {
	return "(" + left + " " + Fragment(sym) + " " + right + ")"
}

// indent prefixes every line of `f` with a tab.
func indent(f Fragment) Fragment {
	return "\t" + Fragment(strings.ReplaceAll(string(f), "\n", "\n\t"))
}
