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

import (
	"fmt"
	"strings"
)

const moduleDirective = ":- use_module(library(clpfd))."

// Program is a compiled clpfd program. It is a snapshot: further operations
// on the Translator that produced it do not change it.
type Program struct {
	// Predicate is the name of the generated predicate.
	Predicate string
	// Variables are the predicate parameters, in sorted order. The position of
	// a name in this slice is its argument position.
	Variables []string
	// Restrictions are the committed clauses, in commit order.
	Restrictions []Fragment
	// Text is the complete program source.
	Text string
}

// Arity returns the number of predicate parameters.
func (p *Program) Arity() int {
	return len(p.Variables)
}

// Err reports the first restriction that carries an error sentinel. A
// sentinel dropped with Pop or Clear before its commit does not count.
func (p *Program) Err() error {
	for i, r := range p.Restrictions {
		switch {
		case strings.Contains(string(r), string(DomainErrorFragment)):
			return fmt.Errorf("restriction %d: %w", i, ErrOddDomain)
		case strings.Contains(string(r), string(UnderflowFragment)):
			return fmt.Errorf("restriction %d: %w", i, ErrStackUnderflow)
		}
	}
	return nil
}

// Compile assembles the header, the restrictions and the labeling footer.
// Identical operation sequences always compile to identical text.
func (t *Translator) Compile() *Program {
	vars := t.registry.Names()
	p := &Program{
		Predicate:    t.predicate,
		Variables:    vars,
		Restrictions: t.Restrictions(),
	}

	var b strings.Builder
	b.WriteString(moduleDirective + "\n")
	b.WriteString("\n")
	b.WriteString(header(t.predicate, vars) + "\n")
	for _, r := range p.Restrictions {
		b.WriteString(string(r) + ",\n")
	}
	b.WriteString(footer(vars, t.classify) + "\n")
	p.Text = b.String()
	return p
}

// header returns `pred(V1,...,Vn):-`, or `pred:-` without variables.
func header(pred string, vars []string) string {
	if len(vars) == 0 {
		return pred + ":-"
	}
	return pred + "(" + strings.Join(terms(vars), ",") + "):-"
}

// footer returns the labeling directive. Continuous actuators are minimised
// by their absolute value first, then binary actuators by their use, and the
// first-fail strategy labels every variable:
//
//	once(labeling([ff,min(abs(P_1) + abs(P_2)), min(min(V_1, 1))],[P_1,P_2,V_1])).
func footer(vars []string, classify Classifier) string {
	var continuous, binary []string
	for _, v := range vars {
		switch classify(v) {
		case Continuous:
			continuous = append(continuous, absLeft+VariableTerm(v)+absRight)
		case Binary:
			binary = append(binary, "min("+VariableTerm(v)+", 1)")
		}
	}

	var objective []string
	if len(continuous) > 0 {
		objective = append(objective, "min("+strings.Join(continuous, " + ")+")")
	}
	if len(binary) > 0 {
		objective = append(objective, "min("+strings.Join(binary, " + ")+")")
	}

	options := "ff"
	if len(objective) > 0 {
		options += "," + strings.Join(objective, ", ")
	}
	return "once(labeling([" + options + "],[" + strings.Join(terms(vars), ",") + "]))."
}

func terms(vars []string) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = VariableTerm(v)
	}
	return out
}
