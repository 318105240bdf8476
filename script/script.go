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

// Package script reads postfix operation scripts and replays them on a
// translator.Translator.
//
// A script is a YAML document:
//
//	name: route
//	inputs:
//	  a: 5
//	ops:
//	  - var b
//	  - var a
//	  - greater
//	  - commit
//
// Each op is a word optionally followed by arguments:
//
//	var NAME                  push a variable
//	const N                   push an integer constant
//	add subtract multiply divide modulo
//	abs
//	equal notEqual greater greaterEq less lessEq
//	and or implies
//	in                        reduce bounds and a variable to a domain union
//	dom NAME L1 H1 [L2 H2...] push `NAME in` a normalised domain
//	commit pop clear
package script

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"gopkg.in/yaml.v2"

	"github.com/fluidicml/clproute/translator"
)

// ErrBadOp is wrapped by errors for ops that cannot be parsed.
var ErrBadOp = errors.New("malformed op")

// Script is a recorded operation sequence plus the inputs to solve it with.
type Script struct {
	// Name is the predicate name. Empty means translator.DefaultPredicate.
	Name string `yaml:"name,omitempty"`
	// Inputs are known variable values for solving.
	Inputs map[string]int64 `yaml:"inputs,omitempty"`
	// Ops are replayed in order.
	Ops []string `yaml:"ops"`
}

// Parse decodes a script. Unknown fields are rejected.
func Parse(data []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.UnmarshalStrict(data, s); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	return s, nil
}

// Load reads and decodes the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Translator returns a new Translator named after the script with every op
// applied. opts are applied before the script's name.
func (s *Script) Translator(opts ...translator.Option) (*translator.Translator, error) {
	if s.Name != "" {
		opts = append(opts, translator.WithPredicate(s.Name))
	}
	t := translator.New(opts...)
	if err := s.Apply(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply replays the ops on t. It stops at the first op that cannot be
// parsed. Translation errors are recorded by t and do not stop the replay.
func (s *Script) Apply(t *translator.Translator) error {
	for i, op := range s.Ops {
		if err := apply(t, op); err != nil {
			return fmt.Errorf("op %d %q: %w", i, op, err)
		}
	}
	log.V(1).Infof("replayed %d ops, %d restrictions", len(s.Ops), len(t.Restrictions()))
	return nil
}

var (
	arithmeticOps = map[string]translator.ArithmeticOp{}
	comparisonOps = map[string]translator.ComparisonOp{}
	boolOps       = map[string]translator.BoolOp{}
)

func init() {
	for _, op := range []translator.ArithmeticOp{translator.Add, translator.Subtract, translator.Multiply, translator.Divide, translator.Modulo} {
		arithmeticOps[op.String()] = op
	}
	for _, op := range []translator.ComparisonOp{translator.Equal, translator.NotEqual, translator.Greater, translator.GreaterEq, translator.Less, translator.LessEq} {
		comparisonOps[op.String()] = op
	}
	for _, op := range []translator.BoolOp{translator.And, translator.Or} {
		boolOps[op.String()] = op
	}
}

func apply(t *translator.Translator, op string) error {
	fields := strings.Fields(op)
	if len(fields) == 0 {
		return fmt.Errorf("empty: %w", ErrBadOp)
	}
	word, args := fields[0], fields[1:]

	if a, ok := arithmeticOps[word]; ok {
		return nullary(args, func() { t.ReduceArithmetic(a) })
	}
	if c, ok := comparisonOps[word]; ok {
		return nullary(args, func() { t.ReduceComparison(c) })
	}
	if b, ok := boolOps[word]; ok {
		return nullary(args, func() { t.ReduceBool(b) })
	}

	switch word {
	case "var":
		if len(args) != 1 {
			return fmt.Errorf("var takes one name: %w", ErrBadOp)
		}
		t.PushVariable(args[0])
	case "const":
		if len(args) != 1 {
			return fmt.Errorf("const takes one integer: %w", ErrBadOp)
		}
		v, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%v: %w", err, ErrBadOp)
		}
		t.PushConstant(v)
	case translator.AbsoluteValue.String():
		return nullary(args, func() { t.ReduceUnary(translator.AbsoluteValue) })
	case "implies":
		return nullary(args, t.ReduceImplication)
	case "in":
		// A bad bound count is recorded by t.
		return nullary(args, func() { t.ReduceDomainUnion() })
	case "dom":
		if len(args) < 1 {
			return fmt.Errorf("dom takes a name and bounds: %w", ErrBadOp)
		}
		bounds := make([]int64, len(args)-1)
		for i, a := range args[1:] {
			v, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return fmt.Errorf("%v: %w", err, ErrBadOp)
			}
			bounds[i] = v
		}
		d, err := translator.FromFlatIntervals(bounds)
		if err != nil {
			return err
		}
		t.PushDomain(args[0], d)
	case "commit":
		return nullary(args, t.CommitRestriction)
	case "pop":
		return nullary(args, t.Pop)
	case "clear":
		return nullary(args, t.Clear)
	default:
		return fmt.Errorf("unknown op %q: %w", word, ErrBadOp)
	}
	return nil
}

func nullary(args []string, f func()) error {
	if len(args) != 0 {
		return fmt.Errorf("unexpected arguments %v: %w", args, ErrBadOp)
	}
	f()
	return nil
}
