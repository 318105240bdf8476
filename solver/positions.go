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

package solver

import (
	"fmt"
	"sort"
	"strconv"
)

// unbound is the positional term for a variable the engine must label.
const unbound = "_"

// PositionTable maps variable names to predicate argument positions.
type PositionTable struct {
	names []string
	index map[string]int
}

// NewPositionTable returns a table placing names[i] at position i. names is
// the program's sorted variable list.
func NewPositionTable(names []string) *PositionTable {
	t := &PositionTable{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, n := range t.names {
		t.index[n] = i
	}
	return t
}

// Index returns the position of name.
func (t *PositionTable) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Name returns the variable at position i.
func (t *PositionTable) Name(i int) string {
	return t.names[i]
}

// Len returns the number of positions.
func (t *PositionTable) Len() int {
	return len(t.names)
}

// Names returns the variables in position order.
func (t *PositionTable) Names() []string {
	return append([]string(nil), t.names...)
}

// marshal builds the positional argument vector for inputs. Every input name
// is checked before anything is built; the smallest unknown name is reported.
func (t *PositionTable) marshal(inputs map[string]int64) ([]string, error) {
	var unknown []string
	for n := range inputs {
		if _, ok := t.index[n]; !ok {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownVariableError{Name: unknown[0]}
	}

	args := make([]string, len(t.names))
	for i, n := range t.names {
		if v, ok := inputs[n]; ok {
			args[i] = strconv.FormatInt(v, 10)
		} else {
			args[i] = unbound
		}
	}
	return args, nil
}

// unmarshal names the positional values of a solution.
func (t *PositionTable) unmarshal(values []int64) (Solution, error) {
	if len(values) != len(t.names) {
		return nil, &SolverError{Diagnostic: fmt.Sprintf("engine returned %d values for %d variables", len(values), len(t.names))}
	}
	sol := make(Solution, len(values))
	for i, v := range values {
		sol[t.names[i]] = v
	}
	return sol, nil
}
