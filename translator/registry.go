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
	"encoding/hex"
	"sort"
	"strings"
)

// Registry is the set of distinct variable names seen while translating.
// Its sorted order is the positional contract with the engine: the generated
// predicate lists its parameters in this order and the solver marshals
// arguments by the same rank.
type Registry struct {
	names map[string]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Add inserts `name`. Repeated names are ignored.
func (r *Registry) Add(name string) {
	r.names[name] = struct{}{}
}

// Contains reports whether `name` was registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Len returns the number of distinct names.
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns the registered names in ascending lexicographic order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// termPrefix marks generated variable terms. Kept names never start with it.
const termPrefix = "X_"

// VariableTerm returns the clpfd variable used for `name` in generated text.
//
// Names that already are Prolog variables (`[A-Z][A-Za-z0-9_]*`) are kept as
// is, unless they start with `X_`. Lower-case identifiers become `X_name`.
// Anything else becomes `X__` followed by the hex encoding of its bytes, so
// distinct names never share a term and no term starts with an underscore.
func VariableTerm(name string) string {
	switch {
	case isIdent(name) && isUpper(name[0]) && !strings.HasPrefix(name, termPrefix):
		return name
	case isIdent(name) && isLower(name[0]):
		return termPrefix + name
	}
	return termPrefix + "_" + hex.EncodeToString([]byte(name))
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(isUpper(c) || isLower(c) || c == '_' || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
