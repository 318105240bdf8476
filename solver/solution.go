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
	"sort"

	"google.golang.org/protobuf/types/known/structpb"
)

// Solution is a complete assignment, keyed by variable name.
type Solution map[string]int64

// Names returns the assigned variables in sorted order.
func (s Solution) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Proto returns the solution as a protobuf Struct. Values are numbers, so
// magnitudes above 2^53 lose precision.
func (s Solution) Proto() (*structpb.Struct, error) {
	fields := make(map[string]any, len(s))
	for n, v := range s {
		fields[n] = float64(v)
	}
	return structpb.NewStruct(fields)
}
