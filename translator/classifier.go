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

import "strings"

// Category is the actuator class of a variable, used only to shape the
// minimisation objective.
type Category int

const (
	// Other variables take no part in the objective.
	Other Category = iota
	// Continuous actuators (pumps) contribute abs(v).
	Continuous
	// Binary actuators (valves) contribute min(v, 1).
	Binary
)

func (c Category) String() string {
	switch c {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	}
	return "other"
}

// Classifier maps a variable name to its actuator category.
type Classifier func(name string) Category

// Default prefixes of the machine naming convention.
const (
	DefaultContinuousPrefix = "P_"
	DefaultBinaryPrefix     = "V_"
)

// PrefixClassifier classifies names by prefix. Continuous prefixes are
// checked first.
func PrefixClassifier(continuous, binary []string) Classifier {
	cont := append([]string(nil), continuous...)
	bin := append([]string(nil), binary...)
	return func(name string) Category {
		for _, p := range cont {
			if strings.HasPrefix(name, p) {
				return Continuous
			}
		}
		for _, p := range bin {
			if strings.HasPrefix(name, p) {
				return Binary
			}
		}
		return Other
	}
}

// DefaultClassifier recognises pumps (`P_`) and valves (`V_`).
var DefaultClassifier = PrefixClassifier([]string{DefaultContinuousPrefix}, []string{DefaultBinaryPrefix})
