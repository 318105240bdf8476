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
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ClosedInterval is the range `Start .. End`. It holds no value when Start is
// greater than End.
type ClosedInterval struct {
	Start int64
	End   int64
}

// String renders the interval as a clpfd range, `Start .. End`.
func (c ClosedInterval) String() string {
	return strconv.FormatInt(c.Start, 10) + " " + domainRange + " " + strconv.FormatInt(c.End, 10)
}

// Domain is a set of integers kept as ascending, disjoint, non-touching
// intervals. PushDomain renders it into an `in` restriction. The zero value is
// the empty domain.
type Domain struct {
	intervals []ClosedInterval
}

// normalize returns the union of itvs as ascending intervals with a gap of at
// least one value between neighbours. itvs is reordered in place.
func normalize(itvs []ClosedInterval) []ClosedInterval {
	itvs = slices.DeleteFunc(itvs, func(c ClosedInterval) bool { return c.Start > c.End })
	slices.SortFunc(itvs, func(a, b ClosedInterval) int { return cmp.Compare(a.Start, b.Start) })

	var out []ClosedInterval
	for _, c := range itvs {
		if n := len(out); n > 0 && c.Start <= out[n-1].End+1 {
			out[n-1].End = max(out[n-1].End, c.End)
			continue
		}
		out = append(out, c)
	}
	return out
}

// NewDomain returns the domain `left .. right`, empty when left > right.
func NewDomain(left, right int64) Domain {
	return Domain{normalize([]ClosedInterval{{left, right}})}
}

// FromIntervals returns the union of intervals.
func FromIntervals(intervals []ClosedInterval) Domain {
	return Domain{normalize(slices.Clone(intervals))}
}

// FromFlatIntervals returns the union of the `min, max` pairs in values.
// An odd number of values is an ErrOddDomain.
func FromFlatIntervals(values []int64) (Domain, error) {
	if len(values)%2 != 0 {
		return Domain{}, fmt.Errorf("%d bounds: %w", len(values), ErrOddDomain)
	}
	itvs := make([]ClosedInterval, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		itvs = append(itvs, ClosedInterval{values[i], values[i+1]})
	}
	return Domain{normalize(itvs)}, nil
}

// IsEmpty reports whether the domain has no values.
func (d Domain) IsEmpty() bool {
	return len(d.intervals) == 0
}

// String renders the domain as a clpfd union, e.g. `-2 .. -1 \/ 1 .. 2`.
// The empty domain renders as the empty string.
func (d Domain) String() string {
	parts := make([]string, len(d.intervals))
	for i, itv := range d.intervals {
		parts[i] = itv.String()
	}
	return strings.Join(parts, " "+domainUnion+" ")
}
