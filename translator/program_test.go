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
	"errors"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompile_GreaterScenario(t *testing.T) {
	tr := New()
	tr.PushVariable("b")
	tr.PushVariable("a")
	tr.ReduceComparison(Greater)
	tr.CommitRestriction()

	p := tr.Compile()

	if diff := cmp.Diff([]string{"a", "b"}, p.Variables); diff != "" {
		t.Errorf("Compile().Variables returned with unexpected diff (-want+got);\n%s", diff)
	}
	if diff := cmp.Diff([]Fragment{"(X_b #> X_a)"}, p.Restrictions); diff != "" {
		t.Errorf("Compile().Restrictions returned with unexpected diff (-want+got);\n%s", diff)
	}
	want := ":- use_module(library(clpfd)).\n" +
		"\n" +
		"route(X_a,X_b):-\n" +
		"(X_b #> X_a),\n" +
		"once(labeling([ff],[X_a,X_b])).\n"
	if diff := cmp.Diff(want, p.Text); diff != "" {
		t.Errorf("Compile().Text returned with unexpected diff (-want+got);\n%s", diff)
	}
	if p.Arity() != 2 {
		t.Errorf("Arity() = %v, want 2", p.Arity())
	}
}

func TestCompile_Objective(t *testing.T) {
	tr := New(WithPredicate("machine"))
	pushEquality(tr, "V_1", 1)
	tr.CommitRestriction()
	tr.PushVariable("P_2")
	tr.PushVariable("P_1")
	tr.ReduceArithmetic(Add)
	tr.PushVariable("C_1")
	tr.ReduceComparison(Equal)
	tr.CommitRestriction()

	p := tr.Compile()
	want := ":- use_module(library(clpfd)).\n" +
		"\n" +
		"machine(C_1,P_1,P_2,V_1):-\n" +
		"(V_1 #= 1),\n" +
		"((P_2 + P_1) #= C_1),\n" +
		"once(labeling([ff,min(abs(P_1) + abs(P_2)), min(min(V_1, 1))],[C_1,P_1,P_2,V_1])).\n"
	if diff := cmp.Diff(want, p.Text); diff != "" {
		t.Errorf("Compile().Text returned with unexpected diff (-want+got);\n%s", diff)
	}
}

func TestFooter(t *testing.T) {
	testCases := []struct {
		vars []string
		want string
	}{
		{
			vars: nil,
			want: "once(labeling([ff],[])).",
		},
		{
			vars: []string{"C_1", "C_2"},
			want: "once(labeling([ff],[C_1,C_2])).",
		},
		{
			vars: []string{"P_1"},
			want: "once(labeling([ff,min(abs(P_1))],[P_1])).",
		},
		{
			vars: []string{"V_1", "V_2"},
			want: "once(labeling([ff,min(min(V_1, 1) + min(V_2, 1))],[V_1,V_2])).",
		},
		{
			vars: []string{"A_1", "P_1", "V_1", "X"},
			want: "once(labeling([ff,min(abs(P_1)), min(min(V_1, 1))],[A_1,P_1,V_1,X])).",
		},
	}

	for _, test := range testCases {
		if got := footer(test.vars, DefaultClassifier); got != test.want {
			t.Errorf("footer(%v) = %q, want %q", test.vars, got, test.want)
		}
	}
}

func TestFooter_GroupsIgnoreNameOrder(t *testing.T) {
	// Binary names sorting before continuous ones still yield the
	// continuous group first.
	classify := PrefixClassifier([]string{"pump"}, []string{"flow"})
	got := footer([]string{"flow1", "pump1"}, classify)
	want := "once(labeling([ff,min(abs(X_pump1)), min(min(X_flow1, 1))],[X_flow1,X_pump1]))."
	if got != want {
		t.Errorf("footer() = %q, want %q", got, want)
	}
}

func TestCompile_NoVariables(t *testing.T) {
	p := New().Compile()
	want := ":- use_module(library(clpfd)).\n\nroute:-\nonce(labeling([ff],[])).\n"
	if diff := cmp.Diff(want, p.Text); diff != "" {
		t.Errorf("Compile().Text returned with unexpected diff (-want+got);\n%s", diff)
	}
}

func buildRandom(r *rand.Rand, names []string) *Translator {
	tr := New()
	for i := 0; i < 3*len(names); i++ {
		tr.PushVariable(names[r.Intn(len(names))])
		tr.PushConstant(int64(r.Intn(20) - 10))
		tr.ReduceComparison(ComparisonOp(r.Intn(6)))
		tr.CommitRestriction()
	}
	for _, n := range names {
		tr.PushVariable(n)
		tr.Pop()
	}
	return tr
}

func TestCompile_Deterministic(t *testing.T) {
	names := []string{"P_3", "V_1", "C_9", "P_1", "a", "V_10"}
	first := buildRandom(rand.New(rand.NewSource(7)), names).Compile()
	second := buildRandom(rand.New(rand.NewSource(7)), names).Compile()
	if diff := cmp.Diff(first.Text, second.Text); diff != "" {
		t.Errorf("Compile() is not deterministic (-first+second);\n%s", diff)
	}
}

func TestCompile_HeaderOrderMatchesRegistry(t *testing.T) {
	names := []string{"V_2", "P_10", "P_2", "C_1", "b", "a", "Z"}
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 20; round++ {
		perm := r.Perm(len(names))
		tr := New()
		for _, i := range perm {
			tr.PushVariable(names[i])
			tr.PushVariable(names[i])
			tr.Clear()
		}
		p := tr.Compile()

		want := append([]string(nil), names...)
		sort.Strings(want)
		if diff := cmp.Diff(want, p.Variables); diff != "" {
			t.Fatalf("round %d: Variables returned with unexpected diff (-want+got);\n%s", round, diff)
		}
		wantHeader := "route(" + strings.Join(terms(want), ",") + "):-\n"
		if !strings.Contains(p.Text, wantHeader) {
			t.Fatalf("round %d: Text %q does not contain header %q", round, p.Text, wantHeader)
		}
	}
}

func TestCompile_Snapshot(t *testing.T) {
	tr := New()
	pushEquality(tr, "A", 1)
	tr.CommitRestriction()
	p := tr.Compile()

	pushEquality(tr, "B", 2)
	tr.CommitRestriction()

	if diff := cmp.Diff([]Fragment{"(A #= 1)"}, p.Restrictions); diff != "" {
		t.Errorf("Program changed after further commits (-want+got);\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A"}, p.Variables); diff != "" {
		t.Errorf("Program variables changed after further pushes (-want+got);\n%s", diff)
	}
}

func TestProgram_Err(t *testing.T) {
	testCases := []struct {
		name    string
		build   func(tr *Translator)
		wantErr error
	}{
		{
			name: "valid",
			build: func(tr *Translator) {
				pushEquality(tr, "A", 1)
				tr.CommitRestriction()
			},
		},
		{
			name: "committed domain error",
			build: func(tr *Translator) {
				tr.PushConstant(1)
				tr.PushVariable("B")
				tr.ReduceDomainUnion()
				tr.CommitRestriction()
			},
			wantErr: ErrOddDomain,
		},
		{
			name: "dropped domain error",
			build: func(tr *Translator) {
				tr.PushConstant(1)
				tr.PushVariable("B")
				tr.ReduceDomainUnion()
				tr.Pop()
				pushEquality(tr, "A", 1)
				tr.CommitRestriction()
			},
		},
		{
			name: "cleared domain error",
			build: func(tr *Translator) {
				tr.PushVariable("B")
				tr.ReduceDomainUnion()
				tr.Clear()
			},
		},
		{
			name: "nested underflow",
			build: func(tr *Translator) {
				tr.PushVariable("A")
				tr.ReduceComparison(Equal)
				tr.CommitRestriction()
			},
			wantErr: ErrStackUnderflow,
		},
	}

	for _, test := range testCases {
		tr := New()
		test.build(tr)
		if err := tr.Compile().Err(); !errors.Is(err, test.wantErr) {
			t.Errorf("%s: Err() = %v, want %v", test.name, err, test.wantErr)
		}
	}
}
