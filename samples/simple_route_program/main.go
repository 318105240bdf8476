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

// [START program]
// The simple_route_program command routes flow through one pump and one valve.
package main

import (
	"context"
	"errors"
	"fmt"

	log "github.com/golang/glog"

	"github.com/fluidicml/clproute/solver"
	"github.com/fluidicml/clproute/translator"
)

func simpleRouteProgram() error {
	ctx := context.Background()
	tr := translator.New(translator.WithPredicate("simple_route"))

	// The pump runs in either direction at rate 1 or 2.
	pump, err := translator.FromFlatIntervals([]int64{-2, -1, 1, 2})
	if err != nil {
		return fmt.Errorf("failed to build the pump domain: %w", err)
	}
	tr.PushDomain("P_1", pump)
	tr.CommitRestriction()
	tr.PushDomain("V_1", translator.NewDomain(0, 1))
	tr.CommitRestriction()
	tr.PushDomain("C_out", translator.NewDomain(-2, 2))
	tr.CommitRestriction()

	// Flow reaches the outlet only through an open valve.
	tr.PushVariable("V_1")
	tr.PushConstant(0)
	tr.ReduceComparison(translator.Equal)
	tr.PushVariable("C_out")
	tr.PushConstant(0)
	tr.ReduceComparison(translator.Equal)
	tr.ReduceImplication()
	tr.CommitRestriction()

	// The outlet carries what the pump pushes.
	tr.PushVariable("C_out")
	tr.PushVariable("P_1")
	tr.ReduceComparison(translator.Equal)
	tr.CommitRestriction()

	engine := solver.NewEngine()
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start the constraint engine: %w", err)
	}
	defer engine.Stop()

	session, err := solver.CreateSession(ctx, engine, tr)
	if err != nil {
		return fmt.Errorf("failed to load the program: %w", err)
	}
	defer session.Close(ctx)

	solution, err := session.Solve(ctx, map[string]int64{"C_out": -2})
	switch {
	case errors.Is(err, solver.ErrNoSolution):
		fmt.Println("No solution found.")
	case err != nil:
		return fmt.Errorf("failed to solve the program: %w", err)
	default:
		for _, name := range solution.Names() {
			fmt.Printf("%s = %d\n", name, solution[name])
		}
	}

	return nil
}

func main() {
	if err := simpleRouteProgram(); err != nil {
		log.Exitf("simpleRouteProgram returned with error: %v", err)
	}
}

// [END program]
