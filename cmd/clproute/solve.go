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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/fluidicml/clproute/script"
	"github.com/fluidicml/clproute/solver"
)

type solveFlags struct {
	inputs       map[string]int64
	timeout      time.Duration
	printMetrics bool
}

func newSolveCmd(flags *rootFlags) *cobra.Command {
	sf := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "solve SCRIPT",
		Short: "Solve a script on the constraint engine",
		Long: `Compiles SCRIPT, loads it into the constraint engine and prints the first
solution as JSON. Inputs from the script are merged with --input values.

  $ clproute solve route.yaml --input a=5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, flags, sf, args[0])
		},
	}
	cmd.Flags().StringToInt64Var(&sf.inputs, "input", nil, "Known variable values, name=value.")
	cmd.Flags().DurationVar(&sf.timeout, "timeout", time.Minute, "Deadline for starting the engine, loading and solving.")
	cmd.Flags().BoolVar(&sf.printMetrics, "print-metrics", false, "Print solver metrics in the Prometheus text format after solving.")
	return cmd
}

func runSolve(cmd *cobra.Command, flags *rootFlags, sf *solveFlags, path string) error {
	c, err := flags.load(cmd.Flags())
	if err != nil {
		return err
	}
	s, err := script.Load(path)
	if err != nil {
		return err
	}
	tr, err := translate(cmd, c, s)
	if err != nil {
		return err
	}
	inputs := map[string]int64{}
	for n, v := range s.Inputs {
		inputs[n] = v
	}
	for n, v := range sf.inputs {
		inputs[n] = v
	}

	reg := prometheus.NewRegistry()
	if err := solver.RegisterMetrics(reg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), sf.timeout)
	defer cancel()

	opts, err := c.EngineOptions()
	if err != nil {
		return err
	}
	engine := solver.NewEngine(opts...)
	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := engine.Stop(); err != nil {
			log.Warningf("stopping constraint engine: %v", err)
		}
	}()

	session, err := solver.CreateSession(ctx, engine, tr, c.SessionOptions()...)
	if err != nil {
		return err
	}
	defer session.Close(context.Background())

	out := cmd.OutOrStdout()
	sol, err := session.Solve(ctx, inputs)
	switch {
	case errors.Is(err, solver.ErrNoSolution):
		fmt.Fprintln(out, "No solution found.")
	case err != nil:
		return err
	default:
		if err := writeSolution(out, sol); err != nil {
			return err
		}
	}

	if sf.printMetrics {
		return writeMetrics(out, reg)
	}
	return nil
}

func writeSolution(w io.Writer, sol solver.Solution) error {
	msg, err := sol.Proto()
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true}.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling solution: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
