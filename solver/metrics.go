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
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeLabel      = "outcome"
	outcomeSolved     = "solved"
	outcomeNoSolution = "no_solution"
	outcomeError      = "error"
)

var (
	solveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clproute_solve_total",
			Help: "Number of Solve calls by outcome",
		},
		[]string{outcomeLabel},
	)

	solveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clproute_solve_duration_seconds",
			Help:    "Time spent in Solve, including marshalling",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	loadedPrograms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "clproute_loaded_programs",
			Help: "Number of programs currently loaded in the constraint engine",
		},
	)
)

// RegisterMetrics registers the solver collectors with r. Collectors that are
// already registered are left alone.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{solveTotal, solveDuration, loadedPrograms} {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func observeSolve(start time.Time, err error) {
	solveDuration.Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		solveTotal.WithLabelValues(outcomeSolved).Inc()
	case errors.Is(err, ErrNoSolution):
		solveTotal.WithLabelValues(outcomeNoSolution).Inc()
	default:
		solveTotal.WithLabelValues(outcomeError).Inc()
	}
}
