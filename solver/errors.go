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
	"fmt"
)

var (
	// ErrNoSolution is returned by Solve when the search completed without
	// finding an assignment. It is an outcome, not a fault.
	ErrNoSolution = errors.New("no solution")
	// ErrEngineNotRunning is returned when an operation needs a running Engine.
	ErrEngineNotRunning = errors.New("constraint engine is not running")
	// ErrEngineStopped is returned by Start on an Engine that was stopped.
	ErrEngineStopped = errors.New("constraint engine was stopped")
	// ErrEngineExists is returned by Start when another Engine is running in
	// this process.
	ErrEngineExists = errors.New("another constraint engine is running in this process")
	// ErrUnsupportedVersion is returned by Start when the runtime is older
	// than the configured minimum.
	ErrUnsupportedVersion = errors.New("unsupported constraint engine version")
	// ErrSessionClosed is returned by operations on a closed Session.
	ErrSessionClosed = errors.New("session is closed")
	// ErrNameClash is wrapped by a LoadError when a live Session already owns
	// the program name.
	ErrNameClash = errors.New("program name is already loaded")
)

// LoadError reports that the engine did not accept a program.
type LoadError struct {
	// Program is the predicate name of the rejected program.
	Program string
	// Diagnostic is the engine's message, if the engine produced one.
	Diagnostic string
	Err        error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("loading program %q", e.Program)
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SolverError is an engine fault during a query, distinct from ErrNoSolution.
type SolverError struct {
	Diagnostic string
	Err        error
}

func (e *SolverError) Error() string {
	msg := "constraint engine fault"
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

// UnknownVariableError reports an input name that is not a program variable.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q in input", e.Name)
}
