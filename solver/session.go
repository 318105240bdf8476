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
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/golang/glog"

	"github.com/fluidicml/clproute/translator"
)

// Router computes routes from partial assignments.
type Router interface {
	Solve(ctx context.Context, inputs map[string]int64) (Solution, error)
}

var _ Router = (*Session)(nil)

// Session is one program loaded into an Engine.
type Session struct {
	engine    *Engine
	program   *translator.Program
	positions *PositionTable
	store     ProgramStore
	path      string

	mu     sync.RWMutex
	closed bool // Guarded by mu.
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithStore sets where program text is written for the engine to load.
func WithStore(store ProgramStore) SessionOption {
	return func(s *Session) {
		s.store = store
	}
}

// NewSession loads p into e. The Engine must be Running. p is loaded into
// its own module named after its predicate, so two live Sessions cannot
// share a predicate name.
func NewSession(ctx context.Context, e *Engine, p *translator.Program, opts ...SessionOption) (*Session, error) {
	if e.State() != Running {
		return nil, ErrEngineNotRunning
	}
	s := &Session{
		engine:    e,
		program:   p,
		positions: NewPositionTable(p.Variables),
		store:     TempStore{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := e.reserve(p.Predicate); err != nil {
		return nil, &LoadError{Program: p.Predicate, Err: err}
	}
	path, err := s.store.Put(p)
	if err != nil {
		e.release(p.Predicate)
		return nil, &LoadError{Program: p.Predicate, Err: err}
	}
	if err := e.load(ctx, p.Predicate, path, p.Predicate, p.Arity()); err != nil {
		if rerr := s.store.Remove(path); rerr != nil {
			log.Warningf("removing rejected program %q: %v", path, rerr)
		}
		e.release(p.Predicate)
		return nil, err
	}
	s.path = path
	loadedPrograms.Inc()
	log.V(1).Infof("loaded program %s/%d from %s", p.Predicate, p.Arity(), path)
	return s, nil
}

// CreateSession compiles t and loads the result into e. A program whose
// committed restrictions carry an error sentinel is returned as a LoadError
// without contacting the engine.
func CreateSession(ctx context.Context, e *Engine, t *translator.Translator, opts ...SessionOption) (*Session, error) {
	p := t.Compile()
	if err := p.Err(); err != nil {
		return nil, &LoadError{Program: p.Predicate, Err: err}
	}
	return NewSession(ctx, e, p, opts...)
}

// Program returns the loaded program.
func (s *Session) Program() *translator.Program {
	return s.program
}

// Positions returns the argument position table.
func (s *Session) Positions() *PositionTable {
	return s.positions
}

// Solve finds the first solution consistent with inputs. Variables missing
// from inputs are left to the engine. On success every program variable is
// assigned. ErrNoSolution reports an exhausted search.
func (s *Session) Solve(ctx context.Context, inputs map[string]int64) (sol Solution, err error) {
	start := time.Now()
	defer func() { observeSolve(start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	args, err := s.positions.marshal(inputs)
	if err != nil {
		return nil, err
	}
	values, err := s.engine.solve(ctx, s.program.Predicate, s.program.Predicate, args)
	if err != nil {
		return nil, err
	}
	return s.positions.unmarshal(values)
}

var errNilOutput = errors.New("SolveInto needs a non-nil output map")

// SolveInto solves with inputs and, on success, writes every variable into
// out, which must be non-nil. It reports false with a nil error when there is
// no solution; out is left untouched unless it returns true.
func (s *Session) SolveInto(ctx context.Context, inputs, out map[string]int64) (bool, error) {
	if out == nil {
		return false, errNilOutput
	}
	sol, err := s.Solve(ctx, inputs)
	if errors.Is(err, ErrNoSolution) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for n, v := range sol {
		out[n] = v
	}
	return true, nil
}

// Close unloads the program and frees its name. The Engine keeps running.
// Closing twice does nothing. Cancelling ctx does not cut the unload request
// short.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	loadedPrograms.Dec()

	var errs []error
	if err := s.engine.unload(context.WithoutCancel(ctx), s.program.Predicate, s.path); err != nil && !errors.Is(err, ErrEngineNotRunning) {
		errs = append(errs, err)
	}
	if err := s.store.Remove(s.path); err != nil {
		errs = append(errs, err)
	}
	s.engine.release(s.program.Predicate)
	return errors.Join(errs...)
}
