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

// Package solver runs compiled clpfd programs on a SWI-Prolog runtime.
//
// An Engine owns the runtime. A Session loads one program into the Engine and
// answers queries against it: known variable values go in by name, are placed
// at the argument positions fixed by the program's sorted variable list, and
// the first labeled solution comes back as a name-keyed Solution.
//
//	e := solver.NewEngine()
//	if err := e.Start(ctx); err != nil { ... }
//	defer e.Stop()
//	s, err := solver.NewSession(ctx, e, program)
//	...
//	sol, err := s.Solve(ctx, map[string]int64{"a": 5})
package solver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/blang/semver/v4"
	log "github.com/golang/glog"
	"golang.org/x/sync/semaphore"
)

// State is the lifecycle state of an Engine.
type State int

const (
	// Uninitialized is the state of an Engine that was never started.
	Uninitialized State = iota
	// Running is the state of a started Engine that accepts requests.
	Running
	// Stopped is terminal: a stopped Engine cannot be restarted.
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	// DefaultExecutable is the SWI-Prolog binary looked up on PATH.
	DefaultExecutable = "swipl"
)

var (
	// DefaultArgs silence the banner and skip the user init file.
	DefaultArgs = []string{"-q", "-f", "none"}
	// DefaultMinVersion is the oldest runtime Start accepts.
	DefaultMinVersion = semver.MustParse("7.0.0")
)

// active is the Engine currently Running in this process, if any.
var active atomic.Pointer[Engine]

type options struct {
	executable string
	args       []string
	minVersion semver.Version
	launch     func(context.Context, options) (transport, error)
}

// Option configures an Engine.
type Option func(*options)

// WithExecutable sets the runtime binary.
func WithExecutable(path string) Option {
	return func(o *options) {
		o.executable = path
	}
}

// WithArgs replaces the runtime's leading command-line arguments.
func WithArgs(args ...string) Option {
	return func(o *options) {
		o.args = append([]string(nil), args...)
	}
}

// WithMinVersion sets the oldest runtime version Start accepts.
func WithMinVersion(v semver.Version) Option {
	return func(o *options) {
		o.minVersion = v
	}
}

// Engine is the process-wide constraint runtime.
//
// Requests are served one at a time. Sessions sharing an Engine may be used
// from several goroutines.
type Engine struct {
	opts options
	sem  *semaphore.Weighted

	mu      sync.Mutex
	state   State          // Guarded by mu.
	tr      transport      // Guarded by mu.
	version semver.Version // Guarded by mu.
	units   map[string]struct{}
}

// NewEngine returns an Uninitialized Engine.
func NewEngine(opts ...Option) *Engine {
	o := options{
		executable: DefaultExecutable,
		args:       append([]string(nil), DefaultArgs...),
		minVersion: DefaultMinVersion,
		launch:     launchProcess,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		opts:  o,
		sem:   semaphore.NewWeighted(1),
		units: map[string]struct{}{},
	}
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Version returns the runtime version reported at Start.
func (e *Engine) Version() semver.Version {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Start launches the runtime and checks its version. Starting a Running
// Engine does nothing. Only one Engine may be Running per process.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Running:
		return nil
	case Stopped:
		return ErrEngineStopped
	}
	if !active.CompareAndSwap(nil, e) {
		return ErrEngineExists
	}

	tr, err := e.opts.launch(ctx, e.opts)
	if err != nil {
		active.CompareAndSwap(e, nil)
		return fmt.Errorf("launching constraint engine: %w", err)
	}
	version, err := handshake(ctx, tr)
	if err == nil && version.LT(e.opts.minVersion) {
		err = fmt.Errorf("%w: runtime is %v, need at least %v", ErrUnsupportedVersion, version, e.opts.minVersion)
	}
	if err != nil {
		if kerr := tr.kill(); kerr != nil {
			log.Warningf("discarding constraint engine: %v", kerr)
		}
		active.CompareAndSwap(e, nil)
		return err
	}

	e.tr = tr
	e.version = version
	e.state = Running
	log.Infof("constraint engine %v running", version)
	return nil
}

// Stop shuts the runtime down. It is a no-op unless the Engine is Running.
// A request in flight is aborted.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.state != Running {
		e.mu.Unlock()
		return nil
	}
	tr := e.tr
	e.state = Stopped
	e.tr = nil
	e.mu.Unlock()
	active.CompareAndSwap(e, nil)

	if !e.sem.TryAcquire(1) {
		log.Warningf("stopping constraint engine with a request in flight")
		return tr.kill()
	}
	defer e.sem.Release(1)
	return tr.close()
}

// abort kills the runtime after a failed round trip. The Engine is Stopped
// afterwards since the request/reply stream can no longer be trusted.
func (e *Engine) abort(cause error) {
	e.mu.Lock()
	if e.state != Running {
		e.mu.Unlock()
		return
	}
	tr := e.tr
	e.state = Stopped
	e.tr = nil
	e.mu.Unlock()
	active.CompareAndSwap(e, nil)

	log.Errorf("constraint engine aborted: %v", cause)
	if err := tr.kill(); err != nil {
		log.Warningf("killing constraint engine: %v", err)
	}
}

// do sends one request and returns the reply line.
func (e *Engine) do(ctx context.Context, request string) (string, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer e.sem.Release(1)

	e.mu.Lock()
	tr, state := e.tr, e.state
	e.mu.Unlock()
	if state != Running {
		return "", ErrEngineNotRunning
	}

	reply, err := tr.roundTrip(ctx, request)
	if err != nil {
		e.abort(err)
		return "", err
	}
	return reply, nil
}

// reserve claims a module name for a Session.
func (e *Engine) reserve(unit string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.units[unit]; ok {
		return ErrNameClash
	}
	e.units[unit] = struct{}{}
	return nil
}

func (e *Engine) release(unit string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.units, unit)
}

// load consults file into module unit and checks that pred/arity exists.
func (e *Engine) load(ctx context.Context, unit, file, pred string, arity int) error {
	req := fmt.Sprintf("load(%s,%s,%s,%d).", quoteAtom(unit), quoteAtom(file), quoteAtom(pred), arity)
	reply, err := e.do(ctx, req)
	if err != nil {
		return &LoadError{Program: pred, Err: err}
	}
	kind, payload := parseReply(reply)
	switch kind {
	case "ok":
		return nil
	case "error":
		le := &LoadError{Program: pred, Diagnostic: payload}
		if strings.HasPrefix(payload, "name_clash(") {
			le.Err = ErrNameClash
		}
		return le
	default:
		return &LoadError{Program: pred, Err: fmt.Errorf("unexpected reply %q", reply)}
	}
}

func (e *Engine) unload(ctx context.Context, unit, file string) error {
	reply, err := e.do(ctx, fmt.Sprintf("unload(%s,%s).", quoteAtom(unit), quoteAtom(file)))
	if err != nil {
		return err
	}
	if kind, payload := parseReply(reply); kind != "ok" {
		return fmt.Errorf("unloading %s: %s", file, payload)
	}
	return nil
}

// solve queries pred in module unit. args are positional terms: integer
// literals or `_` for unbound slots.
func (e *Engine) solve(ctx context.Context, unit, pred string, args []string) ([]int64, error) {
	req := fmt.Sprintf("solve(%s,%s,[%s]).", quoteAtom(unit), quoteAtom(pred), strings.Join(args, ","))
	reply, err := e.do(ctx, req)
	if err != nil {
		return nil, &SolverError{Err: err}
	}
	kind, payload := parseReply(reply)
	switch kind {
	case "solution":
		fields := strings.Fields(payload)
		values := make([]int64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return nil, &SolverError{Diagnostic: reply, Err: err}
			}
			values[i] = v
		}
		return values, nil
	case "none":
		return nil, ErrNoSolution
	case "error":
		return nil, &SolverError{Diagnostic: payload}
	default:
		return nil, &SolverError{Diagnostic: reply, Err: fmt.Errorf("unexpected reply")}
	}
}

// handshake pings the runtime and decodes its version flag.
func handshake(ctx context.Context, tr transport) (semver.Version, error) {
	reply, err := tr.roundTrip(ctx, "ping.")
	if err != nil {
		return semver.Version{}, fmt.Errorf("pinging constraint engine: %w", err)
	}
	kind, payload := parseReply(reply)
	if kind != "ok" {
		return semver.Version{}, fmt.Errorf("pinging constraint engine: unexpected reply %q", reply)
	}
	return parseVersion(payload)
}

// parseVersion decodes the runtime's integer version flag, where 90004 is
// 9.0.4.
func parseVersion(flag string) (semver.Version, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(flag), 10, 64)
	if err != nil {
		return semver.Version{}, fmt.Errorf("parsing engine version %q: %w", flag, err)
	}
	return semver.Version{Major: n / 10000, Minor: n / 100 % 100, Patch: n % 100}, nil
}

// parseReply splits a reply line into its keyword and the rest of the line.
func parseReply(line string) (string, string) {
	kind, payload, _ := strings.Cut(strings.TrimSpace(line), " ")
	return kind, payload
}

// quoteAtom renders s as a quoted Prolog atom.
func quoteAtom(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
