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
	"strings"
	"sync"
	"testing"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/require"
)

// block makes fakeTransport wait for the request context.
const block = "<block>"

// fakeTransport answers requests in-process. Replies for ping, load and
// unload default to success; solve replies come from onSolve.
type fakeTransport struct {
	version  string
	onLoad   func(request string) string
	onSolve  func(request string) string
	onUnload func(ctx context.Context) (string, error)

	mu       sync.Mutex
	requests []string
	closed   bool
	killed   bool
}

func newFake() *fakeTransport {
	return &fakeTransport{
		version: "90004",
		onSolve: func(string) string { return "none" },
	}
}

func (f *fakeTransport) roundTrip(ctx context.Context, request string) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, request)
	f.mu.Unlock()

	var reply string
	switch {
	case request == "ping.":
		reply = "ok " + f.version
	case strings.HasPrefix(request, "load("):
		reply = "ok"
		if f.onLoad != nil {
			reply = f.onLoad(request)
		}
	case strings.HasPrefix(request, "unload("):
		if f.onUnload != nil {
			return f.onUnload(ctx)
		}
		reply = "ok"
	case strings.HasPrefix(request, "solve("):
		reply = f.onSolve(request)
	default:
		reply = "error unknown_request"
	}
	if reply == block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return reply, nil
}

func (f *fakeTransport) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) kill() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = true
	return nil
}

// sent returns the requests starting with prefix.
func (f *fakeTransport) sent(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			out = append(out, r)
		}
	}
	return out
}

func withTransport(tr transport) Option {
	return func(o *options) {
		o.launch = func(context.Context, options) (transport, error) {
			return tr, nil
		}
	}
}

// startFake returns a Running Engine backed by f, stopped at test cleanup.
func startFake(t *testing.T, f *fakeTransport) *Engine {
	t.Helper()
	e := NewEngine(withTransport(f))
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { e.Stop() })
	return e
}

func TestEngine_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFake()
	e := NewEngine(withTransport(f))

	require.Equal(t, Uninitialized, e.State())
	require.NoError(t, e.Stop(), "Stop before Start")
	require.Equal(t, Uninitialized, e.State())

	require.NoError(t, e.Start(ctx))
	require.Equal(t, Running, e.State())
	require.Equal(t, semver.MustParse("9.0.4"), e.Version())
	require.NoError(t, e.Start(ctx), "second Start")
	require.Len(t, f.sent("ping."), 1)

	other := NewEngine(withTransport(newFake()))
	require.ErrorIs(t, other.Start(ctx), ErrEngineExists)

	require.NoError(t, e.Stop())
	require.Equal(t, Stopped, e.State())
	require.True(t, f.closed)
	require.NoError(t, e.Stop(), "second Stop")
	require.ErrorIs(t, e.Start(ctx), ErrEngineStopped)

	require.NoError(t, other.Start(ctx))
	require.NoError(t, other.Stop())
}

func TestEngine_UnsupportedVersion(t *testing.T) {
	f := newFake()
	f.version = "60004"
	e := NewEngine(withTransport(f))

	err := e.Start(context.Background())
	require.ErrorIs(t, err, ErrUnsupportedVersion)
	require.Equal(t, Uninitialized, e.State())
	require.True(t, f.killed)

	// The failed Start does not hold the process-wide slot.
	startFake(t, newFake())
}

func TestEngine_MinVersionOption(t *testing.T) {
	e := NewEngine(withTransport(newFake()), WithMinVersion(semver.MustParse("10.0.0")))
	require.ErrorIs(t, e.Start(context.Background()), ErrUnsupportedVersion)
}

func TestEngine_LaunchFailure(t *testing.T) {
	launchErr := errors.New("no runtime")
	e := NewEngine(func(o *options) {
		o.launch = func(context.Context, options) (transport, error) { return nil, launchErr }
	})
	require.ErrorIs(t, e.Start(context.Background()), launchErr)
	require.Equal(t, Uninitialized, e.State())
	startFake(t, newFake())
}

func TestEngine_CancelStopsEngine(t *testing.T) {
	f := newFake()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.onSolve = func(string) string {
		cancel()
		return block
	}
	e := startFake(t, f)

	_, err := e.solve(ctx, "route", "route", nil)

	var se *SolverError
	require.ErrorAs(t, err, &se)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, Stopped, e.State())
	require.True(t, f.killed)

	_, err = e.solve(context.Background(), "route", "route", nil)
	require.ErrorIs(t, err, ErrEngineNotRunning)
}

func TestEngine_SolveReplies(t *testing.T) {
	testCases := []struct {
		name    string
		reply   string
		want    []int64
		wantErr error
	}{
		{name: "solution", reply: "solution 3 -4 0", want: []int64{3, -4, 0}},
		{name: "empty solution", reply: "solution", want: []int64{}},
		{name: "none", reply: "none", wantErr: ErrNoSolution},
	}

	f := newFake()
	e := startFake(t, f)
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			f.onSolve = func(string) string { return test.reply }
			got, err := e.solve(context.Background(), "route", "route", nil)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want, got)
		})
	}

	f.onSolve = func(string) string { return "error type_error(integer,x)" }
	_, err := e.solve(context.Background(), "route", "route", nil)
	var se *SolverError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "type_error(integer,x)", se.Diagnostic)
	require.Equal(t, Running, e.State(), "an engine fault keeps the runtime")

	f.onSolve = func(string) string { return "solution 1 x" }
	_, err = e.solve(context.Background(), "route", "route", nil)
	require.ErrorAs(t, err, &se)
}

func TestParseVersion(t *testing.T) {
	testCases := []struct {
		flag    string
		want    semver.Version
		wantErr bool
	}{
		{flag: "90004", want: semver.MustParse("9.0.4")},
		{flag: "80532", want: semver.MustParse("8.5.32")},
		{flag: "70000", want: semver.MustParse("7.0.0")},
		{flag: "v9", wantErr: true},
	}

	for _, test := range testCases {
		got, err := parseVersion(test.flag)
		if test.wantErr {
			require.Error(t, err, test.flag)
			continue
		}
		require.NoError(t, err, test.flag)
		require.Equal(t, test.want, got, test.flag)
	}
}

func TestQuoteAtom(t *testing.T) {
	require.Equal(t, "'route'", quoteAtom("route"))
	require.Equal(t, `'/tmp/it\'s'`, quoteAtom("/tmp/it's"))
	require.Equal(t, `'C:\\tmp'`, quoteAtom(`C:\tmp`))
}

func TestParseReply(t *testing.T) {
	kind, payload := parseReply("error syntax_error(operator_expected) \n")
	require.Equal(t, "error", kind)
	require.Equal(t, "syntax_error(operator_expected)", payload)

	kind, payload = parseReply("ok")
	require.Equal(t, "ok", kind)
	require.Empty(t, payload)
}
