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
	"bufio"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

//go:embed driver.pl
var driverSource []byte

// serveGoal is the entry point defined by driver.pl.
const serveGoal = "serve"

// maxReplySize bounds a single reply line. Engine diagnostics for large
// programs can be long.
const maxReplySize = 4 << 20

var errEngineExited = errors.New("constraint engine process exited")

// transport carries request and reply lines to the engine runtime.
type transport interface {
	// roundTrip sends one request and waits for its reply line.
	roundTrip(ctx context.Context, request string) (string, error)
	// close asks the runtime to exit and waits for it.
	close() error
	// kill terminates the runtime without waiting for the current request.
	kill() error
}

// process runs the driver script in a SWI-Prolog child process.
type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	pumps *errgroup.Group
	dir   string

	once    sync.Once
	waitErr error
}

func launchProcess(ctx context.Context, o options) (transport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "clproute-engine-")
	if err != nil {
		return nil, fmt.Errorf("creating driver directory: %w", err)
	}
	driver := filepath.Join(dir, "driver.pl")
	if err := os.WriteFile(driver, driverSource, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("writing driver: %w", err)
	}

	args := append(append([]string(nil), o.args...), "-g", serveGoal, "-t", "halt", driver)
	// The runtime outlives the Start call, so it is not bound to ctx.
	cmd := exec.Command(o.executable, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("starting %s: %w", o.executable, err)
	}
	log.V(1).Infof("constraint engine started: %s %v (pid %d)", o.executable, args, cmd.Process.Pid)

	p := &process{
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string),
		pumps: &errgroup.Group{},
		dir:   dir,
	}
	p.pumps.Go(func() error {
		defer close(p.lines)
		sc := bufio.NewScanner(stdout)
		sc.Buffer(make([]byte, 0, 64<<10), maxReplySize)
		for sc.Scan() {
			p.lines <- sc.Text()
		}
		return sc.Err()
	})
	p.pumps.Go(func() error {
		sc := bufio.NewScanner(stderr)
		sc.Buffer(make([]byte, 0, 64<<10), maxReplySize)
		for sc.Scan() {
			log.Warningf("constraint engine: %s", sc.Text())
		}
		return sc.Err()
	})
	return p, nil
}

func (p *process) roundTrip(ctx context.Context, request string) (string, error) {
	log.V(2).Infof("constraint engine request: %s", request)
	if _, err := io.WriteString(p.stdin, request+"\n"); err != nil {
		return "", fmt.Errorf("writing request: %w", err)
	}
	select {
	case line, ok := <-p.lines:
		if !ok {
			return "", errEngineExited
		}
		log.V(2).Infof("constraint engine reply: %s", line)
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *process) close() error {
	return p.shutdown(false)
}

func (p *process) kill() error {
	return p.shutdown(true)
}

// shutdown stops the runtime once; later calls return the first result.
func (p *process) shutdown(kill bool) error {
	p.once.Do(func() {
		if kill {
			if err := p.cmd.Process.Kill(); err != nil {
				log.Warningf("killing constraint engine: %v", err)
			}
		}
		// End of input makes the driver halt.
		p.stdin.Close()
		for range p.lines {
		}
		pumpErr := p.pumps.Wait()
		waitErr := p.cmd.Wait()
		if kill {
			// The kill itself is the expected exit status.
			waitErr = nil
		}
		p.waitErr = errors.Join(pumpErr, waitErr)
		if err := os.RemoveAll(p.dir); err != nil {
			log.Warningf("removing driver directory: %v", err)
		}
		log.V(1).Infof("constraint engine exited (killed=%v): %v", kill, p.waitErr)
	})
	return p.waitErr
}
