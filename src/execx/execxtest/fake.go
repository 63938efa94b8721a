// Package execxtest provides a scripted execx.Runner for tests.
package execxtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"screen-tool/src/execx"
)

// Call records one invocation made through the fake.
type Call struct {
	Name string
	Args []string
}

// Line returns the call as a single space-joined command line.
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response scripts the outcome for a command name.
type Response struct {
	Output []byte
	Err    error
	// Hook runs before the response is returned; grabbers use it to create
	// the output file the real tool would have written.
	Hook func(args []string) error
}

// Runner is a fake execx.Runner. Commands without a scripted response
// succeed with empty output.
type Runner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []Call
	started   []*Process
	StartErr  error
}

func NewRunner() *Runner {
	return &Runner{responses: make(map[string]Response)}
}

func (r *Runner) On(name string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[name] = resp
	return r
}

func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Started returns the processes launched through Start, in order.
func (r *Runner) Started() []*Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Process, len(r.started))
	copy(out, r.started)
	return out
}

func (r *Runner) record(name string, args []string) Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Name: name, Args: append([]string(nil), args...)})
	return r.responses[name]
}

func (r *Runner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	resp := r.record(name, args)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if resp.Hook != nil {
		if err := resp.Hook(args); err != nil {
			return nil, err
		}
	}
	return resp.Output, resp.Err
}

func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	_, err := r.Output(ctx, name, args...)
	return err
}

func (r *Runner) Start(name string, args ...string) (execx.Process, error) {
	r.record(name, args)
	if r.StartErr != nil {
		return nil, r.StartErr
	}
	p := NewProcess(len(r.Started()) + 1000)
	r.mu.Lock()
	r.started = append(r.started, p)
	r.mu.Unlock()
	return p, nil
}

// ExitError is a non-zero exit status, as returned by a real command.
type ExitError int

func (e ExitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func (e ExitError) ExitCode() int { return int(e) }

// ErrKilled is the Wait error of a fake process that was killed.
var ErrKilled = errors.New("signal: killed")

// Process is a fake child process. It exits when interrupted or killed, or
// when Exit is called, unless IgnoreInterrupt is set.
type Process struct {
	pid             int
	mu              sync.Mutex
	done            chan struct{}
	err             error
	interrupts      int
	killed          bool
	IgnoreInterrupt bool
}

func NewProcess(pid int) *Process {
	return &Process{pid: pid, done: make(chan struct{})}
}

func (p *Process) Pid() int { return p.pid }

func (p *Process) Interrupt() error {
	p.mu.Lock()
	p.interrupts++
	ignore := p.IgnoreInterrupt
	p.mu.Unlock()
	if !ignore {
		p.Exit(nil)
	}
	return nil
}

func (p *Process) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.Exit(ErrKilled)
	return nil
}

// Exit makes the process terminate with err. Later calls are no-ops.
func (p *Process) Exit(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return
	default:
	}
	p.err = err
	close(p.done)
}

func (p *Process) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Process) Interrupts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interrupts
}

func (p *Process) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}
