// Package execx is the seam between the application and the external
// command-line tools it drives (selector, grabber, encoder, audio lister).
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"screen-tool/src/logutil"
)

// ErrToolMissing is returned when an external tool is not on PATH.
var ErrToolMissing = errors.New("external tool not found")

// Runner runs external commands.
type Runner interface {
	// Output runs the command to completion and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Run runs the command to completion, discarding output.
	Run(ctx context.Context, name string, args ...string) error
	// Start launches a long-running command and returns immediately.
	Start(name string, args ...string) (Process, error)
}

// Process is a started child process.
type Process interface {
	Pid() int
	// Interrupt asks the process to finish cleanly (SIGINT on unix).
	Interrupt() error
	Kill() error
	// Wait blocks until the process exits. It may be called more than once.
	Wait() error
}

// ExecRunner runs commands with os/exec. Env entries are appended to the
// inherited environment of every command.
type ExecRunner struct {
	Env []string
}

func NewRunner(env ...string) *ExecRunner {
	return &ExecRunner{Env: env}
}

func (r *ExecRunner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := r.command(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	log.Debug().Str("cmd", name).Strs("args", args).Msg("exec output")
	out, err := cmd.Output()
	if err != nil {
		return out, wrapExecError(name, err, stderr.String())
	}
	return out, nil
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	log.Debug().Str("cmd", name).Strs("args", args).Msg("exec run")
	if err := cmd.Run(); err != nil {
		return wrapExecError(name, err, stderr.String())
	}
	return nil
}

func (r *ExecRunner) Start(name string, args ...string) (Process, error) {
	cmd := r.command(context.Background(), name, args...)
	log.Debug().Str("cmd", name).Strs("args", args).Msg("exec start")
	if err := cmd.Start(); err != nil {
		return nil, wrapExecError(name, err, "")
	}
	p := &process{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *process) Pid() int { return p.cmd.Process.Pid }

func (p *process) Interrupt() error { return interrupt(p.cmd.Process) }

func (p *process) Kill() error { return p.cmd.Process.Kill() }

func (p *process) Wait() error {
	<-p.done
	return p.err
}

func wrapExecError(name string, err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrToolMissing, name)
	}
	if msg := logutil.SanitizeForLog(strings.TrimSpace(stderr)); msg != "" {
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// ExitCode extracts the exit status of a finished command, or -1.
func ExitCode(err error) int {
	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
