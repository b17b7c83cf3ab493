// Package executor runs the external dump and archive tools.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Command is a single program invocation. Args are passed to the program as
// an argument vector; nothing is interpreted by a shell.
type Command struct {
	Path string
	Args []string
	Env  map[string]string
}

// String returns the command line for logging. Env is never included.
func (c Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// ExitError reports a program that ran but exited with a non-zero status.
type ExitError struct {
	Path     string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Path, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with status %d", e.Path, e.ExitCode)
}

// Runner starts programs, connecting them into a pipeline.
type Runner interface {
	// Pipe runs cmds with the stdout of each connected to the stdin of the
	// next, and the stdout of the last written to out. It returns the first
	// failure in pipeline order.
	Pipe(ctx context.Context, out io.Writer, cmds ...Command) error
}

// Process implements Runner with os/exec.
type Process struct {
	logger *slog.Logger
}

// ProcessOption configures a Process.
type ProcessOption func(*Process)

// WithProcessLogger sets the logger.
func WithProcessLogger(logger *slog.Logger) ProcessOption {
	return func(p *Process) {
		p.logger = logger
	}
}

// NewProcess creates a new Process.
func NewProcess(opts ...ProcessOption) *Process {
	p := &Process{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Pipe runs cmds as a pipeline.
func (p *Process) Pipe(ctx context.Context, out io.Writer, cmds ...Command) error {
	if len(cmds) == 0 {
		return errors.New("no command to run")
	}

	procs := make([]*exec.Cmd, len(cmds))
	stderrs := make([]*bytes.Buffer, len(cmds))
	for i, c := range cmds {
		p.logger.Debug("executing command", "command", c.String())

		// #nosec G204 -- argv invocation, no shell involved
		cmd := exec.CommandContext(ctx, c.Path, c.Args...)
		if len(c.Env) > 0 {
			cmd.Env = os.Environ()
			for k, v := range c.Env {
				cmd.Env = append(cmd.Env, k+"="+v)
			}
		}
		stderrs[i] = &bytes.Buffer{}
		cmd.Stderr = stderrs[i]
		procs[i] = cmd
	}

	// Connect neighbours with OS pipes so data flows between the children
	// without passing through this process.
	var parentEnds []*os.File
	for i := 0; i < len(procs)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closeAll(parentEnds)
			return fmt.Errorf("failed to create pipe: %w", err)
		}
		procs[i].Stdout = w
		procs[i+1].Stdin = r
		parentEnds = append(parentEnds, r, w)
	}
	procs[len(procs)-1].Stdout = out

	started := 0
	var startErr error
	for _, cmd := range procs {
		if err := cmd.Start(); err != nil {
			startErr = fmt.Errorf("failed to start %s: %w", cmd.Path, err)
			break
		}
		started++
	}
	// The children hold their own copies; closing ours lets EOF propagate.
	closeAll(parentEnds)

	waitErrs := make([]error, started)
	for i := 0; i < started; i++ {
		waitErrs[i] = procs[i].Wait()
	}

	if startErr != nil {
		return startErr
	}

	i := failedStage(waitErrs)
	if i < 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(waitErrs[i], &exitErr) {
		return &ExitError{
			Path:     cmds[i].Path,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderrs[i].String()),
		}
	}
	return fmt.Errorf("%s failed: %w", cmds[i].Path, waitErrs[i])
}

// failedStage returns the index of the stage whose failure is reported, or
// -1 when every stage succeeded. Failures are reported in pipeline order,
// except that a stage killed by a signal (SIGPIPE once its reader has gone)
// yields to a later stage that exited with a status of its own.
func failedStage(errs []error) int {
	first := -1
	for i, err := range errs {
		if err == nil {
			continue
		}
		if !killedBySignal(err) {
			var exitErr *exec.ExitError
			if first < 0 || errors.As(err, &exitErr) {
				return i
			}
		}
		if first < 0 {
			first = i
		}
	}
	return first
}

func killedBySignal(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == -1
}

// lookPath resolves a configured tool name to an executable path.
func lookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found: %w", name, err)
	}
	return nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// Ensure Process implements Runner.
var _ Runner = (*Process)(nil)
