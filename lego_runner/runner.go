package lego_runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/certkit/Legra/gologger"
	"github.com/certkit/Legra/internal"
	"github.com/certkit/Legra/tracing"
)

var (
	logger = gologger.NewLogger()

	ErrExecFailed = errors.New("lego execution failed")
)

// ExecError carries the exit code and captured (redacted) stderr of a
// failed lego invocation. Unwraps to ErrExecFailed.
type ExecError struct {
	ExitCode int
	Stderr   []string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("lego exited with code %d", e.ExitCode)
}

func (e *ExecError) Unwrap() error {
	return ErrExecFailed
}

// Runner drives the lego CLI to answer DNS-01 challenges. The zero
// value is not usable, call NewRunner.
type Runner struct {
	Binary   string
	WorkDir  string
	CSRPath  string
	CertsDir string
	Timeout  time.Duration
}

func NewRunner() *Runner {
	return &Runner{
		Binary:   Env_LegoBinary,
		WorkDir:  Env_WorkDir,
		CSRPath:  Env_CSRPath,
		CertsDir: Env_CertsDir,
		Timeout:  time.Second * time.Duration(Env_LegoTimeoutSec),
	}
}

// Available reports whether the lego binary can be resolved on PATH
// (or at an absolute Binary path).
func (r *Runner) Available(ctx context.Context) bool {
	_, err := exec.LookPath(r.Binary)
	return err == nil
}

// PushCSR writes the PEM-encoded CSR where the next Run will read it.
func (r *Runner) PushCSR(csr string) error {
	err := os.MkdirAll(filepath.Dir(r.CSRPath), 0o755)
	if err != nil {
		return fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	err = os.WriteFile(r.CSRPath, []byte(csr), 0o644)
	if err != nil {
		return fmt.Errorf("error in os.WriteFile: %w", err)
	}
	return nil
}

// Run invokes lego for the given account and DNS plugin. env carries
// the provider credentials and tuning knobs, appended on top of the
// parent environment. Blocks until lego exits or the timeout fires.
func (r *Runner) Run(ctx context.Context, email, server, plugin string, env map[string]string) error {
	ctx, span := tracing.LegraTracer.Start(ctx, "LegoRun")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	args := []string{
		"--email", email,
		"--accept-tos",
		"--csr", r.CSRPath,
		"--server", server,
		"--dns", plugin,
		"run",
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = r.WorkDir
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	sw := internal.Timer_LegoRun.Start()
	err := cmd.Run()
	sw.Stop()
	if err == nil {
		return nil
	}

	lines := redactSecrets(splitLines(stderr.String()), env)
	for _, line := range lines {
		logger.Error().Str("plugin", plugin).Msg(line)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// killed by the timeout, no exit code to report
		logger.Error().Str("plugin", plugin).Msgf("lego timed out after %s", r.Timeout)
		return &ExecError{
			ExitCode: -1,
			Stderr:   lines,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExecError{
			ExitCode: exitErr.ExitCode(),
			Stderr:   lines,
		}
	}
	return fmt.Errorf("error in cmd.Run: %w", err)
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if int64(len(lines)) >= Env_MaxStderrLines {
			break
		}
	}
	return lines
}

// redactSecrets masks any occurrence of a provider env value so
// credentials never reach the logs.
func redactSecrets(lines []string, env map[string]string) []string {
	for i, line := range lines {
		for _, v := range env {
			if v == "" {
				continue
			}
			line = strings.ReplaceAll(line, v, "****")
		}
		lines[i] = line
	}
	return lines
}
