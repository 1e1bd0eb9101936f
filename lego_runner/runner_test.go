package lego_runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeFakeLego drops an executable shell script named "lego" into a
// temp dir and puts that dir first on PATH.
func writeFakeLego(t *testing.T, script string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "lego")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func testRunner(t *testing.T) *Runner {
	return &Runner{
		Binary:   "lego",
		WorkDir:  t.TempDir(),
		CSRPath:  filepath.Join(t.TempDir(), "csr.pem"),
		CertsDir: t.TempDir(),
		Timeout:  time.Second * 10,
	}
}

func TestRunSuccess(t *testing.T) {
	writeFakeLego(t, "exit 0")
	r := testRunner(t)
	err := r.Run(context.Background(), "a@b.com", "https://acme.example/directory", "gandiv5", nil)
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunExitError(t *testing.T) {
	writeFakeLego(t, `echo "auth failed for key sekrit-value" >&2
echo "giving up" >&2
exit 3`)
	r := testRunner(t)
	err := r.Run(context.Background(), "a@b.com", "https://acme.example/directory", "gandiv5", map[string]string{
		"GANDIV5_API_KEY": "sekrit-value",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrExecFailed) {
		t.Fatalf("expected ErrExecFailed, got %v", err)
	}
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %T", err)
	}
	if execErr.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", execErr.ExitCode)
	}
	for _, line := range execErr.Stderr {
		if strings.Contains(line, "sekrit-value") {
			t.Fatalf("credential leaked into stderr: %s", line)
		}
	}
	if !strings.Contains(execErr.Stderr[0], "****") {
		t.Fatalf("expected redaction marker, got %s", execErr.Stderr[0])
	}
}

func TestRunTimeout(t *testing.T) {
	writeFakeLego(t, "sleep 5")
	r := testRunner(t)
	r.Timeout = time.Millisecond * 100
	err := r.Run(context.Background(), "a@b.com", "https://acme.example/directory", "gandiv5", nil)
	if !errors.Is(err, ErrExecFailed) {
		t.Fatalf("expected ErrExecFailed, got %v", err)
	}
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %T", err)
	}
	if execErr.ExitCode != -1 {
		t.Fatalf("expected exit code -1 for a timed out run, got %d", execErr.ExitCode)
	}
}

func TestAvailable(t *testing.T) {
	r := testRunner(t)
	r.Binary = "definitely-not-a-real-binary-name"
	if r.Available(context.Background()) {
		t.Fatal("expected unavailable")
	}
	writeFakeLego(t, "exit 0")
	r.Binary = "lego"
	if !r.Available(context.Background()) {
		t.Fatal("expected available")
	}
}

func TestPushCSR(t *testing.T) {
	r := testRunner(t)
	r.CSRPath = filepath.Join(t.TempDir(), "nested", "csr.pem")
	err := r.PushCSR("-----BEGIN CERTIFICATE REQUEST-----\nabc\n-----END CERTIFICATE REQUEST-----\n")
	if err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(r.CSRPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "CERTIFICATE REQUEST") {
		t.Fatalf("unexpected csr content: %s", content)
	}
}

func TestRedactSecrets(t *testing.T) {
	lines := redactSecrets([]string{"key abc123 rejected", "no secrets here"}, map[string]string{
		"API_KEY": "abc123",
		"EMPTY":   "",
	})
	if lines[0] != "key **** rejected" {
		t.Fatalf("expected redacted line, got %s", lines[0])
	}
	if lines[1] != "no secrets here" {
		t.Fatalf("unexpected mutation: %s", lines[1])
	}
}
