// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"arbor-cli/internal/scm"
)

func TestRunHook(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := RunHook(context.Background(), "echo deployed to $PWD", t.TempDir(), nil, &out, &out)
	if err != nil {
		t.Fatalf("RunHook failed: %v", err)
	}
	if !strings.Contains(out.String(), "deployed to") {
		t.Errorf("hook output = %q", out.String())
	}
}

func TestRunHookEnvironment(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	env := []string{"ARBOR_PROGRAM=demo"}
	err := RunHook(context.Background(), "echo program=$ARBOR_PROGRAM", t.TempDir(), env, &out, &out)
	if err != nil {
		t.Fatalf("RunHook failed: %v", err)
	}
	if !strings.Contains(out.String(), "program=demo") {
		t.Errorf("hook output = %q", out.String())
	}
}

func TestRunHookExitStatus(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := RunHook(context.Background(), "exit 7", t.TempDir(), nil, &out, &out)

	var procErr *scm.ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("error = %v, want *scm.ProcessError", err)
	}
	if procErr.ExitCode != 7 {
		t.Errorf("exit code = %d, want 7", procErr.ExitCode)
	}
}

func TestRunHookSyntaxError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := RunHook(context.Background(), "if then fi;;", t.TempDir(), nil, &out, &out)
	if err == nil {
		t.Fatal("a malformed hook script should fail to parse")
	}
}
