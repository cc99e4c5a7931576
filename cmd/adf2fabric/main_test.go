package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fabric-tools/adf2fabric/internal/migration"
)

func TestEmitCommandError_StructuredForScopedCommands(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")
	setCommandExecutionContext(commandExecutionContext{
		CommandPath:       "adf2fabric migrate",
		UsesStructuredLog: true,
	})
	t.Cleanup(resetCommandExecutionContext)

	var out bytes.Buffer
	emitCommandError(errors.New("boom"), "command failed", 1, &out)

	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected structured log output")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got := payload["app"]; got != "adf2fabric" {
		t.Fatalf("app = %v, want %q", got, "adf2fabric")
	}
	if got := payload["command"]; got != "adf2fabric migrate" {
		t.Fatalf("command = %v, want %q", got, "adf2fabric migrate")
	}
	if got := payload["exit_code"]; got != float64(1) {
		t.Fatalf("exit_code = %v, want %v", got, 1)
	}
	if got := payload["error"]; got != "boom" {
		t.Fatalf("error = %v, want %q", got, "boom")
	}
}

func TestEmitCommandError_FallsBackToJSONWhenLoggingEnvInvalid(t *testing.T) {
	t.Setenv("LOG_FORMAT", "invalid")
	t.Setenv("LOG_LEVEL", "info")
	setCommandExecutionContext(commandExecutionContext{
		CommandPath:       "adf2fabric analyze",
		UsesStructuredLog: true,
	})
	t.Cleanup(resetCommandExecutionContext)

	var out bytes.Buffer
	emitCommandError(errors.New("boom"), "command failed", 1, &out)

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out.String())), &payload); err != nil {
		t.Fatalf("expected JSON fallback log, got parse error: %v", err)
	}
}

func TestEmitCommandError_PlainOutputForNonScopedCommands(t *testing.T) {
	setCommandExecutionContext(commandExecutionContext{
		CommandPath:       "adf2fabric version",
		UsesStructuredLog: false,
	})
	t.Cleanup(resetCommandExecutionContext)

	var out bytes.Buffer
	emitCommandError(errors.New("plain boom"), "command failed", 1, &out)
	if got := out.String(); got != "plain boom\n" {
		t.Fatalf("output = %q, want %q", got, "plain boom\n")
	}

	out.Reset()
	emitCommandError(context.Canceled, "command canceled", exitCodeCanceled, &out)
	if got := out.String(); got != "canceled\n" {
		t.Fatalf("output = %q, want %q", got, "canceled\n")
	}
}

func TestRunMainExitCodes(t *testing.T) {
	t.Cleanup(resetCommandExecutionContext)
	resetCommandExecutionContext()

	partial := &migration.PartialFailureError{Failed: 1, Total: 3, Err: errors.New("pipeline \"x\" failed")}
	tests := []struct {
		name       string
		err        error
		want       int
		wantStderr bool
	}{
		{name: "success", err: nil, want: 0},
		{name: "plain error", err: errors.New("bad template"), want: exitCodeFailure, wantStderr: true},
		{name: "canceled", err: context.Canceled, want: exitCodeCanceled, wantStderr: true},
		{name: "partial failure", err: commandError(partial), want: exitCodePartialFailure, wantStderr: true},
		{name: "silent cancel", err: commandError(fmt.Errorf("run: %w", context.Canceled)), want: exitCodeCanceled},
		{name: "template error", err: commandError(errors.New("document is empty")), want: exitCodeFailure, wantStderr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stderr bytes.Buffer
			got := runMain(func() error { return tc.err }, &stderr)
			if got != tc.want {
				t.Fatalf("runMain() = %d, want %d", got, tc.want)
			}
			if (stderr.Len() > 0) != tc.wantStderr {
				t.Fatalf("stderr = %q, wantStderr %v", stderr.String(), tc.wantStderr)
			}
		})
	}
}

func TestExitCodeForError_PartialFailureIsStructured(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")
	setCommandExecutionContext(commandExecutionContext{
		CommandPath:       "adf2fabric migrate",
		UsesStructuredLog: true,
	})
	t.Cleanup(resetCommandExecutionContext)

	var out bytes.Buffer
	err := commandError(&migration.PartialFailureError{Failed: 2, Total: 5, Err: errors.New("boom")})
	if got := exitCodeForError(err, &out); got != exitCodePartialFailure {
		t.Fatalf("exitCodeForError() = %d, want %d", got, exitCodePartialFailure)
	}

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &payload); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if payload["msg"] != "migration incomplete" || payload["failed_pipelines"] != float64(2) || payload["total_pipelines"] != float64(5) {
		t.Fatalf("payload = %v", payload)
	}
}
