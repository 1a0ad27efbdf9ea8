package ffrunner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"clipforge/internal/services"
)

// shellRunner builds a CLI that executes an inline shell script, standing in
// for the transcoder binary.
func shellRunner(opts ...Option) *CLI {
	return NewCLI("/bin/sh", opts...)
}

func TestRunStreamsMergedOutput(t *testing.T) {
	var mu sync.Mutex
	var lines []string

	runner := shellRunner()
	err := runner.Run(context.Background(), []string{"-c", "echo out1; echo err1 >&2; echo out2"}, func(line string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lines) != 3 {
		t.Fatalf("lines = %v, want 3 entries", lines)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "err1") {
		t.Fatalf("stderr not merged: %v", lines)
	}
}

func TestRunNonZeroExitCarriesCodeAndTail(t *testing.T) {
	runner := shellRunner()
	err := runner.Run(context.Background(), []string{"-c", "echo first; echo boom: no such filter >&2; exit 3"}, nil)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", exitErr.ExitCode)
	}
	if !strings.Contains(exitErr.Error(), "status 3") {
		t.Fatalf("message missing code: %q", exitErr.Error())
	}
	if !strings.Contains(exitErr.Error(), "no such filter") {
		t.Fatalf("message missing diagnostic tail: %q", exitErr.Error())
	}
}

func TestRunTailBounded(t *testing.T) {
	runner := shellRunner()
	err := runner.Run(context.Background(), []string{"-c", "for i in $(seq 1 50); do echo line$i; done; exit 1"}, nil)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if len(exitErr.Tail) != tailLines {
		t.Fatalf("tail length = %d, want %d", len(exitErr.Tail), tailLines)
	}
	if exitErr.Tail[len(exitErr.Tail)-1] != "line50" {
		t.Fatalf("tail should keep the newest lines: %v", exitErr.Tail)
	}
}

func TestRunSpawnFailure(t *testing.T) {
	runner := NewCLI("/nonexistent/transcoder-binary")
	err := runner.Run(context.Background(), nil, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	runner := shellRunner(WithTimeout(150 * time.Millisecond))

	start := time.Now()
	err := runner.Run(context.Background(), []string{"-c", "sleep 30"}, nil)
	elapsed := time.Since(start)

	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed > 10*time.Second {
		t.Fatalf("timeout did not interrupt promptly: %s", elapsed)
	}
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	runner := shellRunner()
	err := runner.Run(ctx, []string{"-c", "sleep 30"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
