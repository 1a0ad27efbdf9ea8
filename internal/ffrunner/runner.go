package ffrunner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"clipforge/internal/services"
)

// tailLines is how many diagnostic lines an ExitError retains.
const tailLines = 8

// LogFunc receives one diagnostic line from the transcoder. It is used only
// for operator feedback; log content is never parsed for control flow.
type LogFunc func(line string)

// Runner executes the external transcoder with a prepared argument list.
type Runner interface {
	Run(ctx context.Context, args []string, onLog LogFunc) error
}

// ExitError reports a non-zero transcoder exit along with the tail of its
// diagnostic output.
type ExitError struct {
	ExitCode int
	Tail     []string
}

func (e *ExitError) Error() string {
	if len(e.Tail) == 0 {
		return fmt.Sprintf("transcoder exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("transcoder exited with status %d: %s", e.ExitCode, e.Tail[len(e.Tail)-1])
}

// Option configures the CLI runner.
type Option func(*CLI)

// WithTimeout bounds each invocation; zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		c.timeout = timeout
	}
}

// CLI runs the ffmpeg binary and streams its merged diagnostic output
// line-by-line.
type CLI struct {
	binary  string
	timeout time.Duration
}

// NewCLI constructs a runner for the given binary, defaulting to "ffmpeg".
func NewCLI(binary string, opts ...Option) *CLI {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cli := &CLI{binary: binary}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Run spawns the binary, feeds each diagnostic line to onLog, and returns
// nil only when the process exits with status zero. Cancellation and the
// configured timeout kill the child's whole process group so filter
// subprocesses cannot linger.
func (c *CLI) Run(ctx context.Context, args []string, onLog LogFunc) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "runner", "pipe", "", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "runner", "start", c.binary, err)
	}

	tail := make([]string, 0, tailLines)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(tail) == tailLines {
			copy(tail, tail[1:])
			tail = tail[:tailLines-1]
		}
		tail = append(tail, line)
		if onLog != nil {
			onLog(line)
		}
	}

	waitErr := cmd.Wait()
	if waitErr == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "runner", "execute",
				fmt.Sprintf("transcode exceeded %s", c.timeout), ctxErr)
		}
		return ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return &ExitError{
			ExitCode: exitErr.ExitCode(),
			Tail:     append([]string(nil), tail...),
		}
	}
	return services.Wrap(services.ErrExternalTool, "runner", "execute", "", waitErr)
}

var _ Runner = (*CLI)(nil)
