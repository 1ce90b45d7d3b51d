package execx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"cluster-wizard/internal/domain"
)

const (
	// DefaultTimeout bounds general-purpose command execution.
	DefaultTimeout = 5 * time.Minute
	// ExtendedTimeout is used for long installs and cluster operations.
	ExtendedTimeout = 10 * time.Minute
	// ProbeTimeout bounds presence/version probe commands.
	ProbeTimeout = 10 * time.Second

	// MaxCapturedOutput caps combined stdout+stderr retained per command.
	MaxCapturedOutput = 10 << 20
)

// Options control one command execution.
type Options struct {
	Timeout  time.Duration
	OnOutput func(chunk string)
}

// Runner executes shell command lines and normalizes their outcomes.
type Runner struct {
	goos      string
	shell     string
	maxOutput int
}

// NewRunner builds a runner for the current host OS.
func NewRunner() *Runner {
	return &Runner{
		goos:      goruntime.GOOS,
		shell:     "/bin/sh",
		maxOutput: MaxCapturedOutput,
	}
}

// Run executes one shell command line and always returns a populated result.
// Failures (non-zero exit, timeout, spawn error) are reported through the
// result value, never as an error.
func (r *Runner) Run(ctx context.Context, commandLine string, opts Options) domain.ExecutionResult {
	if strings.TrimSpace(commandLine) == "" {
		return domain.ExecutionResult{
			Succeeded: false,
			ExitCode:  -1,
			Stderr:    "command line is empty",
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, args := r.shellInvocation(commandLine)
	cmd := exec.CommandContext(runCtx, name, args...)

	sink := newOutputSink(r.maxOutput, opts.OnOutput)
	var stdout, stderr strings.Builder
	cmd.Stdout = sink.writer(&stdout)
	cmd.Stderr = sink.writer(&stderr)

	err := cmd.Run()
	result := domain.ExecutionResult{
		Succeeded: err == nil,
		ExitCode:  0,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
	}
	if err == nil {
		return result
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("command timed out after %s", timeout))
		return result
	}
	if result.Stderr == "" {
		result.Stderr = err.Error()
	}
	return result
}

// Probe runs a command for its exit status only, with a short timeout.
// A failing or timed-out probe reports false and never raises.
func (r *Runner) Probe(ctx context.Context, commandLine string) bool {
	result := r.Run(ctx, commandLine, Options{Timeout: ProbeTimeout})
	return result.Succeeded
}

// shellInvocation wraps a command line for the host shell. Windows commands
// go through cmd.exe with lone metacharacters escaped so that chained
// commands (&&) and pipes parse the same way across shells.
func (r *Runner) shellInvocation(commandLine string) (string, []string) {
	if r.goos == "windows" {
		return "cmd", []string{"/c", escapeWindowsMeta(commandLine)}
	}
	return r.shell, []string{"-c", commandLine}
}

// escapeWindowsMeta escapes single &, <, > for cmd.exe. A && pair is left
// intact so command chaining keeps working.
func escapeWindowsMeta(commandLine string) string {
	var b strings.Builder
	b.Grow(len(commandLine))
	for i := 0; i < len(commandLine); i++ {
		c := commandLine[i]
		switch c {
		case '<', '>':
			b.WriteByte('^')
			b.WriteByte(c)
		case '&':
			if i+1 < len(commandLine) && commandLine[i+1] == '&' {
				b.WriteString("&&")
				i++
			} else {
				b.WriteString("^&")
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// appendLine joins non-empty text with a trailing line.
func appendLine(text, line string) string {
	if strings.TrimSpace(text) == "" {
		return line
	}
	return strings.TrimRight(text, "\n") + "\n" + line
}

// outputSink shares one capture budget between stdout and stderr and
// forwards chunks to the optional streaming callback in arrival order.
type outputSink struct {
	mu      sync.Mutex
	limit   int
	written int
	onChunk func(string)
}

func newOutputSink(limit int, onChunk func(string)) *outputSink {
	return &outputSink{limit: limit, onChunk: onChunk}
}

// writer returns a stream writer accumulating into the given builder.
func (s *outputSink) writer(buf *strings.Builder) *streamWriter {
	return &streamWriter{sink: s, buf: buf}
}

type streamWriter struct {
	sink *outputSink
	buf  *strings.Builder
}

// Write captures up to the shared budget and keeps draining afterwards so
// the child process never blocks on a full pipe.
func (w *streamWriter) Write(p []byte) (int, error) {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()

	remaining := w.sink.limit - w.sink.written
	if remaining > 0 {
		take := p
		if len(take) > remaining {
			take = take[:remaining]
		}
		w.buf.Write(take)
		w.sink.written += len(take)
		if w.sink.onChunk != nil {
			w.sink.onChunk(string(take))
		}
	}
	return len(p), nil
}

// NewRunnerForTests constructs a runner with injectable OS and limits.
func NewRunnerForTests(goos, shell string, maxOutput int) *Runner {
	if maxOutput <= 0 {
		maxOutput = MaxCapturedOutput
	}
	return &Runner{
		goos:      goos,
		shell:     shell,
		maxOutput: maxOutput,
	}
}
