package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a whole tool invocation when the caller does not
// override it.
const DefaultTimeout = 300 * time.Second

var (
	ErrToolNotFound = errors.New("audit tool not found")
	ErrToolTimeout  = errors.New("audit tool timed out")
	ErrToolFailed   = errors.New("audit tool failed")
	ErrEmptyOutput  = errors.New("audit tool produced no output")
)

// Runner launches the external audit tool as a child process. Each Run call
// owns exactly one child process; concurrent calls share no state.
type Runner struct {
	toolPath string
	timeout  time.Duration
}

// New returns a Runner invoking toolPath with the target URL as its sole
// argument. A non-positive timeout falls back to DefaultTimeout.
func New(toolPath string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{toolPath: toolPath, timeout: timeout}
}

// Run executes the tool against url and returns its raw standard output.
// The timeout is a hard wall-clock bound: on expiry the child is killed
// unconditionally and ErrToolTimeout is returned. The child is never left
// running after Run returns, on any path.
func (r *Runner) Run(ctx context.Context, url string) ([]byte, error) {
	path, err := r.resolveTool()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, url)
	// The tool is a wrapper that spawns its own children (a headless
	// browser), so it gets its own process group and the kill goes to the
	// whole group. Killing only the direct child would leak the browser.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	// Bound Wait in case a pipe holder survives the group kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("tool", path).Str("url", url).Dur("timeout", r.timeout).Msg("Launching audit tool")

	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s", ErrToolTimeout, r.timeout)
	}
	if runErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrToolFailed, detail)
	}
	if len(bytes.TrimSpace(stdout.Bytes())) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrEmptyOutput, url)
	}

	return stdout.Bytes(), nil
}

// resolveTool checks the tool exists before paying launch and timeout
// latency. Paths are stat'ed directly, bare names go through PATH lookup.
func (r *Runner) resolveTool() (string, error) {
	if r.toolPath == "" {
		return "", fmt.Errorf("%w: no tool configured", ErrToolNotFound)
	}
	if strings.ContainsRune(r.toolPath, os.PathSeparator) {
		if _, err := os.Stat(r.toolPath); err != nil {
			return "", fmt.Errorf("%w at %s", ErrToolNotFound, r.toolPath)
		}
		return r.toolPath, nil
	}
	path, err := exec.LookPath(r.toolPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s not in PATH", ErrToolNotFound, r.toolPath)
	}
	return path, nil
}
