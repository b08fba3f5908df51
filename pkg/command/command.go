// pkg/command/command.go - synchronous external process execution.

package command

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"github.com/windowsadmins/officedeploy/pkg/logging"
)

// Runner launches one external process, waits for it to finish, and reports
// its exit code. A non-zero exit is not an error here; callers decide what a
// given code means. The error return covers processes that never ran.
type Runner interface {
	Run(name string, args ...string) (exitCode int, output string, err error)
}

// ExecRunner runs real processes with the console window hidden.
type ExecRunner struct{}

// NewRunner returns the default process runner.
func NewRunner() Runner {
	return ExecRunner{}
}

// Run executes a command, waits for completion, and returns its exit code
// along with combined stdout/stderr.
func (ExecRunner) Run(name string, args ...string) (int, string, error) {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	logging.Debug("Executing process", "command", name, "args", args)

	err := cmd.Run()
	combined := out.String() + stderr.String()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			logging.Debug("Process finished with non-zero exit code", "command", name, "exit_code", code)
			return code, combined, nil
		}
		return -1, combined, fmt.Errorf("failed to start %s: %w", name, err)
	}

	return 0, combined, nil
}
