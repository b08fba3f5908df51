// pkg/toolkit/toolkit.go - deployment session lifecycle and exit codes.

package toolkit

import (
	"fmt"
	"os"
	"strings"

	"github.com/windowsadmins/officedeploy/pkg/command"
	"github.com/windowsadmins/officedeploy/pkg/config"
	"github.com/windowsadmins/officedeploy/pkg/logging"
)

// Exit codes. 0 and the 600xx range belong to the toolkit itself; the 69xxx
// range is reserved for deployment-specific failures.
const (
	ExitSuccess          = 0
	ExitGenericFailure   = 60001
	ExitBootstrapFailure = 60008
	ExitDeferred         = 60012
	ExitInvalidProduct   = 69001
	ExitDiskSpace        = 69002
)

// DeployType selects the flow for a run.
type DeployType string

const (
	DeployInstall   DeployType = "install"
	DeployUninstall DeployType = "uninstall"
)

// ParseDeployType validates a raw deployment type string.
func ParseDeployType(s string) (DeployType, error) {
	switch DeployType(strings.ToLower(s)) {
	case DeployInstall:
		return DeployInstall, nil
	case DeployUninstall:
		return DeployUninstall, nil
	default:
		return "", fmt.Errorf("unknown deployment type %q (expected install or uninstall)", s)
	}
}

// DeployMode controls how much UI a run may show.
type DeployMode string

const (
	ModeInteractive    DeployMode = "interactive"
	ModeSilent         DeployMode = "silent"
	ModeNonInteractive DeployMode = "noninteractive"
)

// ParseDeployMode validates a raw deployment mode string.
func ParseDeployMode(s string) (DeployMode, error) {
	switch DeployMode(strings.ToLower(s)) {
	case ModeInteractive:
		return ModeInteractive, nil
	case ModeSilent:
		return ModeSilent, nil
	case ModeNonInteractive:
		return ModeNonInteractive, nil
	default:
		return "", fmt.Errorf("unknown deployment mode %q (expected interactive, silent or noninteractive)", s)
	}
}

// Interactive reports whether dialogs may be shown.
func (m DeployMode) Interactive() bool {
	return m == ModeInteractive
}

// Session carries the state of one deployment run.
type Session struct {
	Config *config.Configuration
	Type   DeployType
	Mode   DeployMode
	Runner command.Runner

	// exitCode accumulates the worst outcome seen so far. Non-terminal
	// process failures update it without stopping the run.
	exitCode int
}

// NewSession builds a session around a loaded configuration.
func NewSession(cfg *config.Configuration, deployType DeployType, mode DeployMode) *Session {
	return &Session{
		Config: cfg,
		Type:   deployType,
		Mode:   mode,
		Runner: command.NewRunner(),
	}
}

// RecordExitCode keeps a non-zero process exit code as the run's pending
// result without aborting. Later codes overwrite earlier ones, matching the
// last-failure-wins behavior of the deployment flow.
func (s *Session) RecordExitCode(code int) {
	if code != 0 {
		s.exitCode = code
	}
}

// ExitCode returns the pending run result.
func (s *Session) ExitCode() int {
	return s.exitCode
}

// ExitScript finalizes logging and terminates the process with code.
func (s *Session) ExitScript(code int) {
	if code == ExitSuccess {
		logging.Info("Deployment session finished", "exit_code", code)
	} else {
		logging.Error("Deployment session finished with errors", "exit_code", code)
	}
	logging.CloseLogger(code)
	os.Exit(code)
}
