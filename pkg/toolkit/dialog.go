// pkg/toolkit/dialog.go - user-facing dialogs, suppressed outside interactive mode.

package toolkit

import (
	"github.com/gonutz/w32"
	"golang.org/x/sys/windows"

	"github.com/windowsadmins/officedeploy/pkg/logging"
)

// ShowProgress announces that the deployment is underway. Outside
// interactive mode this is log-only.
func (s *Session) ShowProgress(message string) {
	logging.Info(message)
}

// ShowError surfaces a fatal error. In interactive mode it blocks on a
// dialog; otherwise the log entry is all the user gets.
func (s *Session) ShowError(message string) {
	logging.Error(message)
	if !s.Mode.Interactive() {
		return
	}
	w32.MessageBox(0, message, "Office Deployment",
		w32.MB_OK|w32.MB_ICONERROR|windows.MB_SYSTEMMODAL|windows.MB_SETFOREGROUND)
}
