// pkg/toolkit/welcome.go - pre-install gate: disk space, deferral, closing apps.

package toolkit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gonutz/w32"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/windowsadmins/officedeploy/pkg/logging"
)

// ErrDeferred signals that the user postponed the deployment.
var ErrDeferred = errors.New("deployment deferred by user")

// ErrDiskSpace signals that the target volume lacks the required free space.
var ErrDiskSpace = errors.New("insufficient free disk space")

const deferralKeyPath = `SOFTWARE\OfficeDeploy\State`

// ShowWelcome runs the pre-deployment checks: free disk space, the deferral
// prompt when Office applications are open in interactive mode, and finally
// closing any remaining listed applications. On success the deferral counter
// is reset.
func (s *Session) ShowWelcome() error {
	if s.Config.CheckDiskSpace {
		if err := checkDiskSpace(s.Config.RequiredSpaceMB); err != nil {
			return err
		}
	}

	running := runningApps(s.Config.CloseApps)
	if len(running) == 0 {
		resetDeferrals()
		return nil
	}
	logging.Info("Office applications currently running", "processes", running)

	if s.Mode.Interactive() {
		deferred, err := promptCloseOrDefer(running, s.Config.DeferLimit)
		if err != nil {
			return err
		}
		if deferred {
			return ErrDeferred
		}
	}

	closeApps(s.Config.CloseApps)
	resetDeferrals()
	return nil
}

// checkDiskSpace verifies free space on the system volume.
func checkDiskSpace(requiredMB int) error {
	if requiredMB <= 0 {
		return nil
	}

	root, err := windows.UTF16PtrFromString(`C:\`)
	if err != nil {
		return err
	}
	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(root, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return fmt.Errorf("querying free disk space: %w", err)
	}

	freeMB := int(freeBytesAvailable / (1024 * 1024))
	if freeMB < requiredMB {
		logging.Error("Not enough free disk space for deployment",
			"free_mb", freeMB, "required_mb", requiredMB)
		return ErrDiskSpace
	}

	logging.Debug("Disk space check passed", "free_mb", freeMB, "required_mb", requiredMB)
	return nil
}

// runningApps returns which of the listed process names are currently running.
func runningApps(closeApps []string) []string {
	processes, err := process.Processes()
	if err != nil {
		logging.Error("Failed to get process list", "error", err)
		return nil
	}

	wanted := make(map[string]bool, len(closeApps))
	for _, app := range closeApps {
		wanted[normalizeProcName(app)] = true
	}

	seen := make(map[string]bool)
	var running []string
	for _, p := range processes {
		name, err := p.Name()
		if err != nil {
			continue
		}
		name = normalizeProcName(name)
		if wanted[name] && !seen[name] {
			seen[name] = true
			running = append(running, name)
		}
	}
	return running
}

// closeApps terminates every running process from the list.
func closeApps(apps []string) {
	processes, err := process.Processes()
	if err != nil {
		logging.Error("Failed to get process list", "error", err)
		return
	}

	wanted := make(map[string]bool, len(apps))
	for _, app := range apps {
		wanted[normalizeProcName(app)] = true
	}

	for _, p := range processes {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if !wanted[normalizeProcName(name)] {
			continue
		}
		logging.Info("Closing application", "process", name, "pid", p.Pid)
		if err := p.Kill(); err != nil {
			logging.Warn("Failed to close application", "process", name, "error", err)
		}
	}
}

func normalizeProcName(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".exe")
}

// promptCloseOrDefer asks the user to close the listed applications or
// postpone. Returns true when the run should defer.
func promptCloseOrDefer(running []string, deferLimit int) (bool, error) {
	remaining := deferLimit - deferralCount()
	message := fmt.Sprintf(
		"The following applications must be closed before Office can be updated:\n\n%s\n\n",
		strings.Join(running, "\n"))
	if remaining > 0 {
		message += fmt.Sprintf(
			"Choose Yes to close them now, or No to postpone (%d deferral(s) remaining).",
			remaining)
	} else {
		message += "Choose Yes to close them now. No deferrals remain."
	}

	style := uint(w32.MB_ICONEXCLAMATION | windows.MB_SYSTEMMODAL | windows.MB_SETFOREGROUND)
	if remaining > 0 {
		style |= w32.MB_YESNO
	} else {
		style |= w32.MB_OK
	}

	answer := w32.MessageBox(0, message, "Office Deployment", style)
	if remaining > 0 && answer == w32.IDNO {
		incrementDeferrals()
		logging.Info("User deferred the deployment", "deferrals_used", deferralCount())
		return true, nil
	}
	return false, nil
}

// deferralCount reads how many times this deployment has been postponed.
func deferralCount() int {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, deferralKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return 0
	}
	defer key.Close()

	val, _, err := key.GetIntegerValue("DeferCount")
	if err != nil {
		return 0
	}
	return int(val)
}

func incrementDeferrals() {
	key, _, err := registry.CreateKey(registry.LOCAL_MACHINE, deferralKeyPath, registry.ALL_ACCESS)
	if err != nil {
		logging.Warn("Failed to persist deferral count", "error", err)
		return
	}
	defer key.Close()

	count := uint64(deferralCount() + 1)
	if err := key.SetDWordValue("DeferCount", uint32(count)); err != nil {
		logging.Warn("Failed to persist deferral count", "error", err)
	}
}

func resetDeferrals() {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, deferralKeyPath, registry.SET_VALUE)
	if err != nil {
		return
	}
	defer key.Close()
	key.DeleteValue("DeferCount")
}
