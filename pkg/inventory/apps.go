// pkg/inventory/apps.go - enumerates installed applications from the uninstall registry keys.

package inventory

import (
	"golang.org/x/sys/windows/registry"

	"github.com/windowsadmins/officedeploy/pkg/logging"
)

const uninstallKeyPath = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`

// Application is one entry under the Windows uninstall registry keys.
type Application struct {
	KeyName         string
	DisplayName     string
	DisplayVersion  string
	UninstallString string
}

// InstalledApplications enumerates applications registered under both the
// 64-bit and 32-bit uninstall keys.
func InstalledApplications() ([]Application, error) {
	var apps []Application
	for _, access := range []uint32{registry.WOW64_64KEY, registry.WOW64_32KEY} {
		found, err := readUninstallKeys(access)
		if err != nil {
			logging.Warn("Failed to read uninstall registry view", "error", err)
			continue
		}
		apps = append(apps, found...)
	}
	return apps, nil
}

// DisplayNames extracts the non-empty display names from an application list.
func DisplayNames(apps []Application) []string {
	names := make([]string, 0, len(apps))
	for _, app := range apps {
		if app.DisplayName != "" {
			names = append(names, app.DisplayName)
		}
	}
	return names
}

func readUninstallKeys(access uint32) ([]Application, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, uninstallKeyPath,
		registry.READ|access)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	subKeyNames, err := key.ReadSubKeyNames(-1)
	if err != nil {
		return nil, err
	}

	var apps []Application
	for _, name := range subKeyNames {
		subKey, err := registry.OpenKey(key, name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}

		displayName, _, err := subKey.GetStringValue("DisplayName")
		if err != nil || displayName == "" {
			subKey.Close()
			continue
		}

		app := Application{
			KeyName:     name,
			DisplayName: displayName,
		}
		if ver, _, err := subKey.GetStringValue("DisplayVersion"); err == nil {
			app.DisplayVersion = ver
		}
		if uninst, _, err := subKey.GetStringValue("UninstallString"); err == nil {
			app.UninstallString = uninst
		}
		subKey.Close()

		apps = append(apps, app)
	}

	return apps, nil
}
