// pkg/toolkit/facts.go - machine facts logged at session start.

package toolkit

import (
	"fmt"
	"os"

	"github.com/yusufpapurcu/wmi"

	"github.com/windowsadmins/officedeploy/pkg/logging"
)

// Win32_ComputerSystem is the WMI class for basic system information.
type Win32_ComputerSystem struct {
	Manufacturer string
	Model        string
	Domain       string
	PartOfDomain bool
}

// Win32_SystemEnclosure is the WMI class for chassis information.
type Win32_SystemEnclosure struct {
	ChassisTypes []int16
}

// MachineFacts describes the target machine for the session log.
type MachineFacts struct {
	Hostname     string
	Manufacturer string
	Model        string
	Domain       string
	MachineType  string
}

// CollectMachineFacts queries WMI for machine identity. Failures degrade to
// "unknown" fields rather than failing the run.
func CollectMachineFacts() MachineFacts {
	facts := MachineFacts{
		Manufacturer: "unknown",
		Model:        "unknown",
		Domain:       "unknown",
		MachineType:  "unknown",
	}
	if hostname, err := os.Hostname(); err == nil {
		facts.Hostname = hostname
	}

	var systems []Win32_ComputerSystem
	if err := wmi.Query("SELECT Manufacturer, Model, Domain, PartOfDomain FROM Win32_ComputerSystem", &systems); err != nil {
		logging.Warn("Failed to query computer system information", "error", err)
	} else if len(systems) > 0 {
		facts.Manufacturer = systems[0].Manufacturer
		facts.Model = systems[0].Model
		if systems[0].PartOfDomain {
			facts.Domain = systems[0].Domain
		} else {
			facts.Domain = "workgroup"
		}
	}

	var enclosures []Win32_SystemEnclosure
	if err := wmi.Query("SELECT ChassisTypes FROM Win32_SystemEnclosure", &enclosures); err != nil {
		logging.Warn("Failed to query system enclosure information", "error", err)
	} else if len(enclosures) > 0 && len(enclosures[0].ChassisTypes) > 0 {
		facts.MachineType = machineType(enclosures[0].ChassisTypes[0])
	}

	return facts
}

// Log writes the facts to the session log.
func (f MachineFacts) Log() {
	logging.Info("Machine facts",
		"hostname", f.Hostname,
		"manufacturer", f.Manufacturer,
		"model", fmt.Sprintf("%s %s", f.Manufacturer, f.Model),
		"domain", f.Domain,
		"machine_type", f.MachineType)
}

// machineType maps SMBIOS chassis types to a coarse laptop/desktop label.
func machineType(chassisType int16) string {
	switch chassisType {
	case 8, 9, 10, 11, 12, 14, 18, 21, 30, 31, 32:
		return "laptop"
	case 3, 4, 5, 6, 7, 13, 15, 16, 17, 23, 24:
		return "desktop"
	default:
		return "unknown"
	}
}
