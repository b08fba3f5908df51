// pkg/legacy/legacy.go - detects and removes legacy MSI-based Office installations.

package legacy

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/windowsadmins/officedeploy/pkg/command"
	"github.com/windowsadmins/officedeploy/pkg/logging"
)

// Tag identifies one legacy Office release year.
type Tag int

const (
	Office2003 Tag = 2003
	Office2007 Tag = 2007
	Office2010 Tag = 2010
	Office2013 Tag = 2013
	Office2016 Tag = 2016
)

// String returns the human-readable release label.
func (t Tag) String() string {
	return "Office " + label(t)
}

func label(t Tag) string {
	switch t {
	case Office2003:
		return "2003"
	case Office2007:
		return "2007"
	case Office2010:
		return "2010"
	case Office2013:
		return "2013"
	case Office2016:
		return "2016"
	default:
		return "unknown"
	}
}

// scrubScripts maps each release year to its removal script under the
// support files directory.
var scrubScripts = map[Tag]string{
	Office2003: "OffScrub03.vbs",
	Office2007: "OffScrub07.vbs",
	Office2010: "OffScrub10.vbs",
	Office2013: "OffScrub_O15msi.vbs",
	Office2016: "OffScrub_O16msi.vbs",
}

const clickToRunScrubScript = "OffScrubC2R.vbs"

// Detect matches installed application display names against the legacy
// release labels. Matching is case-insensitive substring; all matching years
// are collected, and the result is sorted ascending by release year.
func Detect(displayNames []string) []Tag {
	found := make(map[Tag]bool)
	for _, name := range displayNames {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, "microsoft office") {
			continue
		}
		for tag := range scrubScripts {
			if strings.Contains(lower, label(tag)) {
				found[tag] = true
			}
		}
	}

	tags := make([]Tag, 0, len(found))
	for tag := range found {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Remove runs the removal script for each detected release in ascending
// year order and records the exit code per release. A failed removal never
// stops the remaining attempts.
func Remove(tags []Tag, supportFilesDir string, runner command.Runner) map[Tag]int {
	sorted := make([]Tag, len(tags))
	copy(sorted, tags)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	results := make(map[Tag]int, len(sorted))
	for _, tag := range sorted {
		script := filepath.Join(supportFilesDir, scrubScripts[tag])
		logging.Info("Removing legacy Office installation", "release", tag.String(), "script", script)

		code := runScrub(script, runner)
		results[tag] = code
		if code != 0 {
			logging.Warn("Legacy removal finished with errors", "release", tag.String(), "exit_code", code)
		} else {
			logging.Info("Legacy removal complete", "release", tag.String())
		}
	}
	return results
}

// RemoveClickToRun runs the Click-to-Run scrub script and returns its exit
// code.
func RemoveClickToRun(supportFilesDir string, runner command.Runner) int {
	script := filepath.Join(supportFilesDir, clickToRunScrubScript)
	logging.Info("Removing existing Click-to-Run installation", "script", script)
	return runScrub(script, runner)
}

// NeedClickToRunRemoval reports whether the existing Click-to-Run
// installation must be scrubbed before installing. Any one trigger suffices.
func NeedClickToRunRemoval(legacyRemoved, channelMigration, platformMigration bool) bool {
	return legacyRemoved || channelMigration || platformMigration
}

func runScrub(script string, runner command.Runner) int {
	code, _, err := runner.Run("cscript.exe", "//NoLogo", script, "ALL", "/S", "/Q", "/NoCancel")
	if err != nil {
		logging.Error("Failed to launch removal script", "script", script, "error", err)
		return -1
	}
	return code
}
