// pkg/product/reconcile.go - computes the target edition set for one deployment run.

package product

import "fmt"

// substitution is one directional migration rule: when the source edition is
// installed and the caller requests the target edition, the source is dropped
// from the final set instead of being carried alongside the target.
type substitution struct {
	source ID
	target ID
}

// substitutions lists the ten directional rules, five per family. The table
// is deliberately asymmetric: converting volume professional down to volume
// standard is not defined, so a ProXVolume install survives a StdXVolume
// request. Order in this slice is fixed but has no effect on the outcome,
// since each rule removes only its own source and never re-adds anything.
var substitutions = []substitution{
	{source: VisioStdXVolume, target: VisioProRetail},
	{source: VisioProXVolume, target: VisioProRetail},
	{source: VisioProRetail, target: VisioStdXVolume},
	{source: VisioProRetail, target: VisioProXVolume},
	{source: VisioStdXVolume, target: VisioProXVolume},
	{source: ProjectStdXVolume, target: ProjectProRetail},
	{source: ProjectProXVolume, target: ProjectProRetail},
	{source: ProjectProRetail, target: ProjectStdXVolume},
	{source: ProjectProRetail, target: ProjectProXVolume},
	{source: ProjectStdXVolume, target: ProjectProXVolume},
}

// Inventory is the machine state a reconciliation runs against, read once at
// the start of a run and never mutated afterwards.
type Inventory struct {
	Installed []ID   // Click-to-Run editions currently present
	Platform  string // "x86" or "x64" as reported by the installation
	Channel   string // friendly channel name resolved from the CDN URL
}

// Migration records one fired substitution rule, kept for logging only.
type Migration struct {
	From ID
	To   ID
}

// Result is the immutable outcome of a reconciliation.
type Result struct {
	TargetSet []ID // editions the installer configuration must request

	// Informational flags. They never alter TargetSet beyond the
	// substitutions already applied.
	Migrations        []Migration
	PlatformMigration bool
	ChannelMigration  bool
}

// EditionMigration reports whether any substitution rule fired.
func (r Result) EditionMigration() bool {
	return len(r.Migrations) > 0
}

// Reconcile computes the edition set the installer should end up with:
// the requested edition, plus every unrelated installed edition, minus
// installed editions the requested one supersedes per the substitution table.
//
// Platform and channel migration flags are raised when the installed state
// differs from the wanted values; empty wanted values disable the comparison.
func Reconcile(requested ID, inv Inventory, wantPlatform, wantChannel string) (Result, error) {
	if !Known(requested) {
		return Result{}, fmt.Errorf("cannot reconcile unknown product edition %q", requested)
	}

	target := []ID{requested}
	present := make(map[ID]bool, len(inv.Installed)+1)
	present[requested] = true
	for _, id := range inv.Installed {
		if !present[id] {
			present[id] = true
			target = append(target, id)
		}
	}

	installed := make(map[ID]bool, len(inv.Installed))
	for _, id := range inv.Installed {
		installed[id] = true
	}

	var res Result
	removed := make(map[ID]bool)
	for _, rule := range substitutions {
		if rule.target != requested || !installed[rule.source] || removed[rule.source] {
			continue
		}
		removed[rule.source] = true
		res.Migrations = append(res.Migrations, Migration{From: rule.source, To: rule.target})
	}

	res.TargetSet = make([]ID, 0, len(target))
	for _, id := range target {
		if !removed[id] {
			res.TargetSet = append(res.TargetSet, id)
		}
	}

	if len(inv.Installed) > 0 {
		if wantPlatform != "" && inv.Platform != "" && inv.Platform != wantPlatform {
			res.PlatformMigration = true
		}
		if wantChannel != "" && inv.Channel != "" && inv.Channel != wantChannel {
			res.ChannelMigration = true
		}
	}

	return res, nil
}
