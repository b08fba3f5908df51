package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileFreshMachine(t *testing.T) {
	res, err := Reconcile(O365ProPlusRetail, Inventory{}, "x64", "Current")
	require.NoError(t, err)

	assert.Equal(t, []ID{O365ProPlusRetail}, res.TargetSet)
	assert.Empty(t, res.Migrations)
	assert.False(t, res.PlatformMigration)
	assert.False(t, res.ChannelMigration)
}

func TestReconcileAlreadyInstalled(t *testing.T) {
	inv := Inventory{
		Installed: []ID{O365ProPlusRetail},
		Platform:  "x64",
		Channel:   "Current",
	}
	res, err := Reconcile(O365ProPlusRetail, inv, "x64", "Current")
	require.NoError(t, err)

	assert.Equal(t, []ID{O365ProPlusRetail}, res.TargetSet)
	assert.Empty(t, res.Migrations)
	assert.False(t, res.PlatformMigration)
	assert.False(t, res.ChannelMigration)
}

func TestReconcilePreservesUnrelatedProducts(t *testing.T) {
	inv := Inventory{
		Installed: []ID{O365ProPlusRetail, ProjectProRetail},
		Platform:  "x64",
		Channel:   "Current",
	}
	res, err := Reconcile(VisioProRetail, inv, "x64", "Current")
	require.NoError(t, err)

	assert.ElementsMatch(t, []ID{VisioProRetail, O365ProPlusRetail, ProjectProRetail}, res.TargetSet)
	assert.Empty(t, res.Migrations)
}

func TestReconcileVisioStandardVolumeToProfessionalRetail(t *testing.T) {
	inv := Inventory{Installed: []ID{VisioStdXVolume}}
	res, err := Reconcile(VisioProRetail, inv, "", "")
	require.NoError(t, err)

	assert.Equal(t, []ID{VisioProRetail}, res.TargetSet)
	require.Len(t, res.Migrations, 1)
	assert.Equal(t, VisioStdXVolume, res.Migrations[0].From)
	assert.Equal(t, VisioProRetail, res.Migrations[0].To)
	assert.True(t, res.EditionMigration())
}

func TestReconcileProjectMigrations(t *testing.T) {
	tests := []struct {
		name      string
		requested ID
		installed []ID
		want      []ID
		migrated  int
	}{
		{
			name:      "standard volume to professional retail",
			requested: ProjectProRetail,
			installed: []ID{ProjectStdXVolume},
			want:      []ID{ProjectProRetail},
			migrated:  1,
		},
		{
			name:      "professional volume to professional retail",
			requested: ProjectProRetail,
			installed: []ID{ProjectProXVolume},
			want:      []ID{ProjectProRetail},
			migrated:  1,
		},
		{
			name:      "professional retail back to standard volume",
			requested: ProjectStdXVolume,
			installed: []ID{ProjectProRetail},
			want:      []ID{ProjectStdXVolume},
			migrated:  1,
		},
		{
			name:      "standard volume up to professional volume",
			requested: ProjectProXVolume,
			installed: []ID{ProjectStdXVolume},
			want:      []ID{ProjectProXVolume},
			migrated:  1,
		},
		{
			name:      "professional volume down to standard volume is not defined",
			requested: ProjectStdXVolume,
			installed: []ID{ProjectProXVolume},
			want:      []ID{ProjectStdXVolume, ProjectProXVolume},
			migrated:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Reconcile(tc.requested, Inventory{Installed: tc.installed}, "", "")
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, res.TargetSet)
			assert.Len(t, res.Migrations, tc.migrated)
		})
	}
}

func TestReconcileCrossFamilyNeverMigrates(t *testing.T) {
	inv := Inventory{Installed: []ID{ProjectStdXVolume}}
	res, err := Reconcile(VisioProRetail, inv, "", "")
	require.NoError(t, err)

	assert.ElementsMatch(t, []ID{VisioProRetail, ProjectStdXVolume}, res.TargetSet)
	assert.Empty(t, res.Migrations)
}

func TestReconcileIdempotent(t *testing.T) {
	inv := Inventory{
		Installed: []ID{O365ProPlusRetail, VisioProXVolume},
		Platform:  "x64",
		Channel:   "Current",
	}

	first, err := Reconcile(O365ProPlusRetail, inv, "x64", "Current")
	require.NoError(t, err)
	second, err := Reconcile(O365ProPlusRetail, inv, "x64", "Current")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReconcileRuleOrderIndependence(t *testing.T) {
	original := substitutions
	reversed := make([]substitution, len(original))
	for i, rule := range original {
		reversed[len(original)-1-i] = rule
	}

	inv := Inventory{Installed: []ID{VisioStdXVolume, VisioProXVolume, O365ProPlusRetail}}

	forward, err := Reconcile(VisioProRetail, inv, "", "")
	require.NoError(t, err)

	substitutions = reversed
	defer func() { substitutions = original }()

	backward, err := Reconcile(VisioProRetail, inv, "", "")
	require.NoError(t, err)

	assert.ElementsMatch(t, forward.TargetSet, backward.TargetSet)
	assert.ElementsMatch(t, forward.Migrations, backward.Migrations)
}

func TestReconcileInventoryOrderIndependence(t *testing.T) {
	a := Inventory{Installed: []ID{VisioStdXVolume, O365ProPlusRetail}}
	b := Inventory{Installed: []ID{O365ProPlusRetail, VisioStdXVolume}}

	resA, err := Reconcile(VisioProRetail, a, "", "")
	require.NoError(t, err)
	resB, err := Reconcile(VisioProRetail, b, "", "")
	require.NoError(t, err)

	assert.ElementsMatch(t, resA.TargetSet, resB.TargetSet)
	assert.ElementsMatch(t, resA.Migrations, resB.Migrations)
}

func TestReconcilePlatformAndChannelMigrationFlags(t *testing.T) {
	inv := Inventory{
		Installed: []ID{O365ProPlusRetail},
		Platform:  "x86",
		Channel:   "SemiAnnual",
	}
	res, err := Reconcile(O365ProPlusRetail, inv, "x64", "Current")
	require.NoError(t, err)

	assert.True(t, res.PlatformMigration)
	assert.True(t, res.ChannelMigration)
	// Flags never change the target set.
	assert.Equal(t, []ID{O365ProPlusRetail}, res.TargetSet)
}

func TestReconcileNoMigrationFlagsOnFreshMachine(t *testing.T) {
	res, err := Reconcile(O365ProPlusRetail, Inventory{Platform: "x86", Channel: "Beta"}, "x64", "Current")
	require.NoError(t, err)

	assert.False(t, res.PlatformMigration)
	assert.False(t, res.ChannelMigration)
}

func TestReconcileRejectsUnknownEdition(t *testing.T) {
	_, err := Reconcile(ID("VisioUltimate"), Inventory{}, "", "")
	assert.Error(t, err)
}

func TestReconcileDuplicateInventoryEntries(t *testing.T) {
	inv := Inventory{Installed: []ID{O365ProPlusRetail, O365ProPlusRetail}}
	res, err := Reconcile(VisioProRetail, inv, "", "")
	require.NoError(t, err)

	assert.ElementsMatch(t, []ID{VisioProRetail, O365ProPlusRetail}, res.TargetSet)
}
