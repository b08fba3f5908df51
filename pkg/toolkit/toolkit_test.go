package toolkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeployType(t *testing.T) {
	dt, err := ParseDeployType("Install")
	require.NoError(t, err)
	assert.Equal(t, DeployInstall, dt)

	dt, err = ParseDeployType("UNINSTALL")
	require.NoError(t, err)
	assert.Equal(t, DeployUninstall, dt)

	_, err = ParseDeployType("repair")
	assert.Error(t, err)
}

func TestParseDeployMode(t *testing.T) {
	for raw, want := range map[string]DeployMode{
		"interactive":    ModeInteractive,
		"Silent":         ModeSilent,
		"NonInteractive": ModeNonInteractive,
	} {
		mode, err := ParseDeployMode(raw)
		require.NoError(t, err)
		assert.Equal(t, want, mode)
	}

	_, err := ParseDeployMode("unattended")
	assert.Error(t, err)
}

func TestDeployModeInteractive(t *testing.T) {
	assert.True(t, ModeInteractive.Interactive())
	assert.False(t, ModeSilent.Interactive())
	assert.False(t, ModeNonInteractive.Interactive())
}

func TestSessionRecordExitCode(t *testing.T) {
	s := &Session{}
	assert.Equal(t, 0, s.ExitCode())

	s.RecordExitCode(0)
	assert.Equal(t, 0, s.ExitCode(), "success must not overwrite the pending result")

	s.RecordExitCode(3)
	assert.Equal(t, 3, s.ExitCode())

	s.RecordExitCode(0)
	assert.Equal(t, 3, s.ExitCode(), "later success must not clear an earlier failure")

	s.RecordExitCode(17)
	assert.Equal(t, 17, s.ExitCode(), "later failures win")
}

func TestNormalizeProcName(t *testing.T) {
	assert.Equal(t, "winword", normalizeProcName("WINWORD.EXE"))
	assert.Equal(t, "excel", normalizeProcName("excel"))
	assert.Equal(t, "visio", normalizeProcName("Visio.exe"))
}
