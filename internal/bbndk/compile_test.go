package bbndk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A failing compiler invocation must abort the architecture immediately and
// surface the log path; nothing gets staged and no artifact appears.
func TestCompileArchFailsFast(t *testing.T) {
	setupTestDirs(t)
	bc := testBuildConfig(t, "arm64")
	a := bc.Arches[0]

	require.NoError(t, os.MkdirAll(bc.ArchSourceDir(a), 0o755))

	orig := makeProg
	makeProg = "false"
	defer func() { makeProg = orig }()

	execr := &Executor{Context: context.Background()}
	err := compileArch(bc, a, execr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile failed for arm64")
	assert.Contains(t, err.Error(), filepath.Join(LogDir, "arm64.log"))

	// The log file itself exists even for a failed run.
	_, statErr := os.Stat(filepath.Join(LogDir, "arm64.log"))
	assert.NoError(t, statErr)

	// Fail-fast means no binary staged and no artifact.
	_, statErr = os.Stat(filepath.Join(ModuleDir, "system", "bin", "arm64", "busybox"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(bc.ArtifactPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestStageBinaryMissingStagedTree(t *testing.T) {
	setupTestDirs(t)
	bc := testBuildConfig(t, "x86_64")

	err := stageBinary(bc, bc.Arches[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staged binary missing for x86_64")
}

func TestStageBinary(t *testing.T) {
	setupTestDirs(t)
	bc := testBuildConfig(t, "arm")
	a := bc.Arches[0]

	staged := filepath.Join(bc.ArchSourceDir(a), "_install", "bin")
	require.NoError(t, os.MkdirAll(staged, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staged, "busybox"),
		[]byte("\x7fELF fake"), 0o644))

	require.NoError(t, stageBinary(bc, a))

	dest := filepath.Join(ModuleDir, "system", "bin", "arm", "busybox")
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
