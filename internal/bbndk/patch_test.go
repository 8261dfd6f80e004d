package bbndk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPatchesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"20-later.patch", "10-first.patch", "README", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.patch"), 0o755))

	got := listPatches(dir)
	require.Len(t, got, 2)
	assert.Equal(t, filepath.Join(dir, "10-first.patch"), got[0])
	assert.Equal(t, filepath.Join(dir, "20-later.patch"), got[1])
}

func TestListPatchesMissingDir(t *testing.T) {
	assert.Nil(t, listPatches(filepath.Join(t.TempDir(), "does-not-exist")))
}

// A garbage patch against a bare directory must be skipped, not fatal: the
// build carries on with zero applied.
func TestApplyPatchesBadPatchIsNonFatal(t *testing.T) {
	src := t.TempDir()
	patch := filepath.Join(t.TempDir(), "00-broken.patch")
	require.NoError(t, os.WriteFile(patch, []byte("this is not a patch\n"), 0o644))

	applied := applyPatches(src, []string{patch})
	assert.Equal(t, 0, applied)
}

func TestApplyPatchesEmptySet(t *testing.T) {
	assert.Equal(t, 0, applyPatches(t.TempDir(), nil))
}
