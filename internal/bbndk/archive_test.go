package bbndk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipDirUnzipRoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "run.sh"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "deep", "data"), []byte("d"), 0o600))

	archive := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, zipDir(src, archive))

	dest := t.TempDir()
	require.NoError(t, unzipGo(archive, dest))

	data, err := os.ReadFile(filepath.Join(dest, "top.txt"))
	require.NoError(t, err)
	assert.Equal(t, "top", string(data))

	info, err := os.Stat(filepath.Join(dest, "sub", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	_, err = os.Stat(filepath.Join(dest, "sub", "deep", "data"))
	assert.NoError(t, err)
}

// Entry names are relative to the source root, never wrapped in a
// directory named after it.
func TestZipDirNoWrapperDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "module")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "module.prop"), []byte("id=x\n"), 0o644))

	archive := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, zipDir(src, archive))

	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 1)
	assert.Equal(t, "module.prop", zr.File[0].Name)
}

func TestUnzipGoRejectsPathTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dest := t.TempDir()
	err = unzipGo(archive, dest)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUnzipGoPreservesSymlinks(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "links.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	hdr := &zip.FileHeader{Name: "bin/gcc"}
	hdr.SetMode(os.ModeSymlink | 0o777)
	w, err := zw.CreateHeader(hdr)
	require.NoError(t, err)
	_, err = w.Write([]byte("clang"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dest := t.TempDir()
	require.NoError(t, unzipGo(archive, dest))

	target, err := os.Readlink(filepath.Join(dest, "bin", "gcc"))
	require.NoError(t, err)
	assert.Equal(t, "clang", target)
}
