package bbndk

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostToolchainTag(t *testing.T) {
	tests := []struct {
		goos, goarch, want string
	}{
		{"linux", "amd64", "linux-x86_64"},
		{"linux", "arm64", "linux-aarch64"},
		{"darwin", "amd64", "darwin-x86_64"},
		{"darwin", "arm64", "darwin-arm64"},
		// Unknown combinations fall back rather than failing.
		{"windows", "amd64", "linux-x86_64"},
		{"linux", "riscv64", "linux-x86_64"},
	}
	for _, tt := range tests {
		if got := hostToolchainTag(tt.goos, tt.goarch); got != tt.want {
			t.Errorf("hostToolchainTag(%q, %q) = %q; want %q", tt.goos, tt.goarch, got, tt.want)
		}
	}
}

func TestNDKArchiveURL(t *testing.T) {
	assert.Equal(t,
		"https://dl.google.com/android/repository/android-ndk-r26d-linux.zip",
		ndkArchiveURL("r26d", "linux"))
	assert.Equal(t,
		"https://dl.google.com/android/repository/android-ndk-r26d-darwin.zip",
		ndkArchiveURL("r26d", "darwin"))
}

// An existing NDK directory short-circuits provisioning entirely: the only
// work left is tool-name synthesis, no download happens.
func TestEnsureNDKExistingSkipsDownload(t *testing.T) {
	setupTestDirs(t)
	bc := testBuildConfig(t, "arm64")

	ndkHome := filepath.Join(t.TempDir(), "ndk")
	binDir := filepath.Join(ndkHome, "toolchains", "llvm", "prebuilt",
		hostToolchainTag(runtime.GOOS, runtime.GOARCH), "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	bc.NDKHome = ndkHome

	require.NoError(t, EnsureNDK(bc))

	// The triple-prefixed binutils names exist afterwards, pointing at the
	// llvm-suffixed tools.
	link := filepath.Join(binDir, "aarch64-linux-android21-ar")
	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, "llvm-ar", target)

	gcc := filepath.Join(binDir, "x86_64-linux-android21-gcc")
	target, err = os.Readlink(gcc)
	require.NoError(t, err)
	assert.Equal(t, "x86_64-linux-android21-clang", target)
}

// Re-running synthesis must skip links that already exist instead of
// failing on EEXIST.
func TestSynthesizeToolLinksIdempotent(t *testing.T) {
	ndkHome := filepath.Join(t.TempDir(), "ndk")
	binDir := filepath.Join(ndkHome, "toolchains", "llvm", "prebuilt",
		hostToolchainTag(runtime.GOOS, runtime.GOARCH), "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))

	require.NoError(t, synthesizeToolLinks(ndkHome))
	require.NoError(t, synthesizeToolLinks(ndkHome))
}

func TestSynthesizeToolLinksMissingBinDir(t *testing.T) {
	err := synthesizeToolLinks(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
