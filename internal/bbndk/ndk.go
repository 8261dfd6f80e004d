package bbndk

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// hostToolchainTag maps the host OS/CPU pair onto the NDK's prebuilt
// toolchain directory name. Unknown combinations fall back to linux-x86_64
// with a warning rather than failing: the NDK itself is the authority on
// what actually runs.
func hostToolchainTag(goos, goarch string) string {
	switch goos + "/" + goarch {
	case "linux/amd64":
		return "linux-x86_64"
	case "linux/arm64":
		return "linux-aarch64"
	case "darwin/amd64":
		return "darwin-x86_64"
	case "darwin/arm64":
		return "darwin-arm64"
	}
	cPrintf(colWarn, "Unsupported host %s/%s, assuming linux-x86_64\n", goos, goarch)
	return "linux-x86_64"
}

// ndkArchiveURL returns the download location of the NDK release for the
// host OS. Google publishes one archive per OS; the CPU flavor is picked
// by the prebuilt directory inside it.
func ndkArchiveURL(release, goos string) string {
	osName := "linux"
	if goos == "darwin" {
		osName = "darwin"
	}
	return fmt.Sprintf("https://dl.google.com/android/repository/android-ndk-%s-%s.zip", release, osName)
}

// toolchainBinDir returns the LLVM toolchain bin directory inside an NDK.
func toolchainBinDir(ndkHome string) string {
	return filepath.Join(ndkHome, "toolchains", "llvm", "prebuilt",
		hostToolchainTag(runtime.GOOS, runtime.GOARCH), "bin")
}

// toolchainSysroot returns the unified sysroot inside an NDK.
func toolchainSysroot(ndkHome string) string {
	return filepath.Join(ndkHome, "toolchains", "llvm", "prebuilt",
		hostToolchainTag(runtime.GOOS, runtime.GOARCH), "sysroot")
}

// binutilsTools are the LLVM tools the BusyBox makefile expects to find
// under triple-prefixed names ($(CROSS_COMPILE)ar and so on).
var binutilsTools = []string{
	"ar", "nm", "strip", "ranlib", "objcopy", "objdump", "readelf", "strings",
}

// EnsureNDK guarantees a usable NDK toolchain at NDKHome. If the directory
// already exists it is treated as valid and no network access happens.
func EnsureNDK(bc *BuildConfig) error {
	if _, err := os.Stat(bc.NDKHome); err == nil {
		debugf("NDK found at %s, skipping provisioning\n", bc.NDKHome)
		return synthesizeToolLinks(bc.NDKHome)
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Provisioning NDK %s into %s\n", bc.NDKVersion, bc.NDKHome)

	cachePath, err := fetchToCache(ndkArchiveURL(bc.NDKVersion, runtime.GOOS))
	if err != nil {
		return fmt.Errorf("NDK download failed: %w", err)
	}

	// Extract next to the final location; the archive unpacks into
	// android-ndk-<release>/ which may differ from the configured home.
	parent := filepath.Dir(bc.NDKHome)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", parent, err)
	}
	if err := unzipGo(cachePath, parent); err != nil {
		return fmt.Errorf("NDK extraction failed: %w", err)
	}

	extracted := filepath.Join(parent, "android-ndk-"+bc.NDKVersion)
	if extracted != bc.NDKHome {
		if err := os.Rename(extracted, bc.NDKHome); err != nil {
			return fmt.Errorf("failed to move NDK into place: %w", err)
		}
	}

	return synthesizeToolLinks(bc.NDKHome)
}

// synthesizeToolLinks creates triple-prefixed tool names as symlinks to the
// underlying llvm-suffixed binaries, for each target triple, skipping any
// that already exist. The BusyBox build derives every tool name from
// CROSS_COMPILE, and the NDK only ships the compiler drivers prefixed.
func synthesizeToolLinks(ndkHome string) error {
	binDir := toolchainBinDir(ndkHome)
	if _, err := os.Stat(binDir); err != nil {
		return fmt.Errorf("NDK toolchain bin directory missing: %w", err)
	}

	for _, a := range AllArches() {
		prefix := a.ToolPrefix()
		for _, tool := range binutilsTools {
			linkPath := filepath.Join(binDir, prefix+tool)
			if _, err := os.Lstat(linkPath); err == nil {
				continue
			}
			if err := os.Symlink("llvm-"+tool, linkPath); err != nil {
				return fmt.Errorf("failed to link %s: %w", linkPath, err)
			}
			debugf("Linked %s -> llvm-%s\n", linkPath, tool)
		}

		// The makefile calls $(CROSS_COMPILE)gcc; point it at clang.
		for from, to := range map[string]string{
			prefix + "gcc": prefix + "clang",
			prefix + "g++": prefix + "clang++",
		} {
			linkPath := filepath.Join(binDir, from)
			if _, err := os.Lstat(linkPath); err == nil {
				continue
			}
			if err := os.Symlink(to, linkPath); err != nil {
				return fmt.Errorf("failed to link %s: %w", linkPath, err)
			}
			debugf("Linked %s -> %s\n", linkPath, to)
		}
	}
	return nil
}
