package bbndk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// configKey is one targeted substitution in the BusyBox .config file.
// Matching is line-oriented on the exact key, so unrelated keys sharing a
// prefix (CONFIG_STATIC vs CONFIG_STATIC_LIBGCC) are never touched.
type configKey struct {
	Key   string
	Value string
}

// mutateConfigLines rewrites the lines of a .config, replacing each targeted
// key's line (either its "KEY=..." form or the commented-out
// "# KEY is not set" form) with the new assignment. Keys absent from the
// baseline are silently skipped. The operation is idempotent.
func mutateConfigLines(lines []string, subs []configKey) []string {
	out := make([]string, len(lines))
	copy(out, lines)

	for _, sub := range subs {
		assign := sub.Key + "="
		unset := "# " + sub.Key + " is not set"
		for i, line := range out {
			if strings.HasPrefix(line, assign) || line == unset {
				out[i] = assign + sub.Value
				break
			}
		}
	}
	return out
}

// writeBuildConfig materializes the embedded baseline configuration into the
// source tree as .config, retargeted at the given architecture's toolchain.
func writeBuildConfig(bc *BuildConfig, a Arch, srcDir string) error {
	baseline, err := embeddedAssets.ReadFile("assets/busybox.config")
	if err != nil {
		return fmt.Errorf("failed to read embedded baseline config: %w", err)
	}

	binDir := toolchainBinDir(bc.NDKHome)
	sysroot := toolchainSysroot(bc.NDKHome)

	subs := []configKey{
		{Key: "CONFIG_CROSS_COMPILER_PREFIX", Value: fmt.Sprintf("%q", filepath.Join(binDir, a.ToolPrefix()))},
		{Key: "CONFIG_SYSROOT", Value: fmt.Sprintf("%q", sysroot)},
		{Key: "CONFIG_EXTRA_CFLAGS", Value: `"-Os -fno-asynchronous-unwind-tables"`},
		{Key: "CONFIG_EXTRA_LDFLAGS", Value: `"-static"`},
		{Key: "CONFIG_STATIC", Value: "y"},
		{Key: "CONFIG_STATIC_LIBGCC", Value: "y"},
	}

	lines := strings.Split(string(baseline), "\n")
	lines = mutateConfigLines(lines, subs)

	dotConfig := filepath.Join(srcDir, ".config")
	if err := os.WriteFile(dotConfig, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dotConfig, err)
	}
	debugf("Wrote build config for %s to %s\n", a.Name, dotConfig)
	return nil
}
