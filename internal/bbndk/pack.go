package bbndk

import (
	"fmt"
	"os"
	"strings"
)

// packageModule archives the assembled module tree into the versioned zip
// and prints the build summary. The zip's internal root is the module
// tree's root. Interrupting mid-write would leave a truncated artifact, so
// the phase is flagged critical for the signal handler.
func packageModule(bc *BuildConfig) error {
	artifact := bc.ArtifactPath()

	isCriticalAtomic.Store(1)
	defer isCriticalAtomic.Store(0)

	if err := zipDir(ModuleDir, artifact); err != nil {
		os.Remove(artifact)
		return fmt.Errorf("packaging failed: %w", err)
	}

	sidecar, err := writeChecksumSidecar(artifact)
	if err != nil {
		return err
	}

	info, err := os.Stat(artifact)
	if err != nil {
		return err
	}

	names := make([]string, len(bc.Arches))
	for i, a := range bc.Arches {
		names[i] = a.Name
	}

	fmt.Println()
	colArrow.Print("-> ")
	colSuccess.Println("Build complete")
	cPrintf(colInfo, "   busybox:  %s\n", bc.BusyBoxVersion)
	cPrintf(colInfo, "   arches:   %s\n", strings.Join(names, " "))
	cPrintf(colInfo, "   artifact: %s (%.1f MiB)\n", artifact, float64(info.Size())/(1024*1024))
	cPrintf(colInfo, "   checksum: %s\n", sidecar)
	return nil
}
