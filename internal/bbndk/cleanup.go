package bbndk

import (
	"fmt"
	"os"
	"path/filepath"
)

// cleanOutput deletes the previous run's build directories, module tree and
// artifacts. The download cache survives: re-fetching the NDK on every run
// would dwarf the build itself.
func cleanOutput(keepCache bool) error {
	entries, err := os.ReadDir(OutDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read output dir: %w", err)
	}

	for _, e := range entries {
		path := filepath.Join(OutDir, e.Name())
		if keepCache && (path == CacheStore || path == NDKHome) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		debugf("Removed %s\n", path)
	}
	return nil
}
