package bbndk

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// listPatches returns the *.patch files of dir in lexicographic order.
// A missing directory is an empty set, not an error.
func listPatches(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var patches []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".patch") {
			continue
		}
		patches = append(patches, filepath.Join(dir, e.Name()))
	}
	sort.Strings(patches)
	return patches
}

// applyPatches applies every patch to the source tree, best-effort. Patches
// are optional enhancements: one that fails to apply is logged and skipped,
// never fatal. Returns the number that applied cleanly.
func applyPatches(srcDir string, patches []string) int {
	applied := 0
	for _, p := range patches {
		colArrow.Print("-> ")
		colSuccess.Printf("Applying patch %s\n", filepath.Base(p))

		// Mailbox-style apply keeps upstream authorship when the patch
		// came out of git format-patch.
		cmd := exec.Command("git", "am", p)
		cmd.Dir = srcDir
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Run(); err == nil {
			applied++
			continue
		}

		// Leave the tree usable for the next patch.
		abort := exec.Command("git", "am", "--abort")
		abort.Dir = srcDir
		abort.Stdout = io.Discard
		abort.Stderr = io.Discard
		abort.Run()

		// Tarball source trees are not git repositories; fall back to a
		// plain apply before giving up on this patch.
		fallback := exec.Command("git", "apply", p)
		fallback.Dir = srcDir
		fallback.Stdout = io.Discard
		fallback.Stderr = io.Discard
		if err := fallback.Run(); err == nil {
			applied++
			continue
		}

		cPrintf(colWarn, "Patch %s did not apply, skipping\n", filepath.Base(p))
	}
	return applied
}
