package bbndk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"
)

// hashString returns the hex BLAKE3 digest of s, used to key cached downloads
// so distinct URLs sharing a basename never collide in the cache store.
func hashString(s string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(s))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// hashFile returns the hex BLAKE3 digest of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// writeChecksumSidecar writes "<digest>  <basename>" next to the artifact,
// in the two-space format b3sum and sha256sum agree on.
func writeChecksumSidecar(artifactPath string) (string, error) {
	sum, err := hashFile(artifactPath)
	if err != nil {
		return "", err
	}
	sidecar := artifactPath + ".b3"
	line := fmt.Sprintf("%s  %s\n", sum, filepath.Base(artifactPath))
	if err := os.WriteFile(sidecar, []byte(line), 0o644); err != nil {
		return "", fmt.Errorf("failed to write checksum sidecar: %w", err)
	}
	return sidecar, nil
}
