package bbndk

import (
	"testing"
)

// setupTestDirs points all output globals at a fresh temp directory and
// returns it. Tests mutating the globals must not run in parallel.
func setupTestDirs(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	cfg := &Config{Values: map[string]string{
		"BBNDK_OUT": tmp,
	}}
	initConfig(cfg)
	return tmp
}

// testBuildConfig returns a resolved config for one architecture rooted in
// the test's temp directory.
func testBuildConfig(t *testing.T, arches ...string) *BuildConfig {
	t.Helper()
	args := []string{defaultBusyBoxVersion}
	args = append(args, arches...)
	bc, err := resolveBuildConfig(&Config{Values: map[string]string{}}, args)
	if err != nil {
		t.Fatalf("resolveBuildConfig failed: %v", err)
	}
	return bc
}
