package bbndk

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config struct
type Config struct {
	Values map[string]string
}

// BuildConfig is the resolved, immutable configuration for one build run.
type BuildConfig struct {
	BusyBoxVersion string
	NDKVersion     string
	NDKHome        string
	OutDir         string
	Arches         []Arch
	Jobs           int
	SourceOverride string // optional git+URL#ref replacing the release tarball
}

const (
	defaultBusyBoxVersion = "1.36.1"
	defaultNDKVersion     = "r26d"
	defaultOutDir         = "out"
)

// Load /etc/bbndk.conf and apply defaults
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	// Attempt to read the file
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	// Merge BBNDK_* env overrides
	mergeEnvOverrides(cfg)

	return cfg, nil
}

// Merge BBNDK_* env overrides
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "BBNDK_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}

	// Also import ANDROID_NDK_HOME from the environment if present, without
	// overwriting an explicit BBNDK_NDK_HOME value
	if ndk := os.Getenv("ANDROID_NDK_HOME"); ndk != "" {
		if _, exists := cfg.Values["BBNDK_NDK_HOME"]; !exists {
			cfg.Values["BBNDK_NDK_HOME"] = ndk
		}
	}

	// Upload credentials are normally exported in the environment (CI
	// secrets), not written to the conf file; the environment wins.
	for _, key := range []string{
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME",
	} {
		if v := os.Getenv(key); v != "" {
			cfg.Values[key] = v
		}
	}
}

func initConfig(cfg *Config) {
	OutDir = cfg.Values["BBNDK_OUT"]
	if OutDir == "" {
		OutDir = defaultOutDir
	}

	NDKRelease = cfg.Values["BBNDK_NDK_VERSION"]
	if NDKRelease == "" {
		NDKRelease = defaultNDKVersion
	}

	NDKHome = cfg.Values["BBNDK_NDK_HOME"]
	if NDKHome == "" {
		NDKHome = filepath.Join(OutDir, "android-ndk-"+NDKRelease)
	}

	PatchDir = cfg.Values["BBNDK_PATCHES"]
	if PatchDir == "" {
		PatchDir = "patches"
	}

	BuildRoot = filepath.Join(OutDir, "build")
	ModuleDir = filepath.Join(OutDir, "module")
	LogDir = filepath.Join(OutDir, "logs")
	CacheStore = filepath.Join(OutDir, "_cache")

	Debug = cfg.Values["BBNDK_DEBUG"] == "1"
	Verbose = cfg.Values["BBNDK_VERBOSE"] == "1"
}

// resolveBuildConfig turns the positional build arguments into a BuildConfig.
// args[0] is the BusyBox version, args[1:] the architecture list; both
// optional. Architecture names are validated against the fixed table up
// front so a typo fails before any network or compile work starts.
func resolveBuildConfig(cfg *Config, args []string) (*BuildConfig, error) {
	bc := &BuildConfig{
		BusyBoxVersion: defaultBusyBoxVersion,
		NDKVersion:     NDKRelease,
		NDKHome:        NDKHome,
		OutDir:         OutDir,
		Jobs:           runtime.NumCPU(),
		SourceOverride: cfg.Values["BBNDK_SOURCE"],
	}

	if len(args) > 0 && args[0] != "" {
		bc.BusyBoxVersion = args[0]
	}

	if len(args) > 1 {
		for _, name := range args[1:] {
			// The list may arrive as a single space-separated argument.
			for _, field := range strings.Fields(name) {
				a, err := LookupArch(field)
				if err != nil {
					return nil, err
				}
				bc.Arches = append(bc.Arches, a)
			}
		}
	}
	if len(bc.Arches) == 0 {
		bc.Arches = AllArches()
	}

	return bc, nil
}

// ArtifactName returns the deterministic zip filename for a version.
func ArtifactName(busyboxVersion string) string {
	return fmt.Sprintf("android-busybox-ndk-v%s.zip", busyboxVersion)
}

// ArtifactPath returns the final artifact location under the output directory.
func (bc *BuildConfig) ArtifactPath() string {
	return filepath.Join(bc.OutDir, ArtifactName(bc.BusyBoxVersion))
}

// ArchBuildDir returns the isolated build directory for one architecture.
func (bc *BuildConfig) ArchBuildDir(a Arch) string {
	return filepath.Join(bc.OutDir, "build", a.Name)
}

// ArchSourceDir returns the BusyBox source tree location for one architecture.
func (bc *BuildConfig) ArchSourceDir(a Arch) string {
	return filepath.Join(bc.ArchBuildDir(a), "busybox")
}
