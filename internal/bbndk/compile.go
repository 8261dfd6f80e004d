package bbndk

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// makeProg is the external build system driving BusyBox's own makefiles.
var makeProg = "make"

// compileArch runs the two-step external build for one architecture:
// a parallel compile followed by the staging install into _install/.
// Both steps run through the Executor so a cancelled run kills the whole
// make process group. Any non-zero exit aborts the pipeline.
func compileArch(bc *BuildConfig, a Arch, execr *Executor) error {
	srcDir := bc.ArchSourceDir(a)

	if err := os.MkdirAll(LogDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	logPath := filepath.Join(LogDir, a.Name+".log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create build log: %w", err)
	}
	defer logFile.Close()

	var outW io.Writer = logFile
	if Verbose || Debug {
		outW = io.MultiWriter(os.Stdout, logFile)
	}

	env := append(os.Environ(),
		"ARCH="+a.KernelArch,
		"CROSS_COMPILE="+filepath.Join(toolchainBinDir(bc.NDKHome), a.ToolPrefix()),
	)

	colArrow.Print("-> ")
	colSuccess.Printf("Compiling busybox %s for %s (%d jobs)\n", bc.BusyBoxVersion, a.Name, bc.Jobs)

	build := exec.Command(makeProg, fmt.Sprintf("-j%d", bc.Jobs))
	build.Dir = srcDir
	build.Env = env
	build.Stdout = outW
	build.Stderr = outW
	if err := execr.Run(build); err != nil {
		return fmt.Errorf("compile failed for %s (see %s): %w", a.Name, logPath, err)
	}

	install := exec.Command(makeProg, "CONFIG_PREFIX=_install", "install")
	install.Dir = srcDir
	install.Env = env
	install.Stdout = outW
	install.Stderr = outW
	if err := execr.Run(install); err != nil {
		return fmt.Errorf("install failed for %s (see %s): %w", a.Name, logPath, err)
	}

	return stageBinary(bc, a)
}

// stageBinary copies the staged multi-call binary into its
// architecture-keyed slot under the module tree.
func stageBinary(bc *BuildConfig, a Arch) error {
	staged := filepath.Join(bc.ArchSourceDir(a), "_install", "bin", "busybox")
	if _, err := os.Stat(staged); err != nil {
		return fmt.Errorf("staged binary missing for %s: %w", a.Name, err)
	}

	destDir := filepath.Join(ModuleDir, "system", "bin", a.Name)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}
	dest := filepath.Join(destDir, "busybox")
	if err := copyFile(staged, dest); err != nil {
		return fmt.Errorf("failed to stage binary for %s: %w", a.Name, err)
	}
	return os.Chmod(dest, 0o755)
}
