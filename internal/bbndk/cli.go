package bbndk

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
)

// printHelp prints the commands table
func printHelp() {
	colSuccess.Println("Usage: bbndk <command> [arguments]")
	colSuccess.Println("Run 'bbndk build' with no arguments for a default release build")
	fmt.Println()
	color.Info.Println("Available Commands:")

	type cmdInfo struct {
		Cmd  string
		Args string
		Desc string
	}
	cmds := []cmdInfo{
		{"build, b", "[version] [arch...]", "Cross-compile busybox and package the Magisk module"},
		{"provision", "", "Download and prepare the NDK toolchain only"},
		{"clean", "", "Delete the output directory, caches included"},
		{"log", "[arch]", "TUI viewer for per-architecture build logs"},
		{"upload", "[file]", "Upload the artifact and checksum to the configured bucket"},
		{"version, --version", "", "Version information"},
	}

	// Find the longest usage string to calculate the first column width.
	maxLen := 0
	for _, c := range cmds {
		length := len(c.Cmd) + len(c.Args)
		if c.Args != "" {
			length++ // Account for the space
		}
		if length > maxLen {
			maxLen = length
		}
	}
	columnWidth := maxLen + 4

	for _, c := range cmds {
		var usageString string
		if c.Args != "" {
			usageString = fmt.Sprintf("  %s %s", c.Cmd, c.Args)
		} else {
			usageString = fmt.Sprintf("  %s", c.Cmd)
		}

		fmt.Print("  ")
		color.Bold.Print(c.Cmd)
		if c.Args != "" {
			fmt.Print(" ")
			color.Cyan.Print(c.Args)
		}

		pad := columnWidth - len(usageString)
		if pad < 1 {
			pad = 1
		}
		fmt.Print(strings.Repeat(" ", pad))
		color.Info.Println(c.Desc)
	}
	fmt.Println()
}

// Main is the CLI entrypoint for cmd/bbndk.
func Main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		for {
			select {
			case sig := <-sigs:
				if isCriticalAtomic.Load() == 1 {
					// Packaging in progress: block the 1st signal, force exit on 2nd.
					colArrow.Print("\n-> ")
					colError.Printf("Packaging in progress. Press Ctrl+C AGAIN to force exit NOW.\n")
					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						colError.Printf("Forced immediate exit.")
						os.Exit(130)
					case <-time.After(5 * time.Second):
						continue
					case <-ctx.Done():
						return
					}
				} else {
					colArrow.Print("\n-> ")
					color.Danger.Printf("Received %v. Cancelling build gracefully\n", sig)
					cancel()

					// Give the make process group a moment to die
					time.Sleep(100 * time.Millisecond)

					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						color.Danger.Printf("Second interrupt received. Forcing immediate exit.")
						os.Exit(130)
					case <-time.After(2 * time.Second):
						// An interrupted run is a failed run.
						colArrow.Print("\n-> ")
						color.Danger.Printf("Graceful shutdown timeout. Exiting.")
						os.Exit(130)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	if ctx.Err() != nil {
		return
	}

	configPath := ConfigFile
	if conf := os.Getenv("BBNDK_CONF"); conf != "" {
		configPath = conf
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read %s: %v\n", configPath, err)
	}
	initConfig(cfg)

	BuildExec = &Executor{Context: ctx}

	args := os.Args[1:]
	command := "build"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	var runErr error
	switch command {
	case "build", "b":
		runErr = runBuild(cfg, args)

	case "provision":
		bc, err := resolveBuildConfig(cfg, nil)
		if err == nil {
			err = EnsureNDK(bc)
		}
		runErr = err

	case "clean":
		runErr = cleanOutput(false)

	case "log":
		arch := ""
		if len(args) > 0 {
			arch = args[0]
		}
		os.Exit(runLogTUI(arch))

	case "upload":
		file := ""
		if len(args) > 0 {
			file = args[0]
		}
		runErr = runUpload(ctx, cfg, file)

	case "version", "--version", "-v":
		fmt.Printf("bbndk %s (%s)\n", version, buildDate)

	case "help", "--help", "-h":
		printHelp()

	default:
		// Bare invocation with a version string still means build.
		if !strings.HasPrefix(command, "-") {
			runErr = runBuild(cfg, append([]string{command}, args...))
		} else {
			printHelp()
			os.Exit(1)
		}
	}

	if runErr != nil {
		colArrow.Print("-> ")
		colError.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}

// runBuild executes the whole pipeline: clean, provision, then per
// architecture fetch/configure/patch/compile, and finally assemble and
// package. Sequential and fail-fast; only patching is best-effort.
func runBuild(cfg *Config, args []string) error {
	bc, err := resolveBuildConfig(cfg, args)
	if err != nil {
		return err
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Building busybox %s with NDK %s\n", bc.BusyBoxVersion, bc.NDKVersion)

	// A fresh run starts from a clean output tree; only the download cache
	// and a provisioned NDK survive between runs.
	if err := cleanOutput(true); err != nil {
		return err
	}

	if err := EnsureNDK(bc); err != nil {
		return err
	}

	patches := listPatches(PatchDir)

	for _, a := range bc.Arches {
		colArrow.Print("-> ")
		colSuccess.Printf("Architecture %s (%s)\n", a.Name, a.Triple)

		if err := acquireSource(bc, a); err != nil {
			return err
		}
		srcDir := bc.ArchSourceDir(a)

		if err := writeBuildConfig(bc, a, srcDir); err != nil {
			return err
		}

		if len(patches) > 0 {
			applied := applyPatches(srcDir, patches)
			cPrintf(colInfo, "Patches applied: %d/%d\n", applied, len(patches))
		}

		if err := compileArch(bc, a, BuildExec); err != nil {
			return err
		}
	}

	if err := assembleModule(bc); err != nil {
		return err
	}
	return packageModule(bc)
}
