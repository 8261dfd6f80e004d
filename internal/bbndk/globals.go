package bbndk

import (
	"embed"
	"errors"
	"sync/atomic"

	"github.com/gookit/color"
)

// GLOBAL STATE
// We use a value of 1 for critical and 0 for non-critical/default.
// Packaging and the final artifact move are the only critical phases.
var isCriticalAtomic atomic.Int32

// Global variables
var (
	OutDir     string
	BuildRoot  string
	ModuleDir  string
	LogDir     string
	CacheStore string
	NDKHome    string
	NDKRelease string
	PatchDir   string
	Debug      bool
	Verbose    bool
	ConfigFile = "/etc/bbndk.conf"
	version    = "dev"     //default version; overridden at build time
	buildDate  = "unknown" // overridden at build time

	errUnknownArch = errors.New("unknown architecture")
	errUnknownABI  = errors.New("unknown device ABI")

	// Global executor (declared, assigned in Main)
	BuildExec *Executor

	//go:embed assets/busybox.config
	embeddedAssets embed.FS
)

// color helpers
var (
	colInfo    = color.Info // style provided by gookit/color
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
)
