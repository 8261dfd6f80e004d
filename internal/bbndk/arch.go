package bbndk

import "fmt"

// Arch describes one Android CPU architecture target. The set is closed:
// BusyBox is built for exactly these four, and the Magisk installer selects
// among them by device ABI at flash time.
type Arch struct {
	Name       string // short name used on the command line and in directory layout
	Triple     string // clang target triple prefix (no API level)
	ABI        string // ro.product.cpu.abi value reported by matching devices
	KernelArch string // value exported as ARCH= for the BusyBox makefile
}

// DefaultAPILevel is the minimum Android API the produced binaries target.
// API 21 is the oldest level the NDK's unified toolchain still supports.
const DefaultAPILevel = 21

var archTable = []Arch{
	{Name: "arm", Triple: "armv7a-linux-androideabi", ABI: "armeabi-v7a", KernelArch: "arm"},
	{Name: "arm64", Triple: "aarch64-linux-android", ABI: "arm64-v8a", KernelArch: "arm64"},
	{Name: "x86", Triple: "i686-linux-android", ABI: "x86", KernelArch: "i386"},
	{Name: "x86_64", Triple: "x86_64-linux-android", ABI: "x86_64", KernelArch: "x86_64"},
}

// AllArches returns the full fixed target set in canonical order.
func AllArches() []Arch {
	out := make([]Arch, len(archTable))
	copy(out, archTable)
	return out
}

// LookupArch resolves a short architecture name to its table entry.
func LookupArch(name string) (Arch, error) {
	for _, a := range archTable {
		if a.Name == name {
			return a, nil
		}
	}
	return Arch{}, fmt.Errorf("%w: %s", errUnknownArch, name)
}

// LookupByABI resolves a device-reported ABI string to its table entry.
// Devices report secondary ABIs too; this matches the primary one only.
func LookupByABI(abi string) (Arch, error) {
	for _, a := range archTable {
		if a.ABI == abi {
			return a, nil
		}
	}
	return Arch{}, fmt.Errorf("%w: %s", errUnknownABI, abi)
}

// ToolPrefix returns the triple-with-API prefix used for cross tool names,
// e.g. "aarch64-linux-android21-".
func (a Arch) ToolPrefix() string {
	return fmt.Sprintf("%s%d-", a.Triple, DefaultAPILevel)
}
