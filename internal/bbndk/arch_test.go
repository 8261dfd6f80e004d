package bbndk

import (
	"errors"
	"testing"
)

// TestArchTable verifies that the fixed target set maps each short name to
// its documented triple, ABI and kernel arch, and nothing else resolves.
func TestArchTable(t *testing.T) {
	tests := []struct {
		name       string
		triple     string
		abi        string
		kernelArch string
	}{
		{"arm", "armv7a-linux-androideabi", "armeabi-v7a", "arm"},
		{"arm64", "aarch64-linux-android", "arm64-v8a", "arm64"},
		{"x86", "i686-linux-android", "x86", "i386"},
		{"x86_64", "x86_64-linux-android", "x86_64", "x86_64"},
	}

	all := AllArches()
	if len(all) != len(tests) {
		t.Fatalf("AllArches() returned %d entries; want %d", len(all), len(tests))
	}

	for i, tt := range tests {
		a, err := LookupArch(tt.name)
		if err != nil {
			t.Fatalf("LookupArch(%q) failed: %v", tt.name, err)
		}
		if a.Triple != tt.triple {
			t.Errorf("LookupArch(%q).Triple = %q; want %q", tt.name, a.Triple, tt.triple)
		}
		if a.ABI != tt.abi {
			t.Errorf("LookupArch(%q).ABI = %q; want %q", tt.name, a.ABI, tt.abi)
		}
		if a.KernelArch != tt.kernelArch {
			t.Errorf("LookupArch(%q).KernelArch = %q; want %q", tt.name, a.KernelArch, tt.kernelArch)
		}
		if all[i].Name != tt.name {
			t.Errorf("AllArches()[%d] = %q; want %q (canonical order)", i, all[i].Name, tt.name)
		}
	}
}

func TestLookupArchUnknown(t *testing.T) {
	for _, name := range []string{"mips", "riscv64", "", "ARM64"} {
		if _, err := LookupArch(name); !errors.Is(err, errUnknownArch) {
			t.Errorf("LookupArch(%q) = %v; want errUnknownArch", name, err)
		}
	}
}

// TestLookupByABI covers the installer-side mapping from device-reported
// ABI strings back to the build architecture.
func TestLookupByABI(t *testing.T) {
	tests := []struct {
		abi  string
		want string
	}{
		{"arm64-v8a", "arm64"},
		{"armeabi-v7a", "arm"},
		{"x86", "x86"},
		{"x86_64", "x86_64"},
	}
	for _, tt := range tests {
		a, err := LookupByABI(tt.abi)
		if err != nil {
			t.Fatalf("LookupByABI(%q) failed: %v", tt.abi, err)
		}
		if a.Name != tt.want {
			t.Errorf("LookupByABI(%q) = %q; want %q", tt.abi, a.Name, tt.want)
		}
	}

	if _, err := LookupByABI("mips64"); !errors.Is(err, errUnknownABI) {
		t.Errorf("LookupByABI(\"mips64\") = %v; want errUnknownABI", err)
	}
}

func TestToolPrefix(t *testing.T) {
	a, _ := LookupArch("arm64")
	if got, want := a.ToolPrefix(), "aarch64-linux-android21-"; got != want {
		t.Errorf("ToolPrefix() = %q; want %q", got, want)
	}
}
