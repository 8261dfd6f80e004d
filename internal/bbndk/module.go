package bbndk

import (
	"fmt"
	"os"
	"path/filepath"
)

// The Magisk installer contract: a fixed directory skeleton, a module.prop,
// and the lifecycle scripts below. update-binary is a stub that hands off to
// Magisk's own installer framework, which in turn runs customize.sh; all the
// architecture selection happens there, on the device.

const updateBinaryScript = `#!/sbin/sh

#################
# Initialization
#################

umask 022

# echo before loading util_functions
ui_print() { echo "$1"; }

require_new_magisk() {
  ui_print "*******************************"
  ui_print " Please install Magisk v20.4+! "
  ui_print "*******************************"
  exit 1
}

#########################
# Load util_functions.sh
#########################

OUTFD=$2
ZIPFILE=$3

mount /data 2>/dev/null

[ -f /data/adb/magisk/util_functions.sh ] || require_new_magisk
. /data/adb/magisk/util_functions.sh
[ $MAGISK_VER_CODE -lt 20400 ] && require_new_magisk

install_module
exit 0
`

const updaterScript = `#MAGISK
`

const customizeScript = `#!/system/bin/sh
# Select the binary matching this device and expose every applet.

ABI=$(getprop ro.product.cpu.abi)
case "$ABI" in
  arm64-v8a) ARCH=arm64 ;;
  armeabi-v7a|armeabi) ARCH=arm ;;
  x86_64) ARCH=x86_64 ;;
  x86) ARCH=x86 ;;
  *) abort "! Unsupported ABI: $ABI" ;;
esac

ui_print "- Device ABI: $ABI"
ui_print "- Installing busybox ($ARCH)"

BINDIR=$MODPATH/system/bin
BB=$BINDIR/busybox

[ -f "$BINDIR/$ARCH/busybox" ] || abort "! No busybox binary for $ARCH in this zip"
mv "$BINDIR/$ARCH/busybox" "$BB"

# Drop the other architectures' payloads.
for dir in arm arm64 x86 x86_64; do
  rm -rf "$BINDIR/$dir"
done

set_perm "$BB" 0 0 0755

# Symlink every applet that is not already present on the device.
count=0
for applet in $("$BB" --list); do
  if [ ! -e "/system/bin/$applet" ] && [ ! -e "$BINDIR/$applet" ]; then
    ln -s busybox "$BINDIR/$applet"
    count=$((count + 1))
  fi
done
ui_print "- Linked $count applets"
`

const postFsDataScript = `#!/system/bin/sh
# This script will be executed in post-fs-data mode
`

const serviceScript = `#!/system/bin/sh
# This script will be executed in late_start service mode
`

// moduleProp renders the module metadata for a BusyBox version.
func moduleProp(busyboxVersion string) string {
	return fmt.Sprintf(`id=android-busybox-ndk
name=BusyBox NDK
version=%s
versionCode=1
author=android-busybox-ndk
description=BusyBox %s cross-compiled with the Android NDK for arm, arm64, x86 and x86_64
`, busyboxVersion, busyboxVersion)
}

// assembleModule creates the Magisk module skeleton and materializes the
// metadata file and lifecycle scripts. The per-arch binaries are staged
// separately by the compiler driver; this step only lays out everything
// around them. All generated scripts are executable.
func assembleModule(bc *BuildConfig) error {
	metaInf := filepath.Join(ModuleDir, "META-INF", "com", "google", "android")
	for _, dir := range []string{
		metaInf,
		filepath.Join(ModuleDir, "system", "bin"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create module dir %s: %w", dir, err)
		}
	}

	files := map[string]string{
		filepath.Join(metaInf, "update-binary"):     updateBinaryScript,
		filepath.Join(metaInf, "updater-script"):    updaterScript,
		filepath.Join(ModuleDir, "customize.sh"):    customizeScript,
		filepath.Join(ModuleDir, "post-fs-data.sh"): postFsDataScript,
		filepath.Join(ModuleDir, "service.sh"):      serviceScript,
		filepath.Join(ModuleDir, "module.prop"):     moduleProp(bc.BusyBoxVersion),
	}

	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
