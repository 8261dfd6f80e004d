package bbndk

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Increase TLS handshake timeout to handle slow/problematic sites like busybox.net
	// Default is 10s, we increase it to 30s.
	transport.TLSHandshakeTimeout = 30 * time.Second

	return &http.Client{
		Transport: transport,
		Timeout:   600 * time.Second, // NDK archives run past a gigabyte
	}
}

type downloadOptions struct {
	Quiet bool // Quiet suppresses all stdout/stderr/progress output
}

func downloadFile(url, destFile string) error {
	return downloadFileWithOptions(url, destFile, downloadOptions{Quiet: false})
}

func downloadFileWithOptions(url, destFile string, opt downloadOptions) error {
	// Determine absolute path.
	// If destFile is absolute, use it directly; if relative, join with CacheStore.
	var absPath string
	if filepath.IsAbs(destFile) {
		absPath = destFile
	} else {
		if err := os.MkdirAll(CacheStore, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory %s: %w", CacheStore, err)
		}
		absPath = filepath.Join(CacheStore, filepath.Base(destFile))
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", absPath, err)
	}
	lockPath := absPath + ".lock"

	// A lock file serializes concurrent invocations racing for the same
	// cached archive (two bbndk runs sharing one cache).
	lFile, err := os.Create(lockPath)
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer lFile.Close()

	if err := unix.Flock(int(lFile.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire lock for download: %w", err)
	}
	defer unix.Flock(int(lFile.Fd()), unix.LOCK_UN)

	// DOUBLE CHECK: now that we hold the lock, the file may have appeared.
	if _, err := os.Stat(absPath); err == nil {
		debugf("File %s appeared after acquiring lock, skipping download.\n", absPath)
		_ = os.Remove(lockPath)
		return nil
	}

	defer func() {
		if _, err := os.Stat(absPath); err == nil {
			// File exists, download succeeded, remove lock file
			_ = os.Remove(lockPath)
		}
	}()

	debugf("Downloading %s -> %s\n", url, absPath)

	// --- Primary choice: curl ---
	if _, err := exec.LookPath("curl"); err == nil {
		curlArgs := []string{"-L", "--fail", "-o", absPath}
		if opt.Quiet {
			curlArgs = append(curlArgs, "-sS")
		} else {
			curlArgs = append(curlArgs, "-#")
		}
		curlArgs = append(curlArgs, url)
		cmd := exec.Command("curl", curlArgs...)
		if opt.Quiet {
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
		}
		if err := cmd.Run(); err == nil {
			return nil
		}
		debugf("curl failed, falling back to wget\n")
	} else {
		debugf("curl not found, trying wget\n")
	}

	// --- Fallback 1: wget ---
	if _, err := exec.LookPath("wget"); err == nil {
		args := []string{"-O", absPath}
		if opt.Quiet {
			args = append([]string{"-q"}, args...)
		} else {
			args = append([]string{"-nv"}, args...)
		}
		args = append(args, url)
		cmd := exec.Command("wget", args...)
		if opt.Quiet {
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
		}
		if err := cmd.Run(); err == nil {
			return nil
		}
		debugf("wget failed, falling back to native Go HTTP client\n")
	} else {
		debugf("wget not found, using native Go HTTP client\n")
	}

	// --- Fallback 2: native Go HTTP client ---
	return downloadNative(url, absPath, opt)
}

func downloadNative(url, absPath string, opt downloadOptions) error {
	client := newHTTPClient()

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("native http get failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	out, err := os.Create(absPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", absPath, err)
	}
	defer out.Close()

	var dst io.Writer = out
	if !opt.Quiet && term.IsTerminal(int(os.Stdout.Fd())) {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(absPath))
		dst = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		// Remove the partial file so the cache presence check stays honest.
		out.Close()
		os.Remove(absPath)
		return fmt.Errorf("failed to write to destination file: %w", err)
	}

	debugf("Download successful with native Go HTTP client.\n")
	return nil
}

// fetchToCache downloads url into the cache store (keyed by URL hash) unless
// already present, and returns the cached path.
func fetchToCache(url string) (string, error) {
	parts := strings.Split(url, "/")
	origFilename := parts[len(parts)-1]

	hashName := fmt.Sprintf("%s-%s", hashString(url), origFilename)
	cachePath := filepath.Join(CacheStore, hashName)

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		colArrow.Print("-> ")
		colSuccess.Printf("Fetching %s\n", origFilename)
		if err := downloadFile(url, cachePath); err != nil {
			return "", fmt.Errorf("failed to download %s: %w", url, err)
		}
	} else {
		debugf("Already in cache: %s\n", cachePath)
	}
	return cachePath, nil
}

// busyboxTarballURL is the upstream release location for a given version.
func busyboxTarballURL(version string) string {
	return fmt.Sprintf("https://busybox.net/downloads/busybox-%s.tar.bz2", version)
}

// acquireSource makes sure the BusyBox source tree for one architecture
// exists under its isolated build directory. Presence of the directory is
// the completeness signal; no checksum or partial-download detection.
func acquireSource(bc *BuildConfig, a Arch) error {
	srcDir := bc.ArchSourceDir(a)
	if _, err := os.Stat(srcDir); err == nil {
		debugf("Source tree present, skipping fetch: %s\n", srcDir)
		return nil
	}

	if strings.HasPrefix(bc.SourceOverride, "git+") {
		return cloneSource(bc.SourceOverride, srcDir)
	}

	cachePath, err := fetchToCache(busyboxTarballURL(bc.BusyBoxVersion))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return fmt.Errorf("failed to create source dir %s: %w", srcDir, err)
	}
	if err := extractTar(cachePath, srcDir); err != nil {
		// A half-extracted tree must not satisfy the presence check next run.
		os.RemoveAll(srcDir)
		return fmt.Errorf("failed to extract busybox source: %w", err)
	}
	return nil
}

// cloneArgs builds the git invocation for a shallow clone. Cloning a tag
// leaves a detached HEAD, so the advice is silenced on the command itself.
func cloneArgs(gitURL, ref, destPath string) []string {
	args := []string{"-c", "advice.detachedHead=false", "clone", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	return append(args, gitURL, destPath)
}

// cloneSource performs a shallow clone of a git+URL#ref source override.
func cloneSource(source, destPath string) error {
	gitURL := strings.TrimPrefix(source, "git+")
	ref := ""
	if strings.Contains(gitURL, "#") {
		subParts := strings.SplitN(gitURL, "#", 2)
		gitURL = subParts[0]
		ref = subParts[1]
	}

	colArrow.Print("-> ")
	colSuccess.Printf("Cloning %s into %s\n", gitURL, destPath)

	cmd := exec.Command("git", cloneArgs(gitURL, ref, destPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}
	return nil
}
