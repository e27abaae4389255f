package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// EnsureDirectoryWritable verifies path exists, is a directory, and can be
// written to, by creating and removing a probe file inside it.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	name, err := generateRandomString(8)
	if err != nil {
		return err
	}
	probe := filepath.Join(path, ".writable_"+name)
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", path, err)
	}
	_ = f.Close()
	return os.Remove(probe)
}

// TempDir is a scratch directory created under a job's working area, deleted
// via Cleanup once its contents are no longer needed.
type TempDir struct {
	path string
}

// Path returns the directory's filesystem path.
func (d *TempDir) Path() string { return d.path }

// Cleanup removes the directory and everything in it.
func (d *TempDir) Cleanup() error {
	return os.RemoveAll(d.path)
}

// CreateTempDir creates a new directory under baseDir named
// "<prefix>_<uuid>". A job's scratch directory is created exactly once, so
// it is named with a full UUID rather than the short random suffix
// CreateTempFilePath uses for the many per-chunk files underneath it.
func CreateTempDir(baseDir, prefix string) (*TempDir, error) {
	path := filepath.Join(baseDir, prefix+"_"+uuid.NewString())
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &TempDir{path: path}, nil
}

// CreateTempFilePath returns a path under baseDir named
// "<prefix>_<random>.<ext>" without creating the file.
func CreateTempFilePath(baseDir, prefix, ext string) (string, error) {
	suffix, err := generateRandomString(12)
	if err != nil {
		return "", err
	}
	name := prefix + "_" + suffix
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	return filepath.Join(baseDir, name), nil
}

// CleanupStaleTempFiles removes files under dir whose name starts with prefix
// and whose modification time is older than maxAge. It returns the number of
// files removed. A non-existent dir is not an error.
func CleanupStaleTempFiles(dir, prefix string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read dir %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) || maxAge == 0 {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// GetAvailableSpace returns the free space in bytes on the filesystem
// containing path, or 0 if it cannot be determined.
func GetAvailableSpace(path string) uint64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0
	}
	return stat.Bavail * uint64(stat.Bsize)
}

// CheckDiskSpace logs a warning via logFn (if non-nil) when the free space
// on the filesystem containing path drops below a safety margin for
// in-flight chunk segments. Returns the free space observed.
func CheckDiskSpace(path string, logFn func(format string, args ...any)) uint64 {
	const lowSpaceThreshold = 1 << 30 // 1 GiB

	available := GetAvailableSpace(path)
	if available > 0 && available < lowSpaceThreshold && logFn != nil {
		logFn("low disk space on %s: %s available", path, FormatBytes(available))
	}
	return available
}

// generateRandomString returns a random hex string of length n, used to
// make scratch file names collision-free across concurrent workers
// (CreateTempDir names directories with a UUID instead).
func generateRandomString(n int) (string, error) {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random string: %w", err)
	}
	return hex.EncodeToString(buf)[:n], nil
}
