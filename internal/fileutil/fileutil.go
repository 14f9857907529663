package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyAtomic copies src to dst through a temporary sibling file that is
// fsynced, size-checked, and renamed into place. Readers of dst never see a
// partial file; on failure dst is left untouched.
func CopyAtomic(src, dst string, mode os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.partial")
	if err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, in)
	if err != nil {
		return written, fmt.Errorf("copy data: %w", err)
	}
	if written != info.Size() {
		return written, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if err := tmp.Chmod(mode); err != nil {
		return written, fmt.Errorf("set destination mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return written, fmt.Errorf("sync destination: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("close destination: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return written, fmt.Errorf("rename destination: %w", err)
	}
	committed = true
	return written, nil
}
