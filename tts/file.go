package tts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic streams r into a temporary file next to path and renames it over path.
// Readers of path see either the old file or the complete new one.
func WriteAtomic(path string, r io.Reader) (written int64, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create audio directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp audio file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	written, err = io.Copy(tmp, r)
	if err != nil {
		return 0, fmt.Errorf("failed to write audio: %w", err)
	}
	if written == 0 {
		err = fmt.Errorf("synthesis returned no audio")
		return 0, err
	}
	if err = tmp.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync audio file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close audio file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, fmt.Errorf("failed to set audio file mode: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to replace audio file: %w", err)
	}

	return written, nil
}
