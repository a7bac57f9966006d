package emit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// writeFileAtomic writes data to a uniquely named sibling temp file and
// renames it over path. Readers see either the old file or the complete
// new one.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tempPath := f.Name()
	cleanup := func() {
		f.Close()
		os.Remove(tempPath)
	}

	buf := bufio.NewWriter(f)
	if _, err := buf.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", tempPath, err)
	}
	if err := buf.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("flush %s: %w", tempPath, err)
	}
	if err := f.Chmod(filePerms); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tempPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close %s: %w", tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}

// writeFile writes a catalog document. Catalog documents are referenced
// only through the manifest, which is written after them.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, filePerms); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
