package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/oukeidos/codelex/internal/logger"
)

// stage writes data to a hidden temp file in dir and returns its path. The
// file is synced and closed; on error nothing is left behind.
func stage(dir string, data []byte, perms os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, "codelex-*.tmp")
	if err != nil {
		return "", fmt.Errorf("cannot stage output in %s: %w", dir, err)
	}
	name := f.Name()

	err = f.Chmod(perms)
	if err == nil {
		_, err = f.Write(data)
	}
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(name)
		return "", fmt.Errorf("cannot stage output in %s: %w", dir, err)
	}
	return name, nil
}

// AtomicWrite replaces path with data so readers see either the old program
// or the new one, never a partial file.
func AtomicWrite(path string, data []byte, perms os.FileMode) error {
	if err := RejectSymlinkPath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	staged, err := stage(dir, data, perms)
	if err != nil {
		return err
	}
	if err := renameAtomic(staged, path); err != nil {
		os.Remove(staged)
		return fmt.Errorf("cannot move output into %s: %w", path, err)
	}
	flushDir(dir)
	return nil
}

// AtomicWriteExclusive writes data without replacing an existing file. When
// path is taken it tries path_1 .. path_9 and returns the path it wrote.
func AtomicWriteExclusive(path string, data []byte, perms os.FileMode) (string, error) {
	if err := RejectSymlinkPath(path); err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	staged, err := stage(dir, data, perms)
	if err != nil {
		return "", err
	}
	defer os.Remove(staged)

	for n := 0; n <= maxNumberedSiblings; n++ {
		candidate := path
		if n > 0 {
			candidate = sibling(path, n)
		}
		// Link fails if candidate exists, unlike rename.
		err := os.Link(staged, candidate)
		if err == nil {
			flushDir(dir)
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("cannot create %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("%s and its numbered alternatives already exist", path)
}

// flushDir persists a rename. Failure only costs durability, so it is logged.
func flushDir(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	f, err := os.Open(dir)
	if err == nil {
		err = f.Sync()
		f.Close()
	}
	if err != nil {
		logger.Warn("Output directory not flushed", "path", dir, "error", err)
	}
}
