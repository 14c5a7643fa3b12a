package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxNumberedSiblings bounds the program_1.py .. program_9.py candidates.
const maxNumberedSiblings = 9

// sibling returns path with _n inserted before the extension.
func sibling(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), n, ext)
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// SafePath returns path unchanged when it is free. Otherwise it returns the
// first free numbered sibling, and past those a UUID-suffixed name.
func SafePath(path string) (string, bool, error) {
	if path == "" {
		return "", false, fmt.Errorf("path is empty")
	}
	taken, err := exists(path)
	if err != nil || !taken {
		return path, false, err
	}

	for n := 1; n <= maxNumberedSiblings; n++ {
		candidate := sibling(path, n)
		taken, err := exists(candidate)
		if err != nil {
			return "", false, err
		}
		if !taken {
			return candidate, true, nil
		}
	}

	suffix := uuid.NewString()
	if u, err := uuid.NewV7(); err == nil {
		suffix = u.String()
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%s%s", strings.TrimSuffix(path, ext), suffix, ext), true, nil
}

// RejectSymlinkPath fails when path or any existing ancestor is a symlink
// or, on Windows, a reparse point. Missing components end the walk.
func RejectSymlinkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	for _, current := range ancestors(abs) {
		info, err := os.Lstat(current)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to access path: %w", err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("refusing to write to symlink path: %s (symlink detected at %s)", path, current)
		}
		reparse, err := isReparsePoint(current)
		if err != nil {
			return fmt.Errorf("failed to check reparse point: %w", err)
		}
		if reparse {
			return fmt.Errorf("refusing to write to symlink path: %s (reparse point detected at %s)", path, current)
		}
	}
	return nil
}

// ancestors lists every prefix of the absolute path abs, root excluded,
// from the outermost directory down to abs itself.
func ancestors(abs string) []string {
	var out []string
	for dir := abs; ; {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		out = append(out, dir)
		dir = parent
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
