package files

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestSafePath(t *testing.T) {
	dir := t.TempDir()
	free := filepath.Join(dir, "program.py")
	taken := filepath.Join(dir, "taken.py")
	full := filepath.Join(dir, "full.py")
	for _, p := range []string{taken, full} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	for n := 1; n <= maxNumberedSiblings; n++ {
		if err := os.WriteFile(sibling(full, n), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	got, changed, err := SafePath(free)
	if err != nil || changed || got != free {
		t.Fatalf("free path: got (%q, %v, %v)", got, changed, err)
	}

	got, changed, err = SafePath(taken)
	if err != nil || !changed || got != filepath.Join(dir, "taken_1.py") {
		t.Fatalf("taken path: got (%q, %v, %v)", got, changed, err)
	}

	got, changed, err = SafePath(full)
	if err != nil || !changed {
		t.Fatalf("full path: got (%q, %v, %v)", got, changed, err)
	}
	if !strings.HasPrefix(filepath.Base(got), "full_") || filepath.Ext(got) != ".py" {
		t.Fatalf("expected UUID-suffixed name, got %q", got)
	}

	if _, _, err := SafePath(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestRejectSymlinkPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink not permitted on Windows")
	}
	tmp := t.TempDir()
	realDir := filepath.Join(tmp, "real", "nested")
	if err := os.MkdirAll(realDir, 0700); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(tmp, "target.py")
	if err := os.WriteFile(target, []byte("original"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(tmp, "link.py")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(tmp, "real"), filepath.Join(tmp, "linkdir")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "plain_new_file", path: filepath.Join(tmp, "real", "program.py")},
		{name: "missing_dirs", path: filepath.Join(tmp, "a", "b", "program.py")},
		{name: "symlink_target", path: filepath.Join(tmp, "link.py"), wantErr: true},
		{name: "symlink_parent", path: filepath.Join(tmp, "linkdir", "program.py"), wantErr: true},
		{name: "symlink_ancestor", path: filepath.Join(tmp, "linkdir", "nested", "program.py"), wantErr: true},
		{name: "empty", path: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RejectSymlinkPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RejectSymlinkPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestAncestors(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("volume roots differ on Windows")
	}
	root := string(os.PathSeparator)
	got := ancestors(filepath.Join(root, "a", "b", "c.py"))
	want := []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "b"),
		filepath.Join(root, "a", "b", "c.py"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("ancestors = %v, want %v", got, want)
	}
}

func TestAtomicWriteRejectsSymlinkTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink not permitted on Windows")
	}
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target.py")
	if err := os.WriteFile(target, []byte("original"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmp, "program.py")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWrite(link, []byte("print(1)"), 0600); err == nil {
		t.Fatalf("expected AtomicWrite to reject symlink")
	}
	data, _ := os.ReadFile(target)
	if string(data) != "original" {
		t.Fatalf("target modified via symlink: %s", data)
	}
}
