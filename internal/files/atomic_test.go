package files

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWrite_ReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.py")
	if err := os.WriteFile(path, []byte("print('old')\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWrite(path, []byte("print('new')\n"), 0644); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "print('new')\n" {
		t.Fatalf("content = %q", data)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "codelex-*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestAtomicWriteExclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codelex.yaml")

	got, err := AtomicWriteExclusive(path, []byte("a: 1\n"), 0600)
	if err != nil || got != path {
		t.Fatalf("first write = (%q, %v)", got, err)
	}

	got, err = AtomicWriteExclusive(path, []byte("a: 2\n"), 0600)
	if err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if want := filepath.Join(dir, "codelex_1.yaml"); got != want {
		t.Fatalf("second write path = %q, want %q", got, want)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "a: 1\n" {
		t.Fatalf("original overwritten: %q", data)
	}
	if _, err := os.Stat(got + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestAtomicWriteExclusive_AllNamesTaken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codelex.yaml")
	for n := 0; n <= maxNumberedSiblings; n++ {
		name := path
		if n > 0 {
			name = sibling(path, n)
		}
		if err := os.WriteFile(name, []byte("keep\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	if got, err := AtomicWriteExclusive(path, []byte("a: 1\n"), 0600); err == nil {
		t.Fatalf("expected error, wrote %q", got)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "codelex-*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("staged files left behind: %v", leftovers)
	}
}
