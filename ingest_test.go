package doat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFromText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.txt")
	content := "car\ncat\n\ndog\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := New(Single)
	if err := ReadFromText(tr, path, false); err != nil {
		t.Fatalf("ReadFromText: %v", err)
	}

	want := map[string]int32{"car": 1, "cat": 2, "dog": 4}
	for w, v := range want {
		got, ok := tr.Search([]byte(w))
		if !ok || got != v {
			t.Fatalf("Search(%q) = (%d,%v), want (%d,true)", w, got, ok, v)
		}
	}
}

func TestReadFromTextBadPath(t *testing.T) {
	tr := New(Single)
	if err := ReadFromText(tr, "/nonexistent/patterns.txt", false); err == nil {
		t.Fatal("ReadFromText on a missing file should fail")
	}
}
