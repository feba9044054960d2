package doat

import (
	"path/filepath"
	"sort"
	"testing"
)

func TestNewAndInsertSearchBothVariants(t *testing.T) {
	for _, variant := range []Variant{Single, Double} {
		tr := New(variant)
		words := map[string]int32{"car": 1, "cart": 2, "cats": 3, "dog": 4}
		for w, v := range words {
			if err := tr.Insert([]byte(w), v); err != nil {
				t.Fatalf("variant %d: Insert(%q) = %v", variant, w, err)
			}
		}
		for w, want := range words {
			got, ok := tr.Search([]byte(w))
			if !ok || got != want {
				t.Fatalf("variant %d: Search(%q) = (%d,%v), want (%d,true)", variant, w, got, ok, want)
			}
		}
		if _, ok := tr.Search([]byte("ca")); ok {
			t.Fatalf("variant %d: Search(ca) unexpectedly succeeded", variant)
		}
		if err := tr.Close(); err != nil {
			t.Fatalf("variant %d: Close() = %v", variant, err)
		}
	}
}

func TestInsertRejectsInvalid(t *testing.T) {
	for _, variant := range []Variant{Single, Double} {
		tr := New(variant)
		if err := tr.Insert(nil, 1); err == nil {
			t.Fatalf("variant %d: Insert(nil key) should fail", variant)
		}
		if err := tr.Insert([]byte("x"), 0); err == nil {
			t.Fatalf("variant %d: Insert(value=0) should fail", variant)
		}
	}
}

func TestPrefixSearchBothVariants(t *testing.T) {
	for _, variant := range []Variant{Single, Double} {
		tr := New(variant)
		words := map[string]int32{"car": 1, "cart": 2, "cats": 3, "dog": 4}
		for w, v := range words {
			if err := tr.Insert([]byte(w), v); err != nil {
				t.Fatalf("variant %d: Insert(%q) = %v", variant, w, err)
			}
		}
		results := tr.PrefixSearch([]byte("ca"))
		got := make([]string, 0, len(results))
		for _, r := range results {
			got = append(got, string(r.Key))
		}
		sort.Strings(got)
		want := []string{"car", "cart", "cats"}
		if len(got) != len(want) {
			t.Fatalf("variant %d: PrefixSearch(ca) = %v, want %v", variant, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("variant %d: PrefixSearch(ca) = %v, want %v", variant, got, want)
			}
		}
	}
}

func TestBuildAndOpenRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name    string
		variant Variant
	}{
		{"single", Single},
		{"double", Double},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tr := New(tc.variant, WithInitialSize(2048))
			words := map[string]int32{"badge": 1, "age": 2, "cage": 3, "jar": 4}
			for w, v := range words {
				if err := tr.Insert([]byte(w), v); err != nil {
					t.Fatalf("Insert(%q) = %v", w, err)
				}
			}
			path := filepath.Join(t.TempDir(), "archive.dat")
			if err := tr.Build(path); err != nil {
				t.Fatalf("Build: %v", err)
			}
			loaded, err := Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			for w, want := range words {
				got, ok := loaded.Search([]byte(w))
				if !ok || got != want {
					t.Fatalf("loaded Search(%q) = (%d,%v), want (%d,true)", w, got, ok, want)
				}
			}
		})
	}
}

func TestOpenRejectsBadPath(t *testing.T) {
	if _, err := Open("/nonexistent/path/to/archive.dat"); err == nil {
		t.Fatal("Open on a missing file should fail")
	}
}
