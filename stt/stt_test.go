package stt

import (
	"sort"
	"testing"
)

func TestInsertSearchDisjointTails(t *testing.T) {
	tr := New()
	words := map[string]int32{"car": 1, "cat": 2, "dog": 3}
	for w, v := range words {
		if err := tr.Insert([]byte(w), v); err != nil {
			t.Fatalf("Insert(%q) = %v", w, err)
		}
	}
	for w, want := range words {
		got, ok := tr.Search([]byte(w))
		if !ok || got != want {
			t.Fatalf("Search(%q) = (%d,%v), want (%d,true)", w, got, ok, want)
		}
	}
	if _, ok := tr.Search([]byte("ca")); ok {
		t.Fatalf("Search(%q) unexpectedly succeeded", "ca")
	}
	if _, ok := tr.Search([]byte("carp")); ok {
		t.Fatalf("Search(%q) unexpectedly succeeded", "carp")
	}
}

// TestTailSplit covers the classic "the"/"then" scenario: "the" is
// inserted first and lives entirely as one tail record off the root's
// 't' child; inserting "then" must split that tail at the point of
// divergence (after the shared "he": the old terminator vs 'n') and
// preserve both values.
func TestTailSplit(t *testing.T) {
	tr := New()
	if err := tr.Insert([]byte("the"), 1); err != nil {
		t.Fatalf("Insert(the) = %v", err)
	}
	if err := tr.Insert([]byte("then"), 2); err != nil {
		t.Fatalf("Insert(then) = %v", err)
	}
	if got, ok := tr.Search([]byte("the")); !ok || got != 1 {
		t.Fatalf("Search(the) = (%d,%v), want (1,true)", got, ok)
	}
	if got, ok := tr.Search([]byte("then")); !ok || got != 2 {
		t.Fatalf("Search(then) = (%d,%v), want (2,true)", got, ok)
	}
	if _, ok := tr.Search([]byte("th")); ok {
		t.Fatalf("Search(th) unexpectedly succeeded")
	}
	if _, ok := tr.Search([]byte("thin")); ok {
		t.Fatalf("Search(thin) unexpectedly succeeded")
	}
}

// TestTailSplitChain exercises one tail split ("testing" against the
// tail of "test"), followed by keys that branch off the replayed prefix
// at different offsets ("tester", "te").
func TestTailSplitChain(t *testing.T) {
	tr := New()
	words := []struct {
		s string
		v int32
	}{
		{"test", 1},
		{"testing", 2},
		{"tester", 3},
		{"te", 4},
	}
	for _, w := range words {
		if err := tr.Insert([]byte(w.s), w.v); err != nil {
			t.Fatalf("Insert(%q) = %v", w.s, err)
		}
	}
	for _, w := range words {
		got, ok := tr.Search([]byte(w.s))
		if !ok || got != w.v {
			t.Fatalf("Search(%q) = (%d,%v), want (%d,true)", w.s, got, ok, w.v)
		}
	}
}

func TestInsertOverwritesDuplicate(t *testing.T) {
	tr := New()
	if err := tr.Insert([]byte("cat"), 1); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert([]byte("cat"), 99); err != nil {
		t.Fatal(err)
	}
	got, ok := tr.Search([]byte("cat"))
	if !ok || got != 99 {
		t.Fatalf("Search(cat) = (%d,%v), want (99,true)", got, ok)
	}
}

func TestInsertOverwritesDuplicateTail(t *testing.T) {
	tr := New()
	if err := tr.Insert([]byte("banana"), 1); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert([]byte("banana"), 2); err != nil {
		t.Fatal(err)
	}
	got, ok := tr.Search([]byte("banana"))
	if !ok || got != 2 {
		t.Fatalf("Search(banana) = (%d,%v), want (2,true)", got, ok)
	}
}

func TestInsertRejectsInvalid(t *testing.T) {
	tr := New()
	if err := tr.Insert(nil, 1); err == nil {
		t.Fatal("Insert(nil key) should fail")
	}
	if err := tr.Insert([]byte("x"), 0); err == nil {
		t.Fatal("Insert(value=0) should fail")
	}
}

func TestPrefixSearch(t *testing.T) {
	tr := New()
	words := map[string]int32{
		"car": 1, "cart": 2, "care": 3, "cats": 4, "dog": 5,
	}
	for w, v := range words {
		if err := tr.Insert([]byte(w), v); err != nil {
			t.Fatal(err)
		}
	}
	got := tr.PrefixSearch([]byte("car"))
	var gotWords []string
	for _, r := range got {
		gotWords = append(gotWords, string(r.Key))
		if want := words[string(r.Key)]; want != r.Value {
			t.Fatalf("PrefixSearch result %q has value %d, want %d", r.Key, r.Value, want)
		}
	}
	sort.Strings(gotWords)
	want := []string{"car", "care", "cart"}
	if len(gotWords) != len(want) {
		t.Fatalf("PrefixSearch(car) = %v, want %v", gotWords, want)
	}
	for i := range want {
		if gotWords[i] != want[i] {
			t.Fatalf("PrefixSearch(car) = %v, want %v", gotWords, want)
		}
	}
}

func TestPrefixSearchIntoTail(t *testing.T) {
	tr := New()
	if err := tr.Insert([]byte("banana"), 7); err != nil {
		t.Fatal(err)
	}
	got := tr.PrefixSearch([]byte("ban"))
	if len(got) != 1 || string(got[0].Key) != "banana" || got[0].Value != 7 {
		t.Fatalf("PrefixSearch(ban) = %+v, want [{banana 7}]", got)
	}
	if got := tr.PrefixSearch([]byte("bax")); len(got) != 0 {
		t.Fatalf("PrefixSearch(bax) = %+v, want none", got)
	}
}

func TestPrefixSearchNoMatches(t *testing.T) {
	tr := New()
	if err := tr.Insert([]byte("dog"), 1); err != nil {
		t.Fatal(err)
	}
	if got := tr.PrefixSearch([]byte("cat")); len(got) != 0 {
		t.Fatalf("PrefixSearch(cat) = %+v, want none", got)
	}
}
