package dtrie

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSearchSimple(t *testing.T) {
	tr := New()
	words := map[string]int32{"car": 1, "cat": 2, "dog": 3}
	for w, v := range words {
		require.NoError(t, tr.Insert([]byte(w), v), "Insert(%q)", w)
	}
	for w, want := range words {
		got, ok := tr.Search([]byte(w))
		assert.True(t, ok, "Search(%q)", w)
		assert.Equal(t, want, got, "Search(%q)", w)
	}
	_, ok := tr.Search([]byte("ca"))
	assert.False(t, ok, "Search(ca) unexpectedly succeeded")
}

func TestInsertOverwritesDuplicate(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert([]byte("jar"), 1))
	require.NoError(t, tr.Insert([]byte("jar"), 42))
	got, ok := tr.Search([]byte("jar"))
	require.True(t, ok)
	assert.EqualValues(t, 42, got)
}

// TestSharedSuffixRearrangement exercises the R-1..R-4 collision path:
// "age", "cage" and "page" reuse rear states of the suffix "badge" left
// there, and "bag" then diverges from "badge"'s rear chain after "a"
// ('g' against 'd'), forcing that insert to detach and re-link the
// "badge" separator.
func TestSharedSuffixRearrangement(t *testing.T) {
	tr := New()
	words := []struct {
		s string
		v int32
	}{
		{"badge", 1},
		{"age", 2},
		{"cage", 3},
		{"page", 4},
		{"bag", 5},
	}
	for _, w := range words {
		require.NoError(t, tr.Insert([]byte(w.s), w.v), "Insert(%q)", w.s)
	}
	for _, w := range words {
		got, ok := tr.Search([]byte(w.s))
		require.True(t, ok, "Search(%q)", w.s)
		assert.Equal(t, w.v, got, "Search(%q)", w.s)
	}
	_, ok := tr.Search([]byte("ag"))
	assert.False(t, ok, "Search(ag) unexpectedly succeeded")
}

func TestInsertRejectsInvalid(t *testing.T) {
	tr := New()
	assert.Error(t, tr.Insert(nil, 1), "Insert(nil key) should fail")
	assert.Error(t, tr.Insert([]byte("x"), 0), "Insert(value=0) should fail")
}

func TestPrefixSearchAcrossSeparator(t *testing.T) {
	tr := New()
	words := []struct {
		s string
		v int32
	}{
		{"badge", 1},
		{"age", 2},
		{"cage", 3},
		{"page", 4},
	}
	for _, w := range words {
		require.NoError(t, tr.Insert([]byte(w.s), w.v))
	}

	results := tr.PrefixSearch([]byte("ca"))
	require.Len(t, results, 1)
	assert.Equal(t, "cage", string(results[0].Key))
	assert.EqualValues(t, 3, results[0].Value)

	results = tr.PrefixSearch([]byte("cage"))
	require.Len(t, results, 1)
	assert.Equal(t, "cage", string(results[0].Key))

	assert.Nil(t, tr.PrefixSearch([]byte("cagex")))
	assert.Nil(t, tr.PrefixSearch([]byte("z")))
}

func TestPrefixSearchBranchingFront(t *testing.T) {
	tr := New()
	words := map[string]int32{"car": 1, "cart": 2, "cats": 3, "dog": 4}
	for w, v := range words {
		require.NoError(t, tr.Insert([]byte(w), v))
	}

	results := tr.PrefixSearch([]byte("ca"))
	got := make([]string, 0, len(results))
	for _, r := range results {
		got = append(got, string(r.Key))
	}
	sort.Strings(got)
	assert.Equal(t, []string{"car", "cart", "cats"}, got)
}

// TestInsertKeyIsPrefixOfAnother pins down seed scenario "car"/"cat"/"cats"/
// "dog": "cat" is a strict prefix of "cats" and lands exactly on a plain
// front branching node rather than a separator, for both insertion orders.
func TestInsertKeyIsPrefixOfAnother(t *testing.T) {
	run := func(t *testing.T, order []string) {
		tr := New()
		values := map[string]int32{"car": 1, "cat": 2, "cats": 3, "dog": 4}
		for _, w := range order {
			require.NoError(t, tr.Insert([]byte(w), values[w]), "Insert(%q)", w)
		}
		for w, want := range values {
			got, ok := tr.Search([]byte(w))
			require.True(t, ok, "Search(%q)", w)
			assert.Equal(t, want, got, "Search(%q)", w)
		}
	}
	t.Run("shorter first", func(t *testing.T) {
		run(t, []string{"car", "cat", "cats", "dog"})
	})
	t.Run("longer first", func(t *testing.T) {
		run(t, []string{"car", "cats", "cat", "dog"})
	})
}

// TestInsertSuffixIsPrefixOfSharedSuffix covers the rear-trie analogue:
// "badge" and "age" (from TestSharedSuffixRearrangement) share the suffix
// "age" once separated from their shared front prefix, and neither key is
// itself a prefix of the other there. This test instead forces a case
// where the new key's remainder, after a rear collision, is itself a
// strict prefix of the existing separator's remaining rear chain.
func TestInsertSuffixIsPrefixOfSharedSuffix(t *testing.T) {
	run := func(t *testing.T, order []string) {
		tr := New()
		values := map[string]int32{"cats": 1, "cat": 2, "dog": 3}
		for _, w := range order {
			require.NoError(t, tr.Insert([]byte(w), values[w]), "Insert(%q)", w)
		}
		for w, want := range values {
			got, ok := tr.Search([]byte(w))
			require.True(t, ok, "Search(%q)", w)
			assert.Equal(t, want, got, "Search(%q)", w)
		}
	}
	t.Run("longer first", func(t *testing.T) {
		run(t, []string{"cats", "cat", "dog"})
	})
	t.Run("shorter first", func(t *testing.T) {
		run(t, []string{"cat", "cats", "dog"})
	})
}
