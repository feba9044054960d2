package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/doat/dtrie"
	"github.com/npillmayer/doat/stt"
)

func TestSingleTrieRoundTrip(t *testing.T) {
	tr := stt.New()
	words := map[string]int32{"car": 1, "cat": 2, "cats": 3, "dog": 4}
	for w, v := range words {
		require.NoError(t, tr.Insert([]byte(w), v), "Insert(%q)", w)
	}

	path := filepath.Join(t.TempDir(), "single.dat")
	require.NoError(t, SaveSingleTrie(path, tr))
	loaded, err := LoadSingleTrie(path)
	require.NoError(t, err)
	for w, want := range words {
		got, ok := loaded.Search([]byte(w))
		require.True(t, ok, "loaded Search(%q)", w)
		assert.Equal(t, want, got, "loaded Search(%q)", w)
	}
}

func TestTwoTrieRoundTrip(t *testing.T) {
	tr := dtrie.New()
	words := map[string]int32{"badge": 1, "age": 2, "cage": 3, "jar": 4}
	for w, v := range words {
		require.NoError(t, tr.Insert([]byte(w), v), "Insert(%q)", w)
	}

	path := filepath.Join(t.TempDir(), "double.dat")
	require.NoError(t, SaveTwoTrie(path, tr))
	loaded, err := LoadTwoTrie(path)
	require.NoError(t, err)
	for w, want := range words {
		got, ok := loaded.Search([]byte(w))
		require.True(t, ok, "loaded Search(%q)", w)
		assert.Equal(t, want, got, "loaded Search(%q)", w)
	}
}

func TestLoadSingleTrieBadPath(t *testing.T) {
	_, err := LoadSingleTrie("/nonexistent/path/to/archive.dat")
	assert.Error(t, err, "LoadSingleTrie on a missing file should fail")
}
