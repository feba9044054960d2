package doat

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/doat/archive"
	"github.com/npillmayer/doat/dtrie"
	"github.com/npillmayer/doat/stt"
)

// Result is one match reported by Trie.PrefixSearch.
type Result struct {
	Key   []byte
	Value int32
}

// Trie is the façade shared by both storage variants. Insert and Search
// are the only mutating and querying primitives spec.md defines; Build
// and Close are the out-of-scope wrappers around archive persistence and
// teardown that every caller still needs.
type Trie interface {
	// Insert associates key with value, overwriting any prior value.
	// value must be non-zero and key non-empty.
	Insert(key []byte, value int32) error

	// Search reports the value associated with key, if any.
	Search(key []byte) (int32, bool)

	// PrefixSearch reports every key sharing the given prefix.
	PrefixSearch(prefix []byte) []Result

	// Build writes the trie to path as an archive, truncating any
	// existing file there.
	Build(path string) error

	// Close drops the instance's reference to its arrays, for owning and
	// borrowed (archive-backed) instances alike. There is nothing to
	// unmap: loading reads the archive fully into heap memory.
	Close() error
}

type singleTrie struct {
	t     *stt.Trie
	trace tracing.Trace
}

func (s *singleTrie) Insert(key []byte, value int32) (err error) {
	defer recoverOOM(&err)
	return s.t.Insert(key, value)
}

func (s *singleTrie) Search(key []byte) (int32, bool) { return s.t.Search(key) }

func (s *singleTrie) PrefixSearch(prefix []byte) []Result {
	matches := s.t.PrefixSearch(prefix)
	out := make([]Result, len(matches))
	for i, m := range matches {
		out[i] = Result{Key: m.Key, Value: m.Value}
	}
	return out
}

func (s *singleTrie) Build(path string) error {
	s.trace.Infof("writing single-trie archive to %s", path)
	return archive.SaveSingleTrie(path, s.t)
}

func (s *singleTrie) Close() error {
	s.t = nil
	return nil
}

type doubleTrie struct {
	t     *dtrie.Trie
	trace tracing.Trace
}

func (d *doubleTrie) Insert(key []byte, value int32) (err error) {
	defer recoverOOM(&err)
	return d.t.Insert(key, value)
}

func (d *doubleTrie) Search(key []byte) (int32, bool) { return d.t.Search(key) }

func (d *doubleTrie) PrefixSearch(prefix []byte) []Result {
	matches := d.t.PrefixSearch(prefix)
	out := make([]Result, len(matches))
	for i, m := range matches {
		out[i] = Result{Key: m.Key, Value: m.Value}
	}
	return out
}

func (d *doubleTrie) Build(path string) error {
	d.trace.Infof("writing two-trie archive to %s", path)
	return archive.SaveTwoTrie(path, d.t)
}

func (d *doubleTrie) Close() error {
	d.t = nil
	return nil
}
