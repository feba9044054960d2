// Package stt implements the single-trie variant: a double-array core
// (package dac) holding the branching prefix of the key set, with every
// non-branching suffix compacted into a contiguous pool instead of a
// chain of one-child states. A state is a tail leaf iff its base is
// negative; -base(s)-1 is the pool offset of its record.
//
// A pool record is [tailSymbols..., Terminator, value], where
// tailSymbols are the biased bytes following the transition into the
// leaf state. Tail records are append-only: splitting a tail abandons
// its old record rather than reclaiming it, trading a little wasted
// pool space for a pool that never needs a relocator callback.
package stt

import (
	"strconv"

	"github.com/npillmayer/doat/dac"
	"github.com/npillmayer/doat/internal/trieerr"
	"github.com/npillmayer/doat/key"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("doat.stt")
}

// DefaultPoolSize is the initial suffix pool capacity, in int32 words.
const DefaultPoolSize = 1024

// Trie is a single, owning (or borrowed, read-only) suffix-tail trie.
type Trie struct {
	core    *dac.Core
	pool    []int32
	poolLen int32
}

// New creates an empty, owning Trie with the default initial capacity.
func New() *Trie { return NewSize(dac.DefaultSize, DefaultPoolSize) }

// NewSize creates an empty, owning Trie whose core starts at coreSize
// cells and whose suffix pool starts at poolSize words.
func NewSize(coreSize, poolSize int32) *Trie {
	return &Trie{
		core: dac.New(coreSize),
		pool: make([]int32, poolSize),
	}
}

// Borrow wraps an externally-owned core and pool as a read-only Trie,
// e.g. a memory-mapped archive region.
func Borrow(core *dac.Core, pool []int32, poolLen int32) *Trie {
	return &Trie{core: core, pool: pool, poolLen: poolLen}
}

// Core exposes the underlying double-array engine, for archive encoding.
func (t *Trie) Core() *dac.Core { return t.core }

// Pool exposes the raw suffix pool and its logical length, for archive
// encoding. The returned slice is a view, not a copy.
func (t *Trie) Pool() (pool []int32, poolLen int32) { return t.pool, t.poolLen }

// Insert associates key with value, overwriting any prior value for an
// identical key. Value 0 and an empty key are rejected: 0 is reserved to
// mean "absent" at the Search boundary, matching the reference
// implementation's use of result_type{0, false}.
func (t *Trie) Insert(keyBytes []byte, value int32) error {
	if len(keyBytes) == 0 || value == 0 {
		return trieerr.ErrInvalid
	}
	k := key.New(keyBytes)
	syms := k.Symbols()

	s, mismatch := t.core.GoForward(dac.Root, syms)
	if mismatch == -1 {
		t.core.SetBase(s, value)
		return nil
	}
	if t.core.Base(s) < 0 {
		offset := tailOffset(t.core.Base(s))
		oldTail, oldValue := readTail(t.pool, offset)
		newTail := syms[mismatch:]
		if equalSymbols(oldTail, newTail) {
			t.pool[offset+int32(len(oldTail))] = value
			return nil
		}
		t.splitTail(s, oldTail, oldValue, newTail, value)
		return nil
	}
	t.insertSuffix(s, syms[mismatch:], value)
	return nil
}

// Search reports the value associated with key, if any.
func (t *Trie) Search(keyBytes []byte) (int32, bool) {
	k := key.New(keyBytes)
	syms := k.Symbols()

	s, mismatch := t.core.GoForward(dac.Root, syms)
	if mismatch == -1 {
		return t.core.Base(s), true
	}
	if t.core.Base(s) < 0 {
		offset := tailOffset(t.core.Base(s))
		tail, value := readTail(t.pool, offset)
		if equalSymbols(tail, syms[mismatch:]) {
			return value, true
		}
	}
	return 0, false
}

// Result is one match reported by PrefixSearch.
type Result struct {
	Key   []byte
	Value int32
}

// PrefixSearch reports every key sharing the given prefix, along with
// its value. The traversal is depth-first over existing transitions,
// ascending by symbol; a prefix landing inside a tail record yields at
// most the single key that tail completes.
func (t *Trie) PrefixSearch(prefix []byte) []Result {
	k := key.New(prefix)
	syms := k.Symbols()
	syms = syms[:len(syms)-1] // drop the Terminator: a prefix need not be a whole key

	s, mismatch := t.core.GoForward(dac.Root, syms)
	if mismatch == -1 || mismatch == len(syms) {
		var out []Result
		t.collect(s, append([]byte{}, prefix...), &out)
		return out
	}
	if t.core.Base(s) < 0 {
		offset := tailOffset(t.core.Base(s))
		tail, value := readTail(t.pool, offset)
		rest := syms[mismatch:]
		if len(rest) <= len(tail) && equalSymbols(rest, tail[:len(rest)]) {
			full := append([]byte{}, prefix...)
			full = append(full, decodeSymbols(tail[len(rest):])...)
			return []Result{{Key: full, Value: value}}
		}
	}
	return nil
}

// collect appends every key reachable from s, with path the bytes
// already consumed to reach s.
func (t *Trie) collect(s int32, path []byte, out *[]Result) {
	if t.core.Base(s) < 0 {
		offset := tailOffset(t.core.Base(s))
		tail, value := readTail(t.pool, offset)
		full := append(append([]byte{}, path...), decodeSymbols(tail)...)
		*out = append(*out, Result{Key: full, Value: value})
		return
	}
	labels, _, _ := t.core.Children(s)
	for _, ch := range labels {
		child := t.core.Next(s, ch)
		if ch == key.Terminator {
			*out = append(*out, Result{Key: append([]byte{}, path...), Value: t.core.Base(child)})
			continue
		}
		t.collect(child, append(path, key.Out(ch)), out)
	}
}

// insertSuffix creates the one real transition for suffix[0] from parent
// and, if anything remains, compacts the rest into a new pool record.
func (t *Trie) insertSuffix(parent int32, suffix []int32, value int32) {
	s := t.core.CreateTransition(parent, suffix[0])
	rest := suffix[1:]
	if len(rest) == 0 {
		t.core.SetBase(s, value)
		return
	}
	offset := t.allocTail(rest, value)
	t.core.SetBase(s, -(offset + 1))
}

// splitTail resolves a collision between an existing tail record and a
// newly inserted key diverging somewhere within it: the shared prefix of
// the two tails is replayed as real transitions, and the two surviving
// continuations each go through insertSuffix: a fresh pool record, or a
// bare terminator child holding the value when nothing else follows.
func (t *Trie) splitTail(s int32, oldTail []int32, oldValue int32, newTail []int32, newValue int32) {
	k := commonPrefixLen(oldTail, newTail)
	t.core.SetBase(s, 0)
	cur := s
	for i := 0; i < k; i++ {
		cur = t.core.CreateTransition(cur, oldTail[i])
	}
	t.insertSuffix(cur, oldTail[k:], oldValue)
	t.insertSuffix(cur, newTail[k:], newValue)
}

// allocTail appends rest (already Terminator-ended) and value to the
// pool, growing it first if needed, and returns the record's offset.
func (t *Trie) allocTail(rest []int32, value int32) int32 {
	need := int32(len(rest)) + 1
	if t.poolLen+need > int32(len(t.pool)) {
		t.growPool(need)
	}
	offset := t.poolLen
	copy(t.pool[offset:], rest)
	t.pool[offset+int32(len(rest))] = value
	t.poolLen += need
	return offset
}

// growPool grows the pool to ((len*2+need)/1024 + 1) * 1024 words (4KiB
// granularity), mirroring dac.Core's own state-array growth.
func (t *Trie) growPool(need int32) {
	old := int32(len(t.pool))
	nsize := (((old*2 + need) / 1024) + 1) * 1024
	np := make([]int32, nsize)
	copy(np, t.pool[:t.poolLen])
	t.pool = np
	tracer().Debugf("suffix pool grown to %d words", nsize)
}

// tailOffset recovers the pool offset encoded by a tail state's base.
func tailOffset(base int32) int32 { return -base - 1 }

// readTail decodes the pool record at offset: the tail symbols up to and
// including the Terminator, and the value word that follows it.
func readTail(pool []int32, offset int32) (tail []int32, value int32) {
	i := offset
	for pool[i] != key.Terminator {
		i++
	}
	tail = pool[offset : i+1]
	value = pool[i+1]
	return tail, value
}

// decodeSymbols renders biased symbols back to bytes, stopping at (and
// excluding) the Terminator.
func decodeSymbols(syms []int32) []byte {
	out := make([]byte, 0, len(syms))
	for _, s := range syms {
		if s == key.Terminator {
			break
		}
		out = append(out, key.Out(s))
	}
	return out
}

func equalSymbols(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TraceSuffix renders count pool words starting at start as a debug
// string. Mirrors the reference
// implementation's debug-only single_trie::trace_suffix.
func (t *Trie) TraceSuffix(start, count int32) string {
	end := start + count
	if end > t.poolLen {
		end = t.poolLen
	}
	var b []byte
	for i := start; i < end; i++ {
		sym := t.pool[i]
		switch {
		case sym == key.Terminator:
			b = append(b, '#')
		case sym >= key.In(' ') && sym <= key.In('~'):
			b = append(b, key.Out(sym))
		default:
			b = append(b, '[', 'v', ':')
			b = append(b, []byte(strconv.Itoa(int(sym)))...)
			b = append(b, ']')
		}
	}
	return string(b)
}

func commonPrefixLen(a, b []int32) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
