// Package dtrie implements the two-trie variant: keys are split across a
// front double array (real transitions for the still-divergent prefix of
// a key) and a rear double array (shared suffixes, stored reversed, so
// that walking rear parent pointers spells a suffix forward). A front
// leaf that terminates a key ("separator", base(s) < 0) carries an index
// entry; the index entry's data word holds the key's value, and its
// index word, if set, names an accept-table slot pointing into the rear
// trie for the remainder of the key.
//
// When two keys sharing a separator's rear-suffix diverge partway
// through it, rhsInsert (R-1 through R-4 below) detaches the separator,
// grows the front trie by the matched portion of the old suffix, and
// re-links both keys' new separators — reusing or discarding rear states
// as their reference count allows.
package dtrie

import (
	"fmt"
	"strings"

	"github.com/npillmayer/doat/dac"
	"github.com/npillmayer/doat/internal/trieerr"
	"github.com/npillmayer/doat/key"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("doat.dtrie")
}

type IndexEntry struct {
	Data  int32
	Index int32
}

type AcceptEntry struct {
	Accept int32
}

type referEntry struct {
	AcceptIndex int32
	Referer     map[int32]struct{}
}

// Trie is an owning (or, via Borrow, read-only) two-trie dictionary.
type Trie struct {
	front, rear *dac.Core
	index       []IndexEntry
	accept      []AcceptEntry
	refer       map[int32]referEntry
	nextIndex   int32
	nextAccept  int32
	freeIndex   []int32
	freeAccept  []int32
	stand       int32
}

type frontRelocator struct{ t *Trie }

func (r frontRelocator) Relocate(oldState, newState int32) { r.t.relocateFront(oldState, newState) }

type rearRelocator struct{ t *Trie }

func (r rearRelocator) Relocate(oldState, newState int32) { r.t.relocateRear(oldState, newState) }

// DefaultTableSize is the initial index/accept table capacity.
const DefaultTableSize = 4096

// New creates an empty, owning Trie with the default initial capacity.
func New() *Trie { return NewSize(dac.DefaultSize, DefaultTableSize) }

// NewSize creates an empty, owning Trie whose front/rear cores start at
// coreSize cells and whose index/accept tables start at tableSize entries.
func NewSize(coreSize, tableSize int32) *Trie {
	t := &Trie{
		front:      dac.New(coreSize),
		rear:       dac.New(coreSize),
		index:      make([]IndexEntry, tableSize),
		accept:     make([]AcceptEntry, tableSize),
		refer:      make(map[int32]referEntry),
		nextIndex:  1,
		nextAccept: 1,
	}
	t.front.SetRelocator(frontRelocator{t})
	t.rear.SetRelocator(rearRelocator{t})
	return t
}

// Front exposes the forward double array, for archive encoding.
func (t *Trie) Front() *dac.Core { return t.front }

// Rear exposes the reverse double array, for archive encoding.
func (t *Trie) Rear() *dac.Core { return t.rear }

// ReferRecord is one rear accept state's referer set, flattened for
// archive encoding.
type ReferRecord struct {
	State       int32
	AcceptIndex int32
	Referer     []int32
}

// Tables exposes the index/accept tables, the flattened referer map, and
// the allocation cursors and free lists, for archive encoding.
func (t *Trie) Tables() (index []IndexEntry, accept []AcceptEntry, refers []ReferRecord, nextIndex, nextAccept int32, freeIndex, freeAccept []int32) {
	refers = make([]ReferRecord, 0, len(t.refer))
	for state, ref := range t.refer {
		rr := ReferRecord{State: state, AcceptIndex: ref.AcceptIndex, Referer: make([]int32, 0, len(ref.Referer))}
		for s := range ref.Referer {
			rr.Referer = append(rr.Referer, s)
		}
		refers = append(refers, rr)
	}
	return t.index, t.accept, refers, t.nextIndex, t.nextAccept, t.freeIndex, t.freeAccept
}

// TraceTable renders a slice of the index/accept tables and the referer
// map as a debug string, mirroring the reference implementation's
// debug-only double_trie::trace_table.
func (t *Trie) TraceTable(indexStart, acceptStart, count int32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "index  |")
	for i := indexStart; i < indexStart+count && int(i) < len(t.index); i++ {
		fmt.Fprintf(&b, " %d:%d/%d", i, t.index[i].Data, t.index[i].Index)
	}
	fmt.Fprintf(&b, "\naccept |")
	for i := acceptStart; i < acceptStart+count && int(i) < len(t.accept); i++ {
		fmt.Fprintf(&b, " %d:%d(x%d)", i, t.accept[i].Accept, t.countReferer(t.accept[i].Accept))
	}
	b.WriteByte('\n')
	return b.String()
}

// Borrow reconstructs a read-only Trie from archived components.
func Borrow(front, rear *dac.Core, index []IndexEntry, accept []AcceptEntry, refers []ReferRecord, nextIndex, nextAccept int32, freeIndex, freeAccept []int32) *Trie {
	t := &Trie{
		front:      front,
		rear:       rear,
		index:      index,
		accept:     accept,
		refer:      make(map[int32]referEntry, len(refers)),
		nextIndex:  nextIndex,
		nextAccept: nextAccept,
		freeIndex:  freeIndex,
		freeAccept: freeAccept,
	}
	for _, rr := range refers {
		referer := make(map[int32]struct{}, len(rr.Referer))
		for _, s := range rr.Referer {
			referer[s] = struct{}{}
		}
		t.refer[rr.State] = referEntry{AcceptIndex: rr.AcceptIndex, Referer: referer}
	}
	return t
}

func (t *Trie) checkSeparator(s int32) bool { return t.front.Base(s) < 0 }

// terminatorChild reports the front state s's own terminator-labeled
// child, if any: the separator R-3 creates to hold a key that ends
// exactly at s while a longer key continues past it.
func (t *Trie) terminatorChild(s int32) (int32, bool) {
	c := t.front.Next(s, key.Terminator)
	if !t.front.CheckTransition(s, c) {
		return 0, false
	}
	return c, true
}

func (t *Trie) linkState(s int32) int32 {
	return t.accept[t.index[-t.front.Base(s)].Index].Accept
}

func (t *Trie) countReferer(s int32) int {
	return len(t.refer[s].Referer)
}

func (t *Trie) setLink(s, target int32) int32 {
	i := t.findIndexEntry(s)
	if ref, ok := t.refer[target]; ok && len(ref.Referer) > 0 {
		t.index[i].Index = ref.AcceptIndex
	} else {
		acc := t.findAcceptEntry(i)
		t.accept[acc].Accept = target
		ref := t.refer[target]
		ref.AcceptIndex = acc
		t.refer[target] = ref
	}
	ref := t.refer[target]
	if ref.Referer == nil {
		ref.Referer = make(map[int32]struct{})
	}
	ref.Referer[s] = struct{}{}
	t.refer[target] = ref
	return i
}

func (t *Trie) findIndexEntry(s int32) int32 {
	if t.front.Base(s) >= 0 {
		var next int32
		if len(t.freeIndex) > 0 {
			next = t.freeIndex[0]
			t.freeIndex = t.freeIndex[1:]
		} else {
			next = t.nextIndex
			t.nextIndex++
		}
		if next >= int32(len(t.index)) {
			t.growIndex(next)
		}
		t.front.SetBase(s, -next)
	}
	return -t.front.Base(s)
}

func (t *Trie) findAcceptEntry(i int32) int32 {
	if t.index[i].Index == 0 {
		var next int32
		if len(t.freeAccept) > 0 {
			next = t.freeAccept[0]
			t.freeAccept = t.freeAccept[1:]
		} else {
			next = t.nextAccept
			t.nextAccept++
		}
		if next >= int32(len(t.accept)) {
			t.growAccept(next)
		}
		t.index[i].Index = next
	}
	return t.index[i].Index
}

func (t *Trie) growIndex(next int32) {
	nsize := (((next*2)>>12 + 1) << 12)
	ni := make([]IndexEntry, nsize)
	copy(ni, t.index)
	t.index = ni
	tracer().Debugf("index table grown to %d entries", nsize)
}

func (t *Trie) growAccept(next int32) {
	nsize := (((next*2)>>12 + 1) << 12)
	na := make([]AcceptEntry, nsize)
	copy(na, t.accept)
	t.accept = na
	tracer().Debugf("accept table grown to %d entries", nsize)
}

func (t *Trie) removeAcceptState(s int32) {
	if s <= 0 {
		panic("dtrie: removeAcceptState on non-positive state")
	}
	t.rear.SetBase(s, 0)
	t.rear.SetCheck(s, 0)
	t.freeAcceptEntry(s)
}

func (t *Trie) freeAcceptEntry(s int32) {
	ref, ok := t.refer[s]
	if !ok {
		return
	}
	if s > 0 && len(ref.Referer) == 0 && ref.AcceptIndex < int32(len(t.accept)) && ref.AcceptIndex > 0 {
		t.accept[ref.AcceptIndex].Accept = 0
		t.freeAccept = append(t.freeAccept, ref.AcceptIndex)
	}
	delete(t.refer, s)
}

func (t *Trie) rhsCleanOne(target int32) bool {
	s := t.rear.Prev(target)
	if s > 0 && target == t.rear.Next(s, key.Terminator) && t.countReferer(target) == 0 {
		t.removeAcceptState(target)
		return true
	}
	return false
}

func (t *Trie) rhsCleanMore(target int32) {
	if t.rear.Outdegree(target) == 0 && t.countReferer(target) == 0 {
		s := t.rear.Prev(target)
		t.removeAcceptState(target)
		if s > 0 {
			t.rhsCleanMore(s)
		}
		return
	}
	if t.rear.Outdegree(target) == 1 {
		r := t.rear.Next(target, key.Terminator)
		if t.rear.CheckTransition(target, r) {
			for referer := range t.refer[r].Referer {
				t.setLink(referer, target)
			}
			acc := t.refer[target].AcceptIndex
			if t.accept[acc].Accept != r && t.accept[acc].Accept != target {
				panic("dtrie: rhsCleanMore accept entry out of sync with target/old leaf")
			}
			t.accept[acc].Accept = target
			t.removeAcceptState(r)
		}
	}
}

func (t *Trie) relocateFront(oldState, newState int32) {
	if t.front.Base(oldState) < 0 && t.index[-t.front.Base(oldState)].Index > 0 {
		r := t.linkState(oldState)
		if ref, ok := t.refer[r]; ok {
			delete(ref.Referer, oldState)
			ref.Referer[newState] = struct{}{}
			t.refer[r] = ref
		}
	}
}

func (t *Trie) relocateRear(oldState, newState int32) {
	if t.stand == oldState {
		t.stand = newState
	}
	if ref, ok := t.refer[oldState]; ok {
		t.accept[ref.AcceptIndex].Accept = newState
		t.refer[newState] = ref
		t.freeAcceptEntry(oldState)
	}
}

// rhsAppend compacts remain (forward-order, Terminator-free symbols) into
// the rear trie, creating only the transitions not already shared by an
// existing suffix, and returns the resulting accept state.
func (t *Trie) rhsAppend(remain []int32) int32 {
	s := dac.Root
	mismatch := 0
	root1 := t.rear.Next(s, key.Terminator)
	matchedViaExisting := t.rear.CheckTransition(s, root1)
	if matchedViaExisting {
		var ns int32
		ns, mismatch = t.rear.GoForwardReverse(root1, remain)
		s = ns
		if mismatch == -1 {
			t2 := t.rear.Next(s, key.Terminator)
			if t.rear.Outdegree(s) == 0 {
				return s
			}
			if t.rear.CheckTransition(s, t2) {
				return t.rear.Next(s, key.Terminator)
			}
			return t.rear.CreateTransition(s, key.Terminator)
		}
	}
	if t.rear.Outdegree(s) == 0 {
		nt := t.rear.CreateTransition(s, key.Terminator)
		for referer := range t.refer[s].Referer {
			t.setLink(referer, nt)
		}
		t.freeAcceptEntry(s)
	}
	if s == dac.Root {
		mismatch = len(remain) - 1
		s = t.rear.CreateTransition(s, key.Terminator)
	}
	for i := mismatch; i >= 0; i-- {
		s = t.rear.CreateTransition(s, remain[i])
	}
	return s
}

// lhsInsert creates the one new front transition for remain[0] from s and
// diverts the rest into a fresh (or shared) rear accept chain.
func (t *Trie) lhsInsert(s int32, remain []int32) int32 {
	nt := t.front.CreateTransition(s, remain[0])
	r := t.rhsAppend(remain[1:])
	return t.setLink(nt, r)
}

// rhsInsert resolves a collision where a new key's remainder diverges
// partway through an existing separator's shared rear suffix. match is
// the forward-order prefix of the remainder that matched the rear trie
// reading backward; remain is the unmatched tail, whose first symbol is
// the point of divergence; lastSym/atTerminator describe the existing
// rear transition the old key took at that same point.
func (t *Trie) rhsInsert(s, r int32, match, remain []int32, lastSym int32, atTerminator bool, value int32) {
	// R-1: detach the old separator s from its rear chain, freeing its
	// index entry but remembering its value and its former rear link.
	u := t.linkState(s)
	oldValue := t.index[-t.front.Base(s)].Data
	t.index[-t.front.Base(s)].Index = 0
	t.index[-t.front.Base(s)].Data = 0
	t.freeIndex = append(t.freeIndex, -t.front.Base(s))
	t.front.SetBase(s, 0)
	t.stand = r
	if u > 0 {
		ref, ok := t.refer[u]
		if ok {
			delete(ref.Referer, s)
			t.refer[u] = ref
			if len(ref.Referer) == 0 {
				t.freeAcceptEntry(u)
			}
		}
	}

	// R-2: extend the front trie by the matched prefix, then create the
	// new key's own separator and link it to the remainder of its tail.
	// If the new key has no remainder (it is itself a strict prefix of
	// the old suffix), it gets a terminator-labeled separator instead of
	// a real-symbol child, linked to the empty-suffix rear state like
	// any other key whose content ends entirely within the front trie.
	cur := s
	for _, sym := range match {
		cur = t.front.CreateTransition(cur, sym)
	}
	var nt int32
	if len(remain) == 0 {
		nt = t.front.CreateTransition(cur, key.Terminator)
	} else {
		nt = t.front.CreateTransition(cur, remain[0])
		remain = remain[1:]
	}
	i := t.setLink(nt, t.rhsAppend(remain))
	t.index[i].Data = value

	// R-3: re-link the old key through a fresh front separator at the
	// same divergence point, pointing at whatever follows it in rear.
	var ot int32
	if atTerminator {
		ot = t.front.CreateTransition(cur, key.Terminator)
	} else {
		ot = t.front.CreateTransition(cur, lastSym)
	}
	v := t.rear.Prev(t.stand)
	var or int32
	if !t.rear.CheckTransition(v, t.rear.Next(v, key.Terminator)) {
		or = t.rear.CreateTransition(v, key.Terminator)
	} else {
		or = t.rear.Next(v, key.Terminator)
	}
	i = t.setLink(ot, or)
	t.index[i].Data = oldValue

	// R-4: the old rear chain at u, if it still exists, may now be a
	// dangling single-referer or an orphaned dead end; clean it up.
	if u > 0 {
		if !t.rhsCleanOne(u) {
			t.rhsCleanMore(u)
		}
	}
}

func bias(b []byte) []int32 {
	syms := make([]int32, len(b))
	for i, c := range b {
		syms[i] = key.In(c)
	}
	return syms
}

// Insert associates keyBytes with value, overwriting any prior value for
// an identical key. Value 0 and an empty key are rejected.
func (t *Trie) Insert(keyBytes []byte, value int32) error {
	if len(keyBytes) == 0 || value == 0 {
		return trieerr.ErrInvalid
	}
	syms := bias(keyBytes)

	s, mismatch := t.front.GoForward(dac.Root, syms)
	fullFrontMatch := mismatch == len(syms)
	if !t.checkSeparator(s) {
		if fullFrontMatch {
			// Key is a literal prefix of another already-inserted key. It
			// lands on a plain branching front node, not a separator. An
			// earlier rearrangement may already have given it its own
			// terminator-labeled separator child; if so this is really a
			// duplicate reinsert. Otherwise that child is created here,
			// linked to the empty rear suffix.
			if tc, ok := t.terminatorChild(s); ok {
				t.index[-t.front.Base(tc)].Data = value
				return nil
			}
			i := t.lhsInsert(s, []int32{key.Terminator})
			t.index[i].Data = value
			return nil
		}
		i := t.lhsInsert(s, syms[mismatch:])
		t.index[i].Data = value
		return nil
	}

	// s is a separator. Whether or not the front walk fully consumed the
	// key, the rear chain must still be checked: a full front match can
	// land on a separator whose rear link holds a longer key's remaining
	// content (this key is a strict prefix of that one), which is not a
	// duplicate and must go through the same R-1..R-4 rearrangement as
	// any other rear divergence. When fullFrontMatch holds, the loop
	// below simply runs zero iterations and falls through to the
	// post-loop duplicate/rearrangement check.
	r := t.linkState(s)
	if t.rear.CheckReverseTransition(r, key.Terminator) {
		r = t.rear.Prev(r)
	}

	var match []int32
	var lastSym int32
	var atTerminator bool
	i := mismatch
	for ; i < len(syms); i++ {
		if r == dac.Root {
			// The old key's content ends here (its accept state is the
			// rear root's terminator child, stepped through above) while
			// the new key goes on: the old key's side of the divergence
			// is that terminator edge.
			r = t.rear.Next(dac.Root, key.Terminator)
			lastSym = key.Terminator
			atTerminator = true
			break
		}
		if t.rear.CheckReverseTransition(r, syms[i]) {
			r = t.rear.Prev(r)
			match = append(match, syms[i])
			continue
		}
		parent := t.rear.Prev(r)
		lastSym = r - t.rear.Base(parent)
		atTerminator = lastSym == key.Terminator
		break
	}
	if i < len(syms) {
		t.rhsInsert(s, r, match, syms[i:], lastSym, atTerminator, value)
		return nil
	}
	// The new key's remainder matched the rear chain with nothing left
	// over. Either the old suffix also ends here (exact duplicate, safe
	// to overwrite) or the old suffix continues past this point (the new
	// key is a strict prefix of it) and the implicit terminator edge is
	// itself the mismatch the R-1..R-4 rearrangement must resolve.
	if r == dac.Root {
		t.index[-t.front.Base(s)].Data = value
		return nil
	}
	parent := t.rear.Prev(r)
	oldSym := r - t.rear.Base(parent)
	if oldSym == key.Terminator {
		t.index[-t.front.Base(s)].Data = value
		return nil
	}
	t.rhsInsert(s, r, match, nil, oldSym, false, value)
	return nil
}

// Search reports the value associated with key, if any.
func (t *Trie) Search(keyBytes []byte) (int32, bool) {
	syms := bias(keyBytes)
	s, mismatch := t.front.GoForward(dac.Root, syms)
	if !t.checkSeparator(s) {
		if mismatch == len(syms) {
			if tc, ok := t.terminatorChild(s); ok {
				return t.index[-t.front.Base(tc)].Data, true
			}
		}
		return 0, false
	}

	// s is a separator; walk the rear chain for whatever of the key the
	// front trie didn't consume (possibly nothing). The walk must land
	// exactly on the implicit terminator that marks the end of this
	// separator's stored content, not merely run out of input early.
	r := t.linkState(s)
	if t.rear.CheckReverseTransition(r, key.Terminator) {
		r = t.rear.Prev(r)
	}
	r, ok := t.goBackward(r, syms[mismatch:])
	if !ok {
		return 0, false
	}
	if r == dac.Root || t.rear.CheckReverseTransition(r, key.Terminator) {
		return t.index[-t.front.Base(s)].Data, true
	}
	return 0, false
}

// goBackward walks r's parent chain, verifying it spells symbols in
// forward order; used by Search to confirm a key's tail against the
// shared rear suffix. The bool result reports whether every symbol was
// consumed; on a mismatch it returns the state reached so far and false,
// so a caller can never mistake an early stop for a completed walk.
func (t *Trie) goBackward(r int32, symbols []int32) (int32, bool) {
	for _, sym := range symbols {
		if !t.rear.CheckReverseTransition(r, sym) {
			return r, false
		}
		r = t.rear.Prev(r)
	}
	return r, true
}

// Result is one match reported by PrefixSearch.
type Result struct {
	Key   []byte
	Value int32
}

// decodeSeparatorSuffix renders the full tail a front separator links to,
// by walking its rear accept chain back to the root: the symbol labeling
// each step, read in that order, spells the tail forward (the same
// walk Search performs, but collecting instead of just verifying).
func (t *Trie) decodeSeparatorSuffix(s int32) []byte {
	r := t.linkState(s)
	if t.rear.CheckReverseTransition(r, key.Terminator) {
		r = t.rear.Prev(r)
	}
	var syms []int32
	for r != dac.Root {
		parent := t.rear.Prev(r)
		syms = append(syms, r-t.rear.Base(parent))
		r = parent
	}
	out := make([]byte, 0, len(syms))
	for _, sym := range syms {
		if sym == key.Terminator {
			break
		}
		out = append(out, key.Out(sym))
	}
	return out
}

// collectFront appends every key reachable from front state s, with
// prefix the bytes already consumed to reach s.
func (t *Trie) collectFront(s int32, prefix []byte, out *[]Result) {
	if t.checkSeparator(s) {
		suffix := t.decodeSeparatorSuffix(s)
		full := append(append([]byte{}, prefix...), suffix...)
		*out = append(*out, Result{Key: full, Value: t.index[-t.front.Base(s)].Data})
		return
	}
	labels, _, _ := t.front.Children(s)
	for _, ch := range labels {
		child := t.front.Next(s, ch)
		if ch == key.Terminator {
			// A terminator-labeled child is always a separator (R-3's
			// way of holding a key that ends exactly at this branch
			// point); recurse without contributing a byte to the path.
			t.collectFront(child, prefix, out)
			continue
		}
		t.collectFront(child, append(prefix, key.Out(ch)), out)
	}
}

// PrefixSearch reports every key sharing the given prefix, along with its
// value. A prefix landing inside a separator's shared rear suffix yields
// at most the single key that suffix completes.
func (t *Trie) PrefixSearch(prefix []byte) []Result {
	syms := bias(prefix)
	s, mismatch := t.front.GoForward(dac.Root, syms)
	if mismatch == len(syms) {
		var out []Result
		t.collectFront(s, append([]byte{}, prefix...), &out)
		return out
	}
	if !t.checkSeparator(s) {
		return nil
	}
	suffix := t.decodeSeparatorSuffix(s)
	remain := syms[mismatch:]
	if len(remain) > len(suffix) {
		return nil
	}
	for i, sym := range remain {
		if key.Out(sym) != suffix[i] {
			return nil
		}
	}
	full := append(append([]byte{}, prefix[:mismatch]...), suffix...)
	return []Result{{Key: full, Value: t.index[-t.front.Base(s)].Data}}
}
