// Package dac implements the double-array core: the primitive trie
// representation shared by the suffix-tail trie (package stt) and the
// front/rear two-trie (package dtrie).
//
// A Core holds paired base[]/check[] cells. State 1 is the root and is
// never relocated. Transition s--c-->t exists iff t = base(s)+c, t is in
// range, and check(t) == s. Growth and relocation never leave dangling
// check entries (invariants I1-I4 in the reference spec).
package dac

import (
	"strconv"

	"github.com/npillmayer/doat/key"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("doat.dac")
}

// Root is the fixed root state of every Core.
const Root int32 = 1

// DefaultSize is the smallest useful state array: one cell per charset
// symbol plus the root.
const DefaultSize = key.CharsetSize + 1

// Header is a 64-byte record holding a Core's cell count, as built by
// CompactHeader. The archive package does not use it; it writes its own
// header type ahead of each Core's cells.
type Header struct {
	Size int32
	_    [60]byte
}

// Relocator receives a callback whenever Relocate moves a state's cells
// from one index to another. Implementations must only read other Core
// state from within Relocate — not mutate it — since the Core is mid
// operation.
type Relocator interface {
	Relocate(oldState, newState int32)
}

// Core is the double-array engine: base[]/check[] plus growth and
// relocation. It owns its slices unless constructed via Borrow, in which
// case it is a read-only view over externally-owned memory (e.g. a memory
// mapped archive).
type Core struct {
	base      []int32
	check     []int32
	lastBase  int32
	maxState  int32
	owner     bool
	relocator Relocator
}

// New creates an empty, owning Core with at least size cells.
func New(size int32) *Core {
	if size < DefaultSize {
		size = DefaultSize
	}
	c := &Core{owner: true, maxState: Root}
	c.resize(size)
	c.check[Root] = 0
	return c
}

// Borrow wraps externally-owned base/check slices (e.g. a memory-mapped
// archive region) as a read-only Core. Mutating methods panic.
func Borrow(base, check []int32, maxState int32) *Core {
	return &Core{base: base, check: check, owner: false, maxState: maxState}
}

// SetRelocator installs the observer notified of relocations. The
// observer's lifetime is tied to whoever owns this Core.
func (c *Core) SetRelocator(r Relocator) { c.relocator = r }

// Owner reports whether this Core owns its backing storage.
func (c *Core) Owner() bool { return c.owner }

// Size returns the current cell-array capacity.
func (c *Core) Size() int32 { return int32(len(c.check)) }

// MaxState returns the highest state index ever assigned a base value.
// The archive records it in each Core's header but still persists every
// cell; the saved array is not trimmed to it.
func (c *Core) MaxState() int32 { return c.maxState }

// Base returns the base value of state s.
func (c *Core) Base(s int32) int32 { return c.base[s] }

// Check returns the check (parent) value of state s.
func (c *Core) Check(s int32) int32 { return c.check[s] }

// SetBase sets the base value of state s and tracks MaxState.
func (c *Core) SetBase(s, v int32) {
	c.assertOwner()
	c.base[s] = v
	if s > c.maxState {
		c.maxState = s
	}
}

// SetCheck sets the check (parent) value of state s.
func (c *Core) SetCheck(s, v int32) {
	c.assertOwner()
	c.check[s] = v
}

// Next computes the candidate target of transition s--c-->?, without
// verifying it is actually allocated.
func (c *Core) Next(s, ch int32) int32 { return c.base[s] + ch }

// Prev returns the parent of state s along its unique incoming arc.
func (c *Core) Prev(s int32) int32 { return c.check[s] }

// CheckTransition reports whether s--*-->t is an allocated transition.
func (c *Core) CheckTransition(s, t int32) bool {
	return s > 0 && t > 0 && t < int32(len(c.check)) && c.check[t] == s
}

// CheckReverseTransition reports whether ch is exactly the symbol
// connecting prev(s) to s.
func (c *Core) CheckReverseTransition(s, ch int32) bool {
	p := c.Prev(s)
	t := c.Next(p, ch)
	return t == s && c.CheckTransition(p, t)
}

// GoForward greedily follows symbols from s, stopping at the first
// missing arc. It returns the last state reached and the index within
// symbols where it diverged, or -1 if every symbol (including the
// trailing Terminator) was consumed.
func (c *Core) GoForward(s int32, symbols []int32) (int32, int) {
	for i, sym := range symbols {
		t := c.Next(s, sym)
		if !c.CheckTransition(s, t) {
			return s, i
		}
		s = t
		if sym == key.Terminator {
			return s, -1
		}
	}
	return s, len(symbols)
}

// GoForwardReverse is GoForward but consumes symbols from right to left;
// used to enter the rear trie of a two-trie structure.
func (c *Core) GoForwardReverse(s int32, symbols []int32) (int32, int) {
	for i := len(symbols) - 1; i >= 0; i-- {
		t := c.Next(s, symbols[i])
		if !c.CheckTransition(s, t) {
			return s, i
		}
		s = t
	}
	return s, -1
}

// GoBackward follows prev pointers while checking each transition symbol
// against symbols in order; used to verify a reverse path in a rear trie.
func (c *Core) GoBackward(s int32, symbols []int32) (int32, int) {
	for i, sym := range symbols {
		t := c.Prev(s)
		if !c.CheckReverseTransition(s, sym) {
			return s, i
		}
		s = t
		if sym == key.Terminator {
			return s, -1
		}
	}
	return s, len(symbols)
}

// children enumerates the existing outgoing symbols of s (ascending) and
// their min/max extremum, the bookkeeping create_transition and relocate
// share.
func (c *Core) children(s int32) (labels []int32, min, max int32) {
	for ch := int32(1); ch <= key.CharsetSize; ch++ {
		t := c.Next(s, ch)
		if t >= int32(len(c.check)) {
			break
		}
		if c.CheckTransition(s, t) {
			labels = append(labels, ch)
			if max == 0 || ch > max {
				max = ch
			}
			if min == 0 || ch < min {
				min = ch
			}
		}
	}
	return labels, min, max
}

// findBase performs a linear scan from the monotonically advancing
// lastBase cursor for a base offset under which every symbol in children
// lands on a free cell. The cursor never retreats, bounding amortized
// cost at the expense of worst-case guarantees.
func (c *Core) findBase(children []int32, min, max int32) int32 {
	for i := c.lastBase + 1; ; i++ {
		if i+max >= int32(len(c.check)) {
			c.resize(max)
		}
		if c.check[i+min] <= 0 && c.check[i+max] <= 0 {
			ok := true
			for _, ch := range children {
				if c.check[i+ch] > 0 {
					ok = false
					break
				}
			}
			if ok {
				c.lastBase = i
				return i
			}
		}
	}
}

// relocate moves the children of s (given as the full set children,
// spanning [min,max]) to a freshly found base, fixing up grandchildren's
// check pointers and notifying the relocator. stand is a state the
// caller is tracking across the move; relocate returns its updated
// value if it happened to be one of the moved cells.
func (c *Core) relocate(stand, s int32, children []int32, min, max int32) int32 {
	obase := c.Base(s)
	nbase := c.findBase(children, min, max)
	for _, ch := range children {
		oldCell := obase + ch
		if c.Check(oldCell) != s {
			continue
		}
		newCell := nbase + ch
		c.SetBase(newCell, c.Base(oldCell))
		c.SetCheck(newCell, c.Check(oldCell))
		grandchildren, _, _ := c.children(oldCell)
		for _, gc := range grandchildren {
			c.SetCheck(c.Next(oldCell, gc), newCell)
		}
		if stand == oldCell {
			stand = newCell
		}
		if c.relocator != nil {
			c.relocator.Relocate(oldCell, newCell)
		}
		c.SetBase(oldCell, 0)
		c.SetCheck(oldCell, 0)
	}
	c.SetBase(s, nbase)
	return stand
}

// CreateTransition ensures the arc s--ch-->t exists, relocating whichever
// side of a conflicting cell has fewer children to move, and returns t.
func (c *Core) CreateTransition(s, ch int32) int32 {
	t := c.Next(s, ch)
	if t >= int32(len(c.check)) {
		c.resize(t - int32(len(c.check)) + 1)
		t = c.Next(s, ch)
	}
	if !(c.Base(s) > 0 && c.Check(t) <= 0) {
		children, min, max := c.children(s)
		var parentChildren []int32
		var pmin, pmax int32
		if c.Check(t) != 0 {
			parentChildren, pmin, pmax = c.children(c.Check(t))
		}
		if len(parentChildren) > 0 && len(children)+1 > len(parentChildren) {
			s = c.relocate(s, c.Check(t), parentChildren, pmin, pmax)
		} else {
			children = append(children, ch)
			if max == 0 || ch > max {
				max = ch
			}
			if min == 0 || ch < min {
				min = ch
			}
			s = c.relocate(s, s, children, min, max)
		}
		t = c.Next(s, ch)
		if t >= int32(len(c.check)) {
			c.resize(t - int32(len(c.check)) + 1)
		}
	}
	c.SetCheck(t, s)
	return t
}

// resize grows the state array to ((size*2+n)/4096 + 1) * 4096 cells,
// zero-filling the tail. Growth never leaves a dangling check entry: the
// new slices are copies, swapped in only once fully populated.
func (c *Core) resize(n int32) {
	c.assertOwner()
	old := int32(len(c.check))
	nsize := (((old*2 + n) / 4096) + 1) * 4096
	nb := make([]int32, nsize)
	nc := make([]int32, nsize)
	copy(nb, c.base)
	copy(nc, c.check)
	c.base = nb
	c.check = nc
	tracer().Debugf("dac grown to %d cells", nsize)
}

func (c *Core) assertOwner() {
	if !c.owner {
		panic("dac: mutation attempted on a borrowed (read-only) core")
	}
}

// CompactHeader reports a Header whose Size is MaxState+1. Cells that only
// ever had their check set (such as rear-trie leaves) can lie past
// MaxState. The archive package does not call it and writes every cell.
func (c *Core) CompactHeader() Header {
	return Header{Size: c.maxState + 1}
}

// StateSlices exposes the raw cells for archive encoding. The returned
// slices are views, not copies; callers must not retain them past the
// Core's lifetime if it is later mutated.
func (c *Core) StateSlices() (base, check []int32) { return c.base, c.check }

// Children enumerates the existing outgoing symbols of s in ascending
// order, and their min/max extremum. Exported for upper layers that walk
// the trie structurally: prefix search DFS, outdegree checks in the
// two-trie's rear cleanup, and debug tracing.
func (c *Core) Children(s int32) (labels []int32, min, max int32) {
	return c.children(s)
}

// Outdegree is the number of existing outgoing transitions from s.
func (c *Core) Outdegree(s int32) int {
	labels, _, _ := c.children(s)
	return len(labels)
}

// Trace renders the transition path reaching s as a human-readable arrow
// chain, for debug dumps. Mirrors the reference
// implementation's debug-only basic_trie::trace.
func (c *Core) Trace(s int32) string {
	var stack []int32
	for cur := s; cur != 0; cur = c.Prev(cur) {
		stack = append(stack, cur)
		if cur == Root {
			break
		}
	}
	var b []byte
	for i := len(stack) - 1; i >= 0; i-- {
		cur := stack[i]
		if i != len(stack)-1 {
			parent := stack[i+1]
			sym := cur - c.Base(parent)
			b = append(b, renderSymbol(sym)...)
		}
		b = append(b, []byte(strconv.Itoa(int(cur)))...)
	}
	return string(b)
}

func renderSymbol(sym int32) string {
	if sym == key.Terminator {
		return "-#->"
	}
	ch := key.Out(sym)
	if ch >= 0x20 && ch < 0x7f {
		return "-'" + string(rune(ch)) + "'->"
	}
	return "-<?>->"
}
