// Package key converts byte strings into the biased symbol sequences the
// double-array engines operate on.
//
// Every key is a sequence of symbols in [1,256], one per input byte, biased
// by +1 so that symbol 0 stays free as a sentinel. A reserved Terminator
// symbol (257) follows every key and is never part of the input alphabet.
package key

// CharsetSize is the number of transition slots a state needs: 256 byte
// values plus the terminator.
const CharsetSize = 257

// Terminator is the reserved end-of-key symbol, outside the byte alphabet.
const Terminator int32 = CharsetSize

// In biases a raw byte into its alphabet symbol.
func In(b byte) int32 { return int32(b) + 1 }

// Out reverses In, recovering the original byte from a symbol.
func Out(c int32) byte { return byte(c - 1) }

// Key is a growable buffer of biased symbols, always Terminator-capped.
type Key struct {
	data []int32
}

// New builds a Key from a raw byte string.
func New(data []byte) *Key {
	k := &Key{}
	k.Assign(data)
	return k
}

// Assign overwrites the key with the biased symbols of data.
func (k *Key) Assign(data []byte) {
	k.data = k.data[:0]
	k.grow(len(data))
	for _, b := range data {
		k.data = append(k.data, In(b))
	}
	k.data = append(k.data, Terminator)
}

// AssignSymbols overwrites the key with an already-biased symbol sequence
// (no trailing Terminator expected in symbols; one is appended).
func (k *Key) AssignSymbols(symbols []int32) {
	k.data = k.data[:0]
	k.grow(len(symbols))
	k.data = append(k.data, symbols...)
	k.data = append(k.data, Terminator)
}

// Length returns the number of symbols excluding the terminator.
func (k *Key) Length() int {
	if len(k.data) == 0 {
		return 0
	}
	return len(k.data) - 1
}

// Symbols returns the symbol sequence including the trailing Terminator.
func (k *Key) Symbols() []int32 { return k.data }

// CStr renders the key back into raw bytes (excluding the terminator).
func (k *Key) CStr() []byte {
	n := k.Length()
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = Out(k.data[i])
	}
	return out
}

// Push appends one more biased symbol, keeping the terminator last.
func (k *Key) Push(c int32) {
	n := k.Length()
	k.grow(1)
	if n < len(k.data) {
		k.data[n] = c
		k.data = append(k.data, Terminator)
	} else {
		k.data = append(k.data, c, Terminator)
	}
}

// Pop removes and returns the last symbol before the terminator.
func (k *Key) Pop() int32 {
	n := k.Length()
	if n == 0 {
		return Terminator
	}
	c := k.data[n-1]
	k.data = k.data[:n]
	k.data[n-1] = Terminator
	return c
}

// Clear empties the key back to a bare terminator.
func (k *Key) Clear() {
	k.data = k.data[:0]
	k.data = append(k.data, Terminator)
}

// grow doubles capacity the way the reference implementation's
// resize_data does: (capacity + need + 1) * 2.
func (k *Key) grow(need int) {
	if cap(k.data) >= len(k.data)+need+1 {
		return
	}
	nsize := (cap(k.data) + need + 1) * 2
	nd := make([]int32, len(k.data), nsize)
	copy(nd, k.data)
	k.data = nd
}
