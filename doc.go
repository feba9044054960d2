/*
Package doat is a static string-to-int32 dictionary built on a
double-array trie (DAT), after J. Aoe's "An Efficient Digital Search
Algorithm by Using a Double-Array Structure" and "A Trie Compaction
Algorithm for a Large Set of Keys".

Two storage variants are available, both sharing the double-array core
in package dac:

  - Single, package stt: branching prefixes live in the double array,
    non-branching tails are compacted into a contiguous suffix pool.
  - Double, package dtrie: keys are split across a forward trie and a
    reverse-direction trie of shared suffixes, indirected through an
    index/accept table, rearranged on conflict by a four-step
    procedure (R-1 through R-4).

Only insertion and lookup are supported; there is no deletion, no
concurrent mutation, and no Unicode normalization — the alphabet is
byte-valued. An instance is either owning (its arrays are heap
allocated) or borrowed (a read-only view over an archive file); only an
owning instance may be mutated.

Further Reading

	J. Aoe, "An Efficient Digital Search Algorithm by Using a Double-Array Structure", IEEE TSE 1989.
	J. Aoe, "A Trie Compaction Algorithm for a Large Set of Keys", IEEE TKDE 1996.

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package doat

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'doat'
func tracer() tracing.Trace {
	return tracing.Select("doat")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
