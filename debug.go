package doat

import (
	"fmt"

	"github.com/npillmayer/doat/dac"
)

// Dump renders a structural trace of t, for the dump CLI subcommand and
// for diagnosing R-1…R-4 rearrangements while developing against dtrie.
func Dump(t Trie) string {
	switch v := t.(type) {
	case *singleTrie:
		_, poolLen := v.t.Pool()
		return v.t.Core().Trace(dac.Root) + v.t.TraceSuffix(0, poolLen)
	case *doubleTrie:
		return v.t.Front().Trace(dac.Root) + v.t.Rear().Trace(dac.Root) +
			v.t.TraceTable(0, 0, v.t.Front().MaxState())
	default:
		return fmt.Sprintf("doat: unknown trie implementation %T\n", t)
	}
}
