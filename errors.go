package doat

import (
	"runtime"

	"github.com/npillmayer/doat/internal/trieerr"
)

// Sentinel error kinds, matched with errors.Is. Variant packages return
// these directly; wrap with additional context via
// fmt.Errorf("...: %w", ErrX) at call sites that need it.
var (
	// ErrBadArchive is returned when an archive is missing, unreadable,
	// carries the wrong magic, or is truncated.
	ErrBadArchive = trieerr.ErrBadArchive

	// ErrBadSource is returned when a text source cannot be opened or
	// decoded.
	ErrBadSource = trieerr.ErrBadSource

	// ErrInvalid is returned when Insert is called with a zero value or
	// a nil/empty key.
	ErrInvalid = trieerr.ErrInvalid

	// ErrOutOfMemory is returned when growing the underlying arrays
	// fails. Internal state remains consistent: growth always builds a
	// fresh slice and only swaps it in once fully populated, so a
	// failed allocation never leaves a half-grown array installed.
	ErrOutOfMemory = trieerr.ErrOutOfMemory
)

// recoverOOM turns an allocation panic (Go's equivalent of a failed
// malloc) into ErrOutOfMemory at the façade boundary, per the
// "surfaces to caller" policy for OutOfMemory.
func recoverOOM(err *error) {
	if r := recover(); r != nil {
		if _, ok := r.(runtime.Error); ok {
			*err = ErrOutOfMemory
			return
		}
		panic(r)
	}
}
