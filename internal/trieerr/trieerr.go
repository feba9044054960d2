// Package trieerr holds the sentinel error kinds shared by every trie
// variant and the archive loader, so the root façade and the variant
// packages can agree on error identity without creating an import cycle
// back to the façade.
package trieerr

import "errors"

var (
	// ErrBadArchive: archive missing, unreadable, wrong magic, truncated.
	ErrBadArchive = errors.New("doat: bad archive")

	// ErrBadSource: text input cannot be opened or decoded.
	ErrBadSource = errors.New("doat: bad source")

	// ErrInvalid: Insert called with value 0 or an empty key.
	ErrInvalid = errors.New("doat: invalid argument")

	// ErrOutOfMemory: array growth failed.
	ErrOutOfMemory = errors.New("doat: out of memory")
)
