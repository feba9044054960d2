// Package archive persists a trie to, and loads it back from, a flat
// file: a fixed-size header followed by its component arrays in a fixed
// order. Loading never mutates the file; the returned trie is a borrowed
// (read-only) view exactly as if it had been memory-mapped, though it is
// read fully into heap memory — the corpus this module was grown from
// carries no memory-mapping library, so plain os/io stands in for it.
package archive

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/doat/dac"
	"github.com/npillmayer/doat/dtrie"
	"github.com/npillmayer/doat/internal/trieerr"
	"github.com/npillmayer/doat/stt"
)

var order = binary.LittleEndian

// dacHeader is the 64-byte record preceding one dac.Core's cells.
type dacHeader struct {
	Magic    [8]byte
	Size     int32
	MaxState int32
	_        [48]byte
}

const dacMagic = "DOATdac1"

// sttHeader is the 64-byte record preceding a single-trie archive's
// dac.Core and suffix pool.
type sttHeader struct {
	Magic   [16]byte
	PoolLen int32
	_       [44]byte
}

const sttMagic = "DOATsingletrie01"

// dtrieHeader is the 64-byte record preceding a two-trie archive's front
// and rear cores, index/accept tables, and reference map.
type dtrieHeader struct {
	Magic      [16]byte
	IndexSize  int32
	AcceptSize int32
	NextIndex  int32
	NextAccept int32
	FreeIndex  int32
	FreeAccept int32
	ReferCount int32
	_          [20]byte
}

const dtrieMagic = "DOATdoubletrie01"

// Format identifies which variant an archive file holds.
type Format int

const (
	Unknown Format = iota
	SingleTrie
	TwoTrie
)

// Sniff reports which variant the archive at path holds, by its leading
// 16-byte magic, without reading the rest of the file.
func Sniff(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, fmt.Errorf("%w: %v", trieerr.ErrBadArchive, err)
	}
	defer f.Close()
	var magic [16]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return Unknown, fmt.Errorf("%w: %v", trieerr.ErrBadArchive, err)
	}
	switch string(magic[:]) {
	case sttMagic:
		return SingleTrie, nil
	case dtrieMagic:
		return TwoTrie, nil
	default:
		return Unknown, fmt.Errorf("%w: unrecognized magic", trieerr.ErrBadArchive)
	}
}

func writeDac(w io.Writer, c *dac.Core) error {
	base, check := c.StateSlices()
	h := dacHeader{Size: int32(len(check)), MaxState: c.MaxState()}
	copy(h.Magic[:], dacMagic)
	if err := binary.Write(w, order, h); err != nil {
		return err
	}
	if err := binary.Write(w, order, base); err != nil {
		return err
	}
	return binary.Write(w, order, check)
}

func readDac(r io.Reader) (*dac.Core, error) {
	var h dacHeader
	if err := binary.Read(r, order, &h); err != nil {
		return nil, fmt.Errorf("%w: dac header: %v", trieerr.ErrBadArchive, err)
	}
	if string(h.Magic[:]) != dacMagic {
		return nil, fmt.Errorf("%w: bad dac magic", trieerr.ErrBadArchive)
	}
	base := make([]int32, h.Size)
	check := make([]int32, h.Size)
	if err := binary.Read(r, order, base); err != nil {
		return nil, fmt.Errorf("%w: dac base: %v", trieerr.ErrBadArchive, err)
	}
	if err := binary.Read(r, order, check); err != nil {
		return nil, fmt.Errorf("%w: dac check: %v", trieerr.ErrBadArchive, err)
	}
	return dac.Borrow(base, check, h.MaxState), nil
}

// SaveSingleTrie writes t to path, truncating any existing file.
func SaveSingleTrie(path string, t *stt.Trie) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", trieerr.ErrBadArchive, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	pool, poolLen := t.Pool()
	h := sttHeader{PoolLen: poolLen}
	copy(h.Magic[:], sttMagic)
	if err := binary.Write(w, order, h); err != nil {
		return err
	}
	if err := writeDac(w, t.Core()); err != nil {
		return err
	}
	if err := binary.Write(w, order, pool[:poolLen]); err != nil {
		return err
	}
	return w.Flush()
}

// LoadSingleTrie reads a single-trie archive written by SaveSingleTrie.
// The returned Trie is read-only.
func LoadSingleTrie(path string) (*stt.Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trieerr.ErrBadArchive, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var h sttHeader
	if err := binary.Read(r, order, &h); err != nil {
		return nil, fmt.Errorf("%w: stt header: %v", trieerr.ErrBadArchive, err)
	}
	if string(h.Magic[:]) != sttMagic {
		return nil, fmt.Errorf("%w: bad stt magic", trieerr.ErrBadArchive)
	}
	core, err := readDac(r)
	if err != nil {
		return nil, err
	}
	pool := make([]int32, h.PoolLen)
	if err := binary.Read(r, order, pool); err != nil {
		return nil, fmt.Errorf("%w: stt pool: %v", trieerr.ErrBadArchive, err)
	}
	return stt.Borrow(core, pool, h.PoolLen), nil
}

// SaveTwoTrie writes t to path, truncating any existing file.
func SaveTwoTrie(path string, t *dtrie.Trie) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", trieerr.ErrBadArchive, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	index, accept, refers, nextIndex, nextAccept, freeIndex, freeAccept := t.Tables()
	h := dtrieHeader{
		IndexSize:  int32(len(index)),
		AcceptSize: int32(len(accept)),
		NextIndex:  nextIndex,
		NextAccept: nextAccept,
		FreeIndex:  int32(len(freeIndex)),
		FreeAccept: int32(len(freeAccept)),
		ReferCount: int32(len(refers)),
	}
	copy(h.Magic[:], dtrieMagic)
	if err := binary.Write(w, order, h); err != nil {
		return err
	}
	if err := writeDac(w, t.Front()); err != nil {
		return err
	}
	if err := writeDac(w, t.Rear()); err != nil {
		return err
	}
	for _, e := range index {
		if err := binary.Write(w, order, e); err != nil {
			return err
		}
	}
	for _, e := range accept {
		if err := binary.Write(w, order, e); err != nil {
			return err
		}
	}
	if err := binary.Write(w, order, freeIndex); err != nil {
		return err
	}
	if err := binary.Write(w, order, freeAccept); err != nil {
		return err
	}
	for _, ref := range refers {
		if err := binary.Write(w, order, int32(ref.State)); err != nil {
			return err
		}
		if err := binary.Write(w, order, ref.AcceptIndex); err != nil {
			return err
		}
		if err := binary.Write(w, order, int32(len(ref.Referer))); err != nil {
			return err
		}
		if err := binary.Write(w, order, ref.Referer); err != nil {
			return err
		}
	}
	return w.Flush()
}

// LoadTwoTrie reads a two-trie archive written by SaveTwoTrie. The
// returned Trie is read-only.
func LoadTwoTrie(path string) (*dtrie.Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trieerr.ErrBadArchive, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var h dtrieHeader
	if err := binary.Read(r, order, &h); err != nil {
		return nil, fmt.Errorf("%w: dtrie header: %v", trieerr.ErrBadArchive, err)
	}
	if string(h.Magic[:]) != dtrieMagic {
		return nil, fmt.Errorf("%w: bad dtrie magic", trieerr.ErrBadArchive)
	}
	front, err := readDac(r)
	if err != nil {
		return nil, err
	}
	rear, err := readDac(r)
	if err != nil {
		return nil, err
	}
	index := make([]dtrie.IndexEntry, h.IndexSize)
	for i := range index {
		if err := binary.Read(r, order, &index[i]); err != nil {
			return nil, fmt.Errorf("%w: dtrie index: %v", trieerr.ErrBadArchive, err)
		}
	}
	accept := make([]dtrie.AcceptEntry, h.AcceptSize)
	for i := range accept {
		if err := binary.Read(r, order, &accept[i]); err != nil {
			return nil, fmt.Errorf("%w: dtrie accept: %v", trieerr.ErrBadArchive, err)
		}
	}
	freeIndex := make([]int32, h.FreeIndex)
	if err := binary.Read(r, order, freeIndex); err != nil {
		return nil, fmt.Errorf("%w: dtrie free index: %v", trieerr.ErrBadArchive, err)
	}
	freeAccept := make([]int32, h.FreeAccept)
	if err := binary.Read(r, order, freeAccept); err != nil {
		return nil, fmt.Errorf("%w: dtrie free accept: %v", trieerr.ErrBadArchive, err)
	}
	refers := make([]dtrie.ReferRecord, h.ReferCount)
	for i := range refers {
		var state, count int32
		if err := binary.Read(r, order, &state); err != nil {
			return nil, fmt.Errorf("%w: dtrie refer state: %v", trieerr.ErrBadArchive, err)
		}
		if err := binary.Read(r, order, &refers[i].AcceptIndex); err != nil {
			return nil, fmt.Errorf("%w: dtrie refer accept index: %v", trieerr.ErrBadArchive, err)
		}
		if err := binary.Read(r, order, &count); err != nil {
			return nil, fmt.Errorf("%w: dtrie refer count: %v", trieerr.ErrBadArchive, err)
		}
		refers[i].State = state
		refers[i].Referer = make([]int32, count)
		if err := binary.Read(r, order, refers[i].Referer); err != nil {
			return nil, fmt.Errorf("%w: dtrie referer list: %v", trieerr.ErrBadArchive, err)
		}
	}
	return dtrie.Borrow(front, rear, index, accept, refers, h.NextIndex, h.NextAccept, freeIndex, freeAccept), nil
}
