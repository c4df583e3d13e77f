// Package dir encodes and decodes directory blocks.
//
// A directory block is an array of NDIRENT fixed-size records, each an inode
// number followed by a NUL-padded name. A record whose inode number is
// INVALID is absent and ends the listing.
package dir

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
)

type Entry struct {
	Ino  common.Inum
	Name string
}

func MkEntry(ino common.Inum, name string) Entry {
	return Entry{Ino: ino, Name: name}
}

func (e Entry) IsFree() bool {
	return e.Ino == common.NULLINUM
}

// NewBlock returns a full block's worth of absent entries.
func NewBlock() []Entry {
	ents := make([]Entry, common.NDIRENT)
	for i := range ents {
		ents[i] = Entry{Ino: common.NULLINUM}
	}
	return ents
}

func putEntry(blk disk.Block, off uint64, e Entry) {
	enc := marshal.NewEnc(4)
	enc.PutInt32(uint32(e.Ino))
	copy(blk[off:off+4], enc.Finish())
	name := blk[off+4 : off+common.DIRENTSZ]
	for i := range name {
		name[i] = 0
	}
	copy(name, e.Name)
}

// Encode lays out ents in order. Slots past len(ents) are absent. A name
// longer than NameLen bytes or holding a NUL byte is rejected, never
// truncated.
func Encode(ents []Entry) (disk.Block, error) {
	if uint64(len(ents)) > common.NDIRENT {
		panic("too many directory entries for one block")
	}
	blk := disk.NewBlock()
	for i := uint64(0); i < common.NDIRENT; i++ {
		e := Entry{Ino: common.NULLINUM}
		if i < uint64(len(ents)) {
			e = ents[i]
		}
		if uint64(len(e.Name)) > common.NameLen {
			return nil, errors.Wrapf(common.ErrNameTooLong, "%q", e.Name)
		}
		if strings.IndexByte(e.Name, 0) >= 0 {
			return nil, errors.Wrapf(common.ErrBadName, "%q", e.Name)
		}
		putEntry(blk, i*common.DIRENTSZ, e)
	}
	return blk, nil
}

// Reader walks the entries of a directory block lazily.
type Reader struct {
	blk disk.Block
	i   uint64
}

func NewReader(blk disk.Block) *Reader {
	return &Reader{blk: blk}
}

// Next returns the next entry, or false at the first absent record or the
// end of the block.
func (r *Reader) Next() (Entry, bool) {
	if r.i >= common.NDIRENT {
		return Entry{}, false
	}
	off := r.i * common.DIRENTSZ
	dec := marshal.NewDec(r.blk[off : off+4])
	e := Entry{Ino: common.Inum(dec.GetInt32())}
	if e.IsFree() {
		r.i = common.NDIRENT
		return Entry{}, false
	}
	name := r.blk[off+4 : off+common.DIRENTSZ]
	if n := bytes.IndexByte(name, 0); n >= 0 {
		name = name[:n]
	}
	e.Name = string(name)
	r.i++
	return e, true
}

// Decode collects every entry before the first absent one.
func Decode(blk disk.Block) []Entry {
	var ents []Entry
	r := NewReader(blk)
	for {
		e, ok := r.Next()
		if !ok {
			break
		}
		ents = append(ents, e)
	}
	return ents
}

// Size is the byte size recorded in a directory inode holding n entries.
func Size(n uint64) uint32 {
	return uint32(n * common.DIRENTSZ)
}
