// Package super holds the on-disk superblock.
//
// The superblock is also the authoritative inode allocation directory: its
// per-inode state table is only changed by AllocInode and MarkInode, which
// keep NIFree equal to the number of free entries.
package super

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/util"
)

type State int

const (
	Clean State = iota
	Dirty
	Invalid
)

type Superblock struct {
	Magic  uint32
	Flags  uint32
	NIFree uint32
	NBFree uint32
	Inodes [common.NInodes]uint32
}

// Init returns a superblock for an empty image: every inode free and every
// block counted as free, including the ones metadata will reserve.
func Init() *Superblock {
	sb := &Superblock{
		Magic:  common.MAGIC,
		Flags:  common.SB_CLEAN,
		NIFree: uint32(common.NInodes),
		NBFree: uint32(common.NBlocks),
	}
	for i := range sb.Inodes {
		sb.Inodes[i] = common.INODE_FREE
	}
	return sb
}

func (sb *Superblock) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(sb.Magic)
	enc.PutInt32(sb.Flags)
	enc.PutInt32(sb.NIFree)
	enc.PutInt32(sb.NBFree)
	for _, st := range sb.Inodes {
		enc.PutInt32(st)
	}
	return enc.Finish()
}

func Decode(blk disk.Block) *Superblock {
	dec := marshal.NewDec(blk)
	sb := &Superblock{}
	sb.Magic = dec.GetInt32()
	sb.Flags = dec.GetInt32()
	sb.NIFree = dec.GetInt32()
	sb.NBFree = dec.GetInt32()
	for i := range sb.Inodes {
		sb.Inodes[i] = dec.GetInt32()
	}
	return sb
}

// Load reads the superblock block from d.
func Load(d disk.Disk) (*Superblock, error) {
	blk, err := d.Read(common.SBBLOCK)
	if err != nil {
		return nil, errors.Wrap(err, "load superblock")
	}
	return Decode(blk), nil
}

// Store writes sb to the superblock block of d.
func (sb *Superblock) Store(d disk.Disk) error {
	err := d.Write(common.SBBLOCK, sb.Encode())
	if err != nil {
		return errors.Wrap(err, "store superblock")
	}
	return nil
}

func (sb *Superblock) State() State {
	switch sb.Flags {
	case common.SB_CLEAN:
		return Clean
	case common.SB_DIRTY:
		return Dirty
	}
	return Invalid
}

func (sb *Superblock) FlagString() string {
	switch sb.State() {
	case Clean:
		return "SB_CLEAN"
	case Dirty:
		return "SB_DIRTY"
	}
	return fmt.Sprintf("SB_INVALID(0x%x)", sb.Flags)
}

func (sb *Superblock) IsInodeFree(inum common.Inum) bool {
	return sb.Inodes[inum] == common.INODE_FREE
}

// NFreeInodes counts the free entries of the allocation table, independent
// of NIFree.
func (sb *Superblock) NFreeInodes() uint32 {
	var n uint32
	for _, st := range sb.Inodes {
		if st == common.INODE_FREE {
			n++
		}
	}
	return n
}

// MarkInode flips inum to in-use.
func (sb *Superblock) MarkInode(inum common.Inum) error {
	if inum >= common.NInodes {
		return errors.Errorf("inode %d out of range", inum)
	}
	if sb.Inodes[inum] != common.INODE_FREE {
		return errors.Wrapf(common.ErrInUse, "inode %d", inum)
	}
	sb.Inodes[inum] = common.INODE_INUSE
	sb.NIFree--
	return nil
}

// AllocInode marks the lowest free inode in-use and returns it.
func (sb *Superblock) AllocInode() (common.Inum, error) {
	for i := range sb.Inodes {
		inum := common.Inum(i)
		if !sb.IsInodeFree(inum) {
			util.DPrintf(5, "AllocInode: %d in use\n", inum)
			continue
		}
		if err := sb.MarkInode(inum); err != nil {
			return common.NULLINUM, err
		}
		util.DPrintf(1, "AllocInode: found %d\n", inum)
		return inum, nil
	}
	return common.NULLINUM, errors.Wrap(common.ErrExhausted, "no free inode")
}

// UseBlock accounts for one block taken from the free pool.
func (sb *Superblock) UseBlock() {
	sb.NBFree--
}
