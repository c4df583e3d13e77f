package alloc

import (
	"github.com/pkg/errors"

	"github.com/mit-pdos/go-toyfs/addr"
	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/super"
	"github.com/mit-pdos/go-toyfs/util"
)

const full byte = 0xFF

// Bitmap tracks the state of every block of the image, one bit per block
// (1 is in-use), packed into 8-bit groups. Only the leading
// RoundUp(nblocks, 8) bytes of the bitmap block are meaningful.
//
// Every block taken from the bitmap is charged against the superblock's free
// block counter. Blocks are never returned.
type Bitmap struct {
	sb      *super.Superblock
	bmap    disk.Block
	nblocks uint64
}

// MkBitmap returns an all-free bitmap for the whole image.
func MkBitmap(sb *super.Superblock) *Bitmap {
	return MkMaxBitmap(sb, common.NBlocks)
}

// MkMaxBitmap returns an all-free bitmap tracking nblocks blocks.
func MkMaxBitmap(sb *super.Superblock, nblocks uint64) *Bitmap {
	if nblocks > common.BlockSize*common.NBITGROUP {
		panic("bitmap does not fit in one block")
	}
	return &Bitmap{sb: sb, bmap: disk.NewBlock(), nblocks: nblocks}
}

// LoadBitmap wraps an on-disk bitmap block without changing sb.
func LoadBitmap(sb *super.Superblock, blk disk.Block) *Bitmap {
	return &Bitmap{sb: sb, bmap: util.CloneByteSlice(blk), nblocks: common.NBlocks}
}

func (bm *Bitmap) ngroups() uint64 {
	return util.RoundUp(bm.nblocks, common.NBITGROUP)
}

func (bm *Bitmap) IsUsed(bn common.Bnum) bool {
	a := addr.MkBitAddr(bn)
	return bm.bmap[a.Group]&a.Mask() != 0
}

// Mark sets the bit of bn and charges it to the free block counter.
func (bm *Bitmap) Mark(bn common.Bnum) error {
	if bn >= bm.nblocks {
		return errors.Wrapf(common.ErrOutOfRange, "mark block %d", bn)
	}
	a := addr.MkBitAddr(bn)
	if bm.bmap[a.Group]&a.Mask() != 0 {
		return errors.Wrapf(common.ErrInUse, "block %d", bn)
	}
	bm.bmap[a.Group] |= a.Mask()
	bm.sb.UseBlock()
	util.DPrintf(5, "Mark: %d group %d 0x%x\n", bn, a.Group, bm.bmap[a.Group])
	return nil
}

// Returns the first clear bit in group g, without looking past the last
// block tracked by the bitmap.
func (bm *Bitmap) findFreeBit(g uint64) (addr.Addr, bool) {
	for bit := uint64(0); bit < common.NBITGROUP; bit++ {
		a := addr.MkAddr(g, bit)
		if a.Flatid() >= bm.nblocks {
			break
		}
		if bm.bmap[g]&a.Mask() == 0 {
			return a, true
		}
	}
	return addr.Addr{}, false
}

// Alloc marks the lowest free block in-use and returns its number.
func (bm *Bitmap) Alloc() (common.Bnum, error) {
	for g := uint64(0); g < bm.ngroups(); g++ {
		if bm.bmap[g] == full {
			continue
		}
		a, ok := bm.findFreeBit(g)
		if !ok {
			continue
		}
		bn := a.Flatid()
		if err := bm.Mark(bn); err != nil {
			return common.NULLBNUM, err
		}
		util.DPrintf(1, "Alloc: block %d\n", bn)
		return bn, nil
	}
	return common.NULLBNUM, errors.Wrap(common.ErrExhausted, "no free block")
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// NumUsed counts the set bits among the tracked blocks.
func (bm *Bitmap) NumUsed() uint64 {
	var count uint64
	last := bm.nblocks / common.NBITGROUP
	for g := uint64(0); g < last; g++ {
		count += popCnt(bm.bmap[g])
	}
	for bn := last * common.NBITGROUP; bn < bm.nblocks; bn++ {
		if bm.IsUsed(bn) {
			count++
		}
	}
	return count
}

func (bm *Bitmap) NumFree() uint64 {
	return bm.nblocks - bm.NumUsed()
}

// Used lists the in-use blocks in increasing order.
func (bm *Bitmap) Used() []common.Bnum {
	var bns []common.Bnum
	for bn := uint64(0); bn < bm.nblocks; bn++ {
		if bm.IsUsed(bn) {
			bns = append(bns, bn)
		}
	}
	return bns
}

// Block returns the bitmap as it is written to disk.
func (bm *Bitmap) Block() disk.Block {
	return bm.bmap
}
