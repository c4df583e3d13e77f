// Package meta keeps the in-memory metadata of an image and writes it back.
//
// Flush writes the bitmap, then the inode table, then the superblock. The
// superblock goes last so that an interrupted flush leaves free counters that
// over-report usage, never under-report it. There is no journal: a failed
// flush leaves the image corrupted.
package meta

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-toyfs/alloc"
	"github.com/mit-pdos/go-toyfs/buf"
	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/inode"
	"github.com/mit-pdos/go-toyfs/super"
	"github.com/mit-pdos/go-toyfs/util"
)

// FlushError reports a flush that stopped after Written of the three
// metadata blocks. It matches common.ErrPartialMetadataWrite and unwraps to
// the failure that stopped it.
type FlushError struct {
	Written int
	Err     error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("%v (%d of 3 blocks written): %v",
		common.ErrPartialMetadataWrite, e.Written, e.Err)
}

func (e *FlushError) Is(target error) bool {
	return target == common.ErrPartialMetadataWrite
}

func (e *FlushError) Unwrap() error {
	return e.Err
}

// Flush writes the three metadata blocks in order and stops at the first
// failure.
func Flush(d disk.Disk, bitmap, inodes, sb disk.Block) error {
	bufs := []*buf.Buf{
		buf.MkBuf(common.BITMAPBLOCK, bitmap),
		buf.MkBuf(common.INODEBLOCK, inodes),
		buf.MkBuf(common.SBBLOCK, sb),
	}
	for i, b := range bufs {
		if err := b.WriteDirect(d); err != nil {
			util.DPrintf(0, "Flush: %d of %d metadata blocks written, filesystem corrupted\n",
				i, len(bufs))
			return &FlushError{Written: i, Err: err}
		}
	}
	if err := d.Barrier(); err != nil {
		return &FlushError{Written: len(bufs), Err: err}
	}
	util.DPrintf(1, "Flush: metadata written\n")
	return nil
}

// Fs is the in-memory metadata of one image.
type Fs struct {
	Super  *super.Superblock
	Inodes *inode.Table
	Bitmap *alloc.Bitmap
}

// MkFs returns the metadata of an empty image: no inode in use and every
// block free.
func MkFs() *Fs {
	sb := super.Init()
	return &Fs{
		Super:  sb,
		Inodes: inode.MkTable(),
		Bitmap: alloc.MkBitmap(sb),
	}
}

// Load reads all three metadata blocks from d.
func Load(d disk.Disk) (*Fs, error) {
	var bufs [3]*buf.Buf
	for i, bn := range []common.Bnum{common.SBBLOCK, common.INODEBLOCK, common.BITMAPBLOCK} {
		b, err := buf.MkBufLoad(d, bn)
		if err != nil {
			return nil, errors.Wrap(err, "load metadata")
		}
		bufs[i] = b
	}
	sb := super.Decode(bufs[0].Data)
	return &Fs{
		Super:  sb,
		Inodes: inode.Decode(bufs[1].Data),
		Bitmap: alloc.LoadBitmap(sb, bufs[2].Data),
	}, nil
}

// Reserve marks the fixed metadata blocks in-use.
func (fs *Fs) Reserve() error {
	for _, bn := range []common.Bnum{common.SBBLOCK, common.INODEBLOCK, common.BITMAPBLOCK} {
		if err := fs.Bitmap.Mark(bn); err != nil {
			return err
		}
	}
	return nil
}

// AllocInode allocates the lowest free inode and stamps it with mode.
func (fs *Fs) AllocInode(mode uint32, now time.Time) (common.Inum, *inode.Inode, error) {
	inum, err := fs.Inodes.Alloc(fs.Super)
	if err != nil {
		return common.NULLINUM, nil, err
	}
	ip := fs.Inodes.Get(inum)
	ip.InitRecord(mode, now)
	return inum, ip, nil
}

// AllocBlock allocates a data block and appends it to the addresses of ip.
func (fs *Fs) AllocBlock(ip *inode.Inode) (common.Bnum, error) {
	slot := uint64(len(ip.AddrList()))
	if slot >= common.NDirect {
		return common.NULLBNUM, errors.Wrap(common.ErrFileTooLarge, "no free direct address")
	}
	bn, err := fs.Bitmap.Alloc()
	if err != nil {
		return common.NULLBNUM, err
	}
	ip.Addrs[slot] = uint32(bn)
	ip.Blocks++
	return bn, nil
}

func (fs *Fs) Flush(d disk.Disk) error {
	return Flush(d, fs.Bitmap.Block(), fs.Inodes.Encode(), fs.Super.Encode())
}
