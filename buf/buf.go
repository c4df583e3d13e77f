// buf holds whole metadata blocks on their way to or from disk
package buf

import (
	"github.com/pkg/errors"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/util"
)

// A Buf is the in-memory copy of one disk block
type Buf struct {
	Blkno common.Bnum
	Data  disk.Block
}

func MkBuf(blkno common.Bnum, data disk.Block) *Buf {
	if uint64(len(data)) != disk.BlockSize {
		panic("buf is not block-sized")
	}
	b := &Buf{
		Blkno: blkno,
		Data:  data,
	}
	return b
}

// Load a disk block into a new buf
func MkBufLoad(d disk.Disk, blkno common.Bnum) (*Buf, error) {
	blk, err := d.Read(blkno)
	if err != nil {
		return nil, errors.Wrapf(err, "load block %d", blkno)
	}
	return MkBuf(blkno, blk), nil
}

// WriteDirect writes the whole block in place.
func (buf *Buf) WriteDirect(d disk.Disk) error {
	util.DPrintf(5, "%d: write direct\n", buf.Blkno)
	err := d.Write(buf.Blkno, buf.Data)
	if err != nil {
		return errors.Wrapf(err, "write block %d", buf.Blkno)
	}
	return nil
}
