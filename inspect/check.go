package inspect

import (
	"fmt"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/dir"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/meta"
	"github.com/mit-pdos/go-toyfs/super"
)

type checker struct {
	fs       *meta.Fs
	owner    map[common.Bnum]common.Inum
	problems []string
}

func (c *checker) report(format string, a ...interface{}) {
	c.problems = append(c.problems, fmt.Sprintf(format, a...))
}

func (c *checker) check() {
	sb := c.fs.Super
	if sb.Magic != common.MAGIC {
		c.report("bad magic 0x%x, want 0x%x", sb.Magic, common.MAGIC)
	}
	if sb.State() == super.Invalid {
		c.report("invalid superblock flags 0x%x", sb.Flags)
	}
	if n := sb.NFreeInodes(); sb.NIFree != n {
		c.report("free inode count %d, but %d inodes are free", sb.NIFree, n)
	}
	for i, st := range sb.Inodes {
		if st != common.INODE_FREE && st != common.INODE_INUSE {
			c.report("inode %d has allocation state %d", i, st)
		}
	}
	c.checkBitmap()
	c.checkInodes()
}

func (c *checker) checkBitmap() {
	bm := c.fs.Bitmap
	if n := bm.NumFree(); uint64(c.fs.Super.NBFree) != n {
		c.report("free block count %d, but bitmap has %d free blocks", c.fs.Super.NBFree, n)
	}
	for _, bn := range []common.Bnum{common.SBBLOCK, common.INODEBLOCK, common.BITMAPBLOCK} {
		if !bm.IsUsed(bn) {
			c.report("metadata block %d not marked in bitmap", bn)
		}
	}
	blk := bm.Block()
	for i := common.NBlocks / common.NBITGROUP; i < uint64(len(blk)); i++ {
		if blk[i] != 0 {
			c.report("bitmap byte %d past the last block is 0x%x", i, blk[i])
			break
		}
	}
}

func (c *checker) checkInodes() {
	sb := c.fs.Super
	for i := range c.fs.Inodes {
		inum := common.Inum(i)
		ip := c.fs.Inodes.Get(inum)
		if sb.IsInodeFree(inum) {
			if len(ip.AddrList()) != 0 {
				c.report("free inode %d has block addresses", inum)
			}
			continue
		}
		for _, bn := range ip.AddrList() {
			if bn < common.FIRSTDATABLOCK || bn > common.LASTDATABLOCK {
				c.report("inode %d points at block %d outside the data area", inum, bn)
				continue
			}
			if other, ok := c.owner[bn]; ok {
				c.report("block %d owned by inodes %d and %d", bn, other, inum)
				continue
			}
			c.owner[bn] = inum
			if !c.fs.Bitmap.IsUsed(bn) {
				c.report("block %d of inode %d not marked in bitmap", bn, inum)
			}
		}
		if uint64(ip.Blocks) != uint64(len(ip.AddrList())) {
			c.report("inode %d counts %d blocks but has %d addresses", inum, ip.Blocks, len(ip.AddrList()))
		}
	}
	for _, bn := range c.fs.Bitmap.Used() {
		if bn < common.FIRSTDATABLOCK {
			continue
		}
		if _, ok := c.owner[bn]; !ok {
			c.report("block %d marked in bitmap but owned by no inode", bn)
		}
	}
}

// checkRoot verifies the entries of the root directory.
func (c *checker) checkRoot(d disk.Disk) {
	sb := c.fs.Super
	if sb.IsInodeFree(common.ROOTINUM) {
		if sb.NIFree != uint32(common.NInodes) {
			c.report("root inode %d is free", common.ROOTINUM)
		}
		return
	}
	root := c.fs.Inodes.Get(common.ROOTINUM)
	if !root.IsDir() {
		c.report("root inode is not a directory (mode 0%o)", root.Mode)
		return
	}
	bns := root.AddrList()
	if len(bns) == 0 {
		c.report("root directory has no block")
		return
	}
	if bns[0] < common.FIRSTDATABLOCK || bns[0] > common.LASTDATABLOCK {
		// already reported by checkInodes
		return
	}
	blk, err := d.Read(bns[0])
	if err != nil {
		c.report("root directory block %d unreadable: %v", bns[0], err)
		return
	}
	n := uint64(0)
	for _, e := range dir.Decode(blk) {
		n++
		if e.Ino >= common.NInodes || sb.IsInodeFree(e.Ino) {
			c.report("entry %q refers to unused inode %d", e.Name, e.Ino)
		}
	}
	if root.Size != dir.Size(n) {
		c.report("root directory size %d, but it holds %d entries", root.Size, n)
	}
}
