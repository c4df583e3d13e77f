package inode

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tchajed/marshal"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/super"
)

const (
	S_IFMT  uint32 = unix.S_IFMT
	S_IFDIR uint32 = unix.S_IFDIR
	S_IFREG uint32 = unix.S_IFREG
)

type Inode struct {
	Mode   uint32
	Nlink  uint32
	Atime  uint32
	Mtime  uint32
	Ctime  uint32
	Uid    uint32
	Gid    uint32
	Size   uint32
	Blocks uint32
	Addrs  [common.NDirect]uint32
}

// Table is the whole on-disk inode array; it fills exactly one block.
type Table [common.NInodes]Inode

func (ip *Inode) reset() {
	*ip = Inode{}
	for j := range ip.Addrs {
		ip.Addrs[j] = common.INVALID
	}
}

// MkTable returns a table with every field zero and every address unused.
func MkTable() *Table {
	t := &Table{}
	for i := range t {
		t[i].reset()
	}
	return t
}

// Alloc reserves the lowest free inode slot in sb and returns it. The
// record itself still has to be stamped with InitRecord.
func (t *Table) Alloc(sb *super.Superblock) (common.Inum, error) {
	inum, err := sb.AllocInode()
	if err != nil {
		return common.NULLINUM, err
	}
	return inum, nil
}

func (t *Table) Get(inum common.Inum) *Inode {
	return &t[inum]
}

// InitRecord stamps a freshly allocated inode. Size, block count and
// addresses are left empty.
func (ip *Inode) InitRecord(mode uint32, now time.Time) {
	ip.reset()
	tm := uint32(now.Unix())
	ip.Mode = mode
	ip.Atime = tm
	ip.Mtime = tm
	ip.Ctime = tm
}

func (ip *Inode) IsDir() bool {
	return ip.Mode&S_IFMT == S_IFDIR
}

func (ip *Inode) IsReg() bool {
	return ip.Mode&S_IFMT == S_IFREG
}

func (ip *Inode) Perm() uint32 {
	return ip.Mode &^ S_IFMT
}

// AddrList returns the used direct addresses in order.
func (ip *Inode) AddrList() []common.Bnum {
	var bns []common.Bnum
	for _, a := range ip.Addrs {
		if a != common.INVALID {
			bns = append(bns, common.Bnum(a))
		}
	}
	return bns
}

func (ip *Inode) encode(enc marshal.Enc) {
	enc.PutInt32(ip.Mode)
	enc.PutInt32(ip.Nlink)
	enc.PutInt32(ip.Atime)
	enc.PutInt32(ip.Mtime)
	enc.PutInt32(ip.Ctime)
	enc.PutInt32(ip.Uid)
	enc.PutInt32(ip.Gid)
	enc.PutInt32(ip.Size)
	enc.PutInt32(ip.Blocks)
	for _, a := range ip.Addrs {
		enc.PutInt32(a)
	}
}

func (ip *Inode) decode(dec marshal.Dec) {
	ip.Mode = dec.GetInt32()
	ip.Nlink = dec.GetInt32()
	ip.Atime = dec.GetInt32()
	ip.Mtime = dec.GetInt32()
	ip.Ctime = dec.GetInt32()
	ip.Uid = dec.GetInt32()
	ip.Gid = dec.GetInt32()
	ip.Size = dec.GetInt32()
	ip.Blocks = dec.GetInt32()
	for j := range ip.Addrs {
		ip.Addrs[j] = dec.GetInt32()
	}
}

func (t *Table) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	for i := range t {
		t[i].encode(enc)
	}
	return enc.Finish()
}

func Decode(blk disk.Block) *Table {
	dec := marshal.NewDec(blk)
	t := &Table{}
	for i := range t {
		t[i].decode(dec)
	}
	return t
}

func Load(d disk.Disk) (*Table, error) {
	blk, err := d.Read(common.INODEBLOCK)
	if err != nil {
		return nil, errors.Wrap(err, "load inode table")
	}
	return Decode(blk), nil
}

func (t *Table) Store(d disk.Disk) error {
	err := d.Write(common.INODEBLOCK, t.Encode())
	if err != nil {
		return errors.Wrap(err, "store inode table")
	}
	return nil
}
