package inode

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/super"
)

func TestMkTable(t *testing.T) {
	tbl := MkTable()
	for i := range tbl {
		ip := tbl.Get(common.Inum(i))
		assert.Equal(t, uint32(0), ip.Mode)
		assert.Empty(t, ip.AddrList())
		for _, a := range ip.Addrs {
			assert.Equal(t, common.INVALID, a)
		}
	}
}

func TestAllocSequence(t *testing.T) {
	sb := super.Init()
	tbl := MkTable()
	var got []common.Inum
	for i := 0; i < int(common.NInodes); i++ {
		inum, err := tbl.Alloc(sb)
		require.NoError(t, err)
		got = append(got, inum)
	}
	for i, inum := range got {
		assert.Equal(t, common.Inum(i), inum)
	}

	inum, err := tbl.Alloc(sb)
	assert.True(t, errors.Is(err, common.ErrExhausted), "33rd allocation fails")
	assert.Equal(t, common.NULLINUM, inum)
	assert.Equal(t, uint32(0), sb.NIFree)
	for i := range sb.Inodes {
		assert.Equal(t, common.INODE_INUSE, sb.Inodes[i])
	}
}

func TestInitRecord(t *testing.T) {
	assert := assert.New(t)
	now := time.Unix(1600000000, 0)
	ip := &Inode{Size: 10, Uid: 4}
	ip.InitRecord(S_IFDIR|0755, now)
	assert.True(ip.IsDir())
	assert.False(ip.IsReg())
	assert.Equal(uint32(0755), ip.Perm())
	assert.Equal(uint32(1600000000), ip.Atime)
	assert.Equal(ip.Atime, ip.Mtime)
	assert.Equal(ip.Atime, ip.Ctime)
	assert.Equal(uint32(0), ip.Uid)
	assert.Equal(uint32(0), ip.Size)
	assert.Equal(uint32(0), ip.Blocks)
	assert.Empty(ip.AddrList())
}

func TestInitRecordDoesNotAllocate(t *testing.T) {
	sb := super.Init()
	tbl := MkTable()
	tbl.Get(5).InitRecord(S_IFREG|0644, time.Now())
	assert.True(t, sb.IsInodeFree(5))
	assert.Equal(t, uint32(common.NInodes), sb.NIFree)
}

func TestEncodeLayout(t *testing.T) {
	tbl := MkTable()
	ip := tbl.Get(1)
	ip.Mode = S_IFREG | 0755
	ip.Addrs[0] = 4
	blk := tbl.Encode()
	assert.Equal(t, int(disk.BlockSize), len(blk))
	off := common.INODESZ
	assert.Equal(t, []byte{0xed, 0x81, 0, 0}, blk[off:off+4])
	assert.Equal(t, []byte{4, 0, 0, 0}, blk[off+36:off+40])
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, blk[off+40:off+44])
}

func TestStoreLoad(t *testing.T) {
	d := disk.NewMemDisk(common.NBlocks)
	sb := super.Init()
	tbl := MkTable()
	inum, err := tbl.Alloc(sb)
	require.NoError(t, err)
	ip := tbl.Get(inum)
	ip.InitRecord(S_IFDIR|0755, time.Unix(42, 0))
	ip.Nlink = 3
	ip.Size = 96
	ip.Blocks = 1
	ip.Addrs[0] = 3
	require.NoError(t, tbl.Store(d))

	tbl2, err := Load(d)
	require.NoError(t, err)
	assert.Equal(t, tbl, tbl2)
	assert.Equal(t, []common.Bnum{3}, tbl2.Get(0).AddrList())
}
