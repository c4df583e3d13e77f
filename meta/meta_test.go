package meta

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/inode"
)

// recDisk records the order of writes and fails every write after the
// first okWrites of them.
type recDisk struct {
	disk.Disk
	writes   []common.Bnum
	okWrites int
}

func mkRecDisk(okWrites int) *recDisk {
	return &recDisk{Disk: disk.NewMemDisk(common.NBlocks), okWrites: okWrites}
}

func (d *recDisk) Write(a uint64, v disk.Block) error {
	if len(d.writes) >= d.okWrites {
		return errors.Wrapf(common.ErrShortTransfer, "write block %d: 0 bytes", a)
	}
	d.writes = append(d.writes, a)
	return d.Disk.Write(a, v)
}

func TestFlushOrder(t *testing.T) {
	d := mkRecDisk(10)
	fs := MkFs()
	require.NoError(t, fs.Reserve())
	require.NoError(t, fs.Flush(d))
	assert.Equal(t, []common.Bnum{common.BITMAPBLOCK, common.INODEBLOCK, common.SBBLOCK}, d.writes)
}

func TestFlushPartial(t *testing.T) {
	for ok := 0; ok < 3; ok++ {
		d := mkRecDisk(ok)
		fs := MkFs()
		err := fs.Flush(d)
		assert.True(t, errors.Is(err, common.ErrPartialMetadataWrite), "fail after %d writes", ok)
		assert.Equal(t, ok, len(d.writes), "no write attempted after the failure")
	}
}

func TestFlushKeepsCause(t *testing.T) {
	d := mkRecDisk(1)
	err := MkFs().Flush(d)
	assert.True(t, errors.Is(err, common.ErrPartialMetadataWrite))
	assert.True(t, errors.Is(err, common.ErrShortTransfer), "cause stays in the chain")
	var fe *FlushError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.Written)
	assert.Contains(t, err.Error(), "write block 1")
}

func TestFlushPartialLeavesOldSuper(t *testing.T) {
	d := mkRecDisk(10)
	fs := MkFs()
	require.NoError(t, fs.Reserve())
	require.NoError(t, fs.Flush(d))

	_, ip, err := fs.AllocInode(inode.S_IFDIR|0755, time.Now())
	require.NoError(t, err)
	_, err = fs.AllocBlock(ip)
	require.NoError(t, err)
	d.okWrites = len(d.writes) + 2
	err = fs.Flush(d)
	require.Error(t, err)

	// bitmap and inode table are new, superblock still old
	fs2, err := Load(d)
	require.NoError(t, err)
	assert.Equal(t, uint32(common.NBlocks-3), fs2.Super.NBFree)
	assert.Equal(t, uint64(4), fs2.Bitmap.NumUsed())
	assert.True(t, uint64(fs2.Super.NBFree) >= fs2.Bitmap.NumFree(), "usage is never under-reported")
}

func TestLoadRoundTrip(t *testing.T) {
	d := disk.NewMemDisk(common.NBlocks)
	fs := MkFs()
	require.NoError(t, fs.Reserve())
	inum, ip, err := fs.AllocInode(inode.S_IFREG|0644, time.Unix(7, 0))
	require.NoError(t, err)
	bn, err := fs.AllocBlock(ip)
	require.NoError(t, err)
	require.NoError(t, fs.Flush(d))

	fs2, err := Load(d)
	require.NoError(t, err)
	assert.Equal(t, fs.Super, fs2.Super)
	assert.Equal(t, fs.Inodes, fs2.Inodes)
	assert.Equal(t, fs.Bitmap.Block(), fs2.Bitmap.Block())
	assert.Equal(t, []common.Bnum{bn}, fs2.Inodes.Get(inum).AddrList())
	assert.Equal(t, uint32(1), fs2.Inodes.Get(inum).Blocks)
}

func TestReserveTwice(t *testing.T) {
	fs := MkFs()
	require.NoError(t, fs.Reserve())
	assert.Equal(t, uint32(common.NBlocks-3), fs.Super.NBFree)
	err := fs.Reserve()
	assert.True(t, errors.Is(err, common.ErrInUse))
}

func TestAllocBlockDirectLimit(t *testing.T) {
	fs := MkFs()
	_, ip, err := fs.AllocInode(inode.S_IFREG|0644, time.Now())
	require.NoError(t, err)
	for i := uint64(0); i < common.NDirect; i++ {
		_, err := fs.AllocBlock(ip)
		require.NoError(t, err)
	}
	free := fs.Super.NBFree
	_, err = fs.AllocBlock(ip)
	assert.True(t, errors.Is(err, common.ErrFileTooLarge))
	assert.Equal(t, free, fs.Super.NBFree)
	assert.Equal(t, uint32(common.NDirect), ip.Blocks)
}
