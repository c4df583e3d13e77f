package disk

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/util"
)

var _ Disk = (*fileDisk)(nil)

type fileDisk struct {
	path      string
	fd        int
	numBlocks uint64
}

// NewFileDisk opens path for formatting, creating it if needed. A regular
// file shorter than numBlocks blocks is extended to the full size.
func NewFileDisk(path string, numBlocks uint64) (*fileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, errors.Wrapf(common.ErrOpen, "%s: %v", path, err)
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(common.ErrOpen, "%s: %v", path, err)
	}
	sz := int64(numBlocks * BlockSize)
	if (stat.Mode&unix.S_IFMT) == unix.S_IFREG && stat.Size < sz {
		err = unix.Ftruncate(fd, sz)
		if err != nil {
			unix.Close(fd)
			return nil, errors.Wrapf(common.ErrOpen, "%s: %v", path, err)
		}
	}
	util.DPrintf(1, "NewFileDisk: %s %d blocks\n", path, numBlocks)
	return &fileDisk{path, fd, numBlocks}, nil
}

// OpenFileDisk opens an existing image read-only.
func OpenFileDisk(path string) (*fileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(common.ErrOpen, "%s: %v", path, err)
	}
	util.DPrintf(1, "OpenFileDisk: %s\n", path)
	return &fileDisk{path, fd, common.NBlocks}, nil
}

func (d *fileDisk) ReadTo(a uint64, buf Block) error {
	if uint64(len(buf)) != BlockSize {
		panic("buffer is not block-sized")
	}
	if a >= d.numBlocks {
		return errors.Wrapf(common.ErrOutOfRange, "read at %d", a)
	}
	n, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	if err != nil {
		return errors.Wrapf(err, "read block %d", a)
	}
	if uint64(n) != BlockSize {
		return errors.Wrapf(common.ErrShortTransfer, "read block %d: %d bytes", a, n)
	}
	util.DPrintf(10, "read: %v\n", a)
	return nil
}

func (d *fileDisk) Read(a uint64) (Block, error) {
	buf := NewBlock()
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *fileDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		panic(fmt.Errorf("v is not block sized (%d bytes)", len(v)))
	}
	if a >= d.numBlocks {
		return errors.Wrapf(common.ErrOutOfRange, "write at %d", a)
	}
	n, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	if err != nil {
		return errors.Wrapf(err, "write block %d", a)
	}
	if uint64(n) != BlockSize {
		return errors.Wrapf(common.ErrShortTransfer, "write block %d: %d bytes", a, n)
	}
	util.DPrintf(10, "write: %v\n", a)
	return nil
}

func (d *fileDisk) Size() uint64 {
	return d.numBlocks
}

func (d *fileDisk) Barrier() error {
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier.
	err := unix.Fsync(d.fd)
	if err != nil {
		return errors.Wrapf(err, "fsync %s", d.path)
	}
	util.DPrintf(10, "barrier\n")
	return nil
}

func (d *fileDisk) Close() error {
	return unix.Close(d.fd)
}

var _ Disk = (*memDisk)(nil)

type memDisk struct {
	l      *sync.RWMutex
	blocks [][BlockSize]byte
}

func NewMemDisk(numBlocks uint64) *memDisk {
	blocks := make([][BlockSize]byte, numBlocks)
	return &memDisk{l: new(sync.RWMutex), blocks: blocks}
}

func (d *memDisk) ReadTo(a uint64, buf Block) error {
	if uint64(len(buf)) != BlockSize {
		panic("buffer is not block-sized")
	}
	d.l.RLock()
	defer d.l.RUnlock()
	if a >= uint64(len(d.blocks)) {
		return errors.Wrapf(common.ErrOutOfRange, "read at %d", a)
	}
	copy(buf, d.blocks[a][:])
	return nil
}

func (d *memDisk) Read(a uint64) (Block, error) {
	buf := NewBlock()
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *memDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		panic(fmt.Errorf("v is not block-sized (%d bytes)", len(v)))
	}
	d.l.Lock()
	defer d.l.Unlock()
	if a >= uint64(len(d.blocks)) {
		return errors.Wrapf(common.ErrOutOfRange, "write at %d", a)
	}
	copy(d.blocks[a][:], v)
	return nil
}

func (d *memDisk) Size() uint64 {
	// this never changes so we assume it's safe to run lock-free
	return uint64(len(d.blocks))
}

func (d *memDisk) Barrier() error { return nil }

func (d *memDisk) Close() error { return nil }
