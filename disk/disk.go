package disk

import (
	"github.com/mit-pdos/go-toyfs/common"
)

// Block is a 2048-byte buffer
type Block = []byte

const BlockSize uint64 = common.BlockSize

// Disk provides whole-block access to a storage target
type Disk interface {
	// Read reads a disk block by address
	//
	// Expects a < Size().
	Read(a uint64) (Block, error)

	// ReadTo reads the disk block at a and stores the result in b
	//
	// Expects a < Size().
	ReadTo(a uint64, b Block) error

	// Write updates a disk block by address
	//
	// Expects a < Size().
	Write(a uint64, v Block) error

	// Size reports how big the disk is, in blocks
	Size() uint64

	// Barrier ensures data is persisted.
	//
	// When it returns, all outstanding writes are guaranteed to be durably on
	// disk
	Barrier() error

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}

func NewBlock() Block {
	return make(Block, BlockSize)
}
