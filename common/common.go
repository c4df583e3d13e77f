package common

const (
	BlockSize uint64 = 2048
	NBlocks   uint64 = 512 // whole image is 1 MiB
	NInodes   uint64 = 32
	NDirect   uint64 = 7
	NameLen   uint64 = 28

	// Bits in one bitmap group
	NBITGROUP uint64 = 8

	SUPERSZ  uint64 = 16 + 4*NInodes
	INODESZ  uint64 = 36 + 4*NDirect // on-disk size, 64 bytes
	DIRENTSZ uint64 = 4 + NameLen    // 32 bytes
	INODEBLK uint64 = BlockSize / INODESZ
	NDIRENT  uint64 = BlockSize / DIRENTSZ

	MAGIC   uint32 = 0x5F544F59 // "_TOY"
	INVALID uint32 = 0xdeadbeef
)

// Superblock flags
const (
	SB_CLEAN uint32 = 0
	SB_DIRTY uint32 = 1
)

// Inode allocation states in the superblock
const (
	INODE_FREE  uint32 = 0
	INODE_INUSE uint32 = 1
)

type Inum = uint64
type Bnum = uint64

const (
	SBBLOCK        Bnum = 0
	INODEBLOCK     Bnum = 1
	BITMAPBLOCK    Bnum = 2
	FIRSTDATABLOCK Bnum = 3
	LASTDATABLOCK  Bnum = NBlocks - 1

	ROOTINUM Inum = 0
	NULLINUM Inum = Inum(INVALID)
	NULLBNUM Bnum = Bnum(INVALID)
)
