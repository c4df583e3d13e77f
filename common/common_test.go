package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutSizes(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(144), SUPERSZ)
	assert.Equal(uint64(64), INODESZ)
	assert.Equal(uint64(32), DIRENTSZ)
	assert.Equal(NInodes, INODEBLK, "inode table fills exactly one block")
	assert.Equal(uint64(64), NDIRENT)
	assert.True(SUPERSZ <= BlockSize)
}

func TestSentinelOutOfRange(t *testing.T) {
	assert.True(t, NULLBNUM >= NBlocks, "sentinel must never be a block number")
	assert.True(t, NULLINUM >= NInodes, "sentinel must never be an inode number")
}
