package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundUp(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(4), RoundUp(10, 3))
	assert.Equal(uint64(3), RoundUp(9, 3), "exact division")
	assert.Equal(uint64(0), RoundUp(0, 3))
	assert.Equal(uint64(64), RoundUp(512, 8))
	assert.Equal(uint64(2), RoundUp(13, 8), "partial last group")
}

func TestCloneByteSlice(t *testing.T) {
	s := []byte{1, 2, 3}
	c := CloneByteSlice(s)
	c[0] = 9
	assert.Equal(t, byte(1), s[0])
}

func TestDPrintfLevel(t *testing.T) {
	var out bytes.Buffer
	old := logger.Out
	logger.SetOutput(&out)
	defer logger.SetOutput(old)
	defer SetDebug(Debug)

	SetDebug(0)
	DPrintf(1, "hidden %d", 1)
	assert.Equal(t, 0, out.Len())
	DPrintf(0, "shown %d", 2)
	assert.Contains(t, out.String(), "shown 2")

	SetDebug(5)
	DPrintf(3, "trace %d", 3)
	assert.Contains(t, out.String(), "trace 3")
}
