package dir

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
)

func TestNewBlock(t *testing.T) {
	ents := NewBlock()
	assert.Equal(t, int(common.NDIRENT), len(ents))
	for _, e := range ents {
		assert.True(t, e.IsFree())
		assert.Equal(t, "", e.Name)
	}
}

func TestRoundTrip(t *testing.T) {
	ents := NewBlock()
	ents[0] = MkEntry(0, ".")
	ents[1] = MkEntry(0, "..")
	ents[2] = MkEntry(1, "sunshine.txt")
	blk, err := Encode(ents)
	require.NoError(t, err)
	assert.Equal(t, int(disk.BlockSize), len(blk))

	assert.Equal(t, []Entry{
		{0, "."},
		{0, ".."},
		{1, "sunshine.txt"},
	}, Decode(blk))
}

func TestStopsAtSentinel(t *testing.T) {
	ents := []Entry{MkEntry(2, "a"), {Ino: common.NULLINUM}, MkEntry(3, "hidden")}
	blk, err := Encode(ents)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{2, "a"}}, Decode(blk))
}

func TestEmptyNameNotTerminator(t *testing.T) {
	// an entry is ended by its inode number, not by the contents of its name
	blk, err := Encode([]Entry{MkEntry(5, ""), MkEntry(6, "x")})
	require.NoError(t, err)
	assert.Equal(t, []Entry{{5, ""}, {6, "x"}}, Decode(blk))
}

func TestFullBlock(t *testing.T) {
	ents := make([]Entry, common.NDIRENT)
	for i := range ents {
		ents[i] = MkEntry(common.Inum(i%32), "f")
	}
	blk, err := Encode(ents)
	require.NoError(t, err)
	assert.Equal(t, ents, Decode(blk))
}

func TestNameLength(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyz01"
	assert.Equal(t, int(common.NameLen), len(long))
	blk, err := Encode([]Entry{MkEntry(1, long)})
	require.NoError(t, err)
	assert.Equal(t, long, Decode(blk)[0].Name, "a full-length name has no terminator")

	_, err = Encode([]Entry{MkEntry(1, long+"2")})
	assert.True(t, errors.Is(err, common.ErrNameTooLong))
}

func TestNameWithNul(t *testing.T) {
	_, err := Encode([]Entry{MkEntry(1, "a\x00b")})
	assert.True(t, errors.Is(err, common.ErrBadName))
	_, err = Encode([]Entry{MkEntry(1, "ok"), MkEntry(2, "\x00")})
	assert.True(t, errors.Is(err, common.ErrBadName))
}

func TestPaddingIgnored(t *testing.T) {
	blk, err := Encode([]Entry{MkEntry(1, "ab")})
	require.NoError(t, err)
	blk[4+3] = 'z'
	assert.Equal(t, "ab", Decode(blk)[0].Name)
}

func TestRecordLayout(t *testing.T) {
	blk, err := Encode([]Entry{MkEntry(1, "hi")})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 'h', 'i', 0}, blk[0:7])
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, blk[32:36])
}

func TestReaderLazy(t *testing.T) {
	blk, err := Encode([]Entry{MkEntry(7, "a"), MkEntry(8, "b")})
	require.NoError(t, err)
	r := NewReader(blk)
	e, ok := r.Next()
	assert.True(t, ok)
	assert.Equal(t, Entry{7, "a"}, e)
	e, ok = r.Next()
	assert.True(t, ok)
	assert.Equal(t, Entry{8, "b"}, e)
	_, ok = r.Next()
	assert.False(t, ok)
	_, ok = r.Next()
	assert.False(t, ok)
}

func TestSize(t *testing.T) {
	assert.Equal(t, uint32(96), Size(3))
}
