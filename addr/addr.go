package addr

import (
	"github.com/mit-pdos/go-toyfs/common"
)

// Addr identifies one bit of the block bitmap.
//
// Group is the index of the byte holding the bit and Bit is the location
// of the bit within that byte, least significant first. The block whose
// state the bit tracks is Flatid().
type Addr struct {
	Group uint64
	Bit   uint64
}

func (a Addr) Flatid() common.Bnum {
	return a.Group*common.NBITGROUP + a.Bit
}

func (a Addr) Mask() byte {
	return byte(1) << a.Bit
}

func MkAddr(group uint64, bit uint64) Addr {
	return Addr{Group: group, Bit: bit}
}

func MkBitAddr(bn common.Bnum) Addr {
	return MkAddr(bn/common.NBITGROUP, bn%common.NBITGROUP)
}
