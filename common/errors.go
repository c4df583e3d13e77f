package common

import (
	"github.com/pkg/errors"
)

var (
	// ErrOpen means the storage target could not be opened for the
	// required access.
	ErrOpen = errors.New("cannot open storage target")

	// ErrShortTransfer means a read or write moved less than a full block.
	ErrShortTransfer = errors.New("short block transfer")

	// ErrOutOfRange means a block number past the end of the image.
	ErrOutOfRange = errors.New("block out of range")

	// ErrExhausted means no free inode or no free block is left.
	ErrExhausted = errors.New("exhausted")

	// ErrInUse means an attempt to mark an inode or block that is not free.
	ErrInUse = errors.New("already in use")

	// ErrPartialMetadataWrite means a metadata flush stopped partway. The
	// image must be considered corrupted; only reformatting recovers it.
	ErrPartialMetadataWrite = errors.New("metadata partially written, filesystem corrupted")

	ErrNameTooLong  = errors.New("name too long")
	ErrBadName      = errors.New("name contains NUL byte")
	ErrFileTooLarge = errors.New("file too large")
)
