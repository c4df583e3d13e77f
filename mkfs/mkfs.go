// Package mkfs formats an image with a root directory holding one bootstrap
// file.
//
// Formatting is a fixed sequence of steps. The metadata is flushed once
// with only the reserved blocks marked and once more at the very end, so a
// failure anywhere in between leaves the image as the first flush wrote it.
package mkfs

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-toyfs/alloc"
	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/dir"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/inode"
	"github.com/mit-pdos/go-toyfs/meta"
	"github.com/mit-pdos/go-toyfs/super"
	"github.com/mit-pdos/go-toyfs/util"
)

type Step int

const (
	Start Step = iota
	SuperblockInit
	InodeTableInit
	BitmapInit
	ReserveMetadataBlocks
	FlushMetadata
	CreateRoot
	CreateBootstrapFile
	LinkRootEntries
	WriteDataBlocks
	FlushMetadataFinal
	Done
)

var stepNames = []string{
	"Start",
	"SuperblockInit",
	"InodeTableInit",
	"BitmapInit",
	"ReserveMetadataBlocks",
	"FlushMetadata",
	"CreateRoot",
	"CreateBootstrapFile",
	"LinkRootEntries",
	"WriteDataBlocks",
	"FlushMetadataFinal",
	"Done",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// StepError reports the step a format failed in.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("mkfs: %v: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

const (
	RootMode uint32 = inode.S_IFDIR | 0755
	FileMode uint32 = inode.S_IFREG | 0755
)

type Options struct {
	Name    string    // bootstrap file name in the root directory
	Content []byte    // at most one block
	Now     time.Time // zero means time.Now()
}

type formatter struct {
	d    disk.Disk
	opts Options
	step Step
	fs   *meta.Fs

	rootInum common.Inum
	root     *inode.Inode
	fileInum common.Inum
	file     *inode.Inode
	dirBlk   disk.Block
}

func (f *formatter) enter(s Step) {
	util.DPrintf(1, "mkfs: %v\n", s)
	f.step = s
}

// Format writes a fresh filesystem to d.
func Format(d disk.Disk, opts Options) (*meta.Fs, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	f := &formatter{d: d, opts: opts, step: Start}
	if err := f.run(); err != nil {
		return nil, &StepError{Step: f.step, Err: err}
	}
	return f.fs, nil
}

func (f *formatter) run() error {
	if uint64(len(f.opts.Content)) > common.BlockSize {
		return errors.Wrapf(common.ErrFileTooLarge, "%s: %d bytes", f.opts.Name, len(f.opts.Content))
	}
	if uint64(len(f.opts.Name)) > common.NameLen {
		return errors.Wrapf(common.ErrNameTooLong, "%q", f.opts.Name)
	}
	if f.d.Size() < common.NBlocks {
		return errors.Wrapf(common.ErrOutOfRange, "image has %d blocks, need %d", f.d.Size(), common.NBlocks)
	}

	f.enter(SuperblockInit)
	sb := super.Init()
	f.enter(InodeTableInit)
	t := inode.MkTable()
	f.enter(BitmapInit)
	bm := alloc.MkBitmap(sb)
	f.fs = &meta.Fs{Super: sb, Inodes: t, Bitmap: bm}

	f.enter(ReserveMetadataBlocks)
	if err := f.fs.Reserve(); err != nil {
		return err
	}

	f.enter(FlushMetadata)
	if err := f.fs.Flush(f.d); err != nil {
		return err
	}

	f.enter(CreateRoot)
	if err := f.createRoot(); err != nil {
		return err
	}

	f.enter(CreateBootstrapFile)
	if err := f.createFile(); err != nil {
		return err
	}

	f.enter(LinkRootEntries)
	if err := f.linkRoot(); err != nil {
		return err
	}

	f.enter(WriteDataBlocks)
	if err := f.writeData(); err != nil {
		return err
	}

	f.enter(FlushMetadataFinal)
	if err := f.fs.Flush(f.d); err != nil {
		return err
	}
	f.enter(Done)
	return nil
}

func (f *formatter) createRoot() error {
	inum, ip, err := f.fs.AllocInode(RootMode, f.opts.Now)
	if err != nil {
		return errors.Wrap(err, "root inode")
	}
	ip.Nlink = 3 // ".", ".." and the bootstrap file
	ip.Size = dir.Size(3)
	bn, err := f.fs.AllocBlock(ip)
	if err != nil {
		return errors.Wrap(err, "root block")
	}
	util.DPrintf(0, "root directory: inode %d block %d\n", inum, bn)
	f.rootInum = inum
	f.root = ip
	return nil
}

func (f *formatter) createFile() error {
	inum, ip, err := f.fs.AllocInode(FileMode, f.opts.Now)
	if err != nil {
		return errors.Wrapf(err, "%s inode", f.opts.Name)
	}
	ip.Nlink = 1
	ip.Size = uint32(len(f.opts.Content))
	bn, err := f.fs.AllocBlock(ip)
	if err != nil {
		return errors.Wrapf(err, "%s block", f.opts.Name)
	}
	util.DPrintf(0, "%s: inode %d block %d, %d bytes\n", f.opts.Name, inum, bn, ip.Size)
	f.fileInum = inum
	f.file = ip
	return nil
}

func (f *formatter) linkRoot() error {
	ents := dir.NewBlock()
	ents[0] = dir.MkEntry(f.rootInum, ".")
	ents[1] = dir.MkEntry(f.rootInum, "..")
	ents[2] = dir.MkEntry(f.fileInum, f.opts.Name)
	blk, err := dir.Encode(ents)
	if err != nil {
		return err
	}
	f.dirBlk = blk
	return nil
}

func (f *formatter) writeData() error {
	data := disk.NewBlock()
	copy(data, f.opts.Content)
	if err := f.d.Write(common.Bnum(f.file.Addrs[0]), data); err != nil {
		return errors.Wrapf(err, "%s data", f.opts.Name)
	}
	if err := f.d.Write(common.Bnum(f.root.Addrs[0]), f.dirBlk); err != nil {
		return errors.Wrap(err, "root entries")
	}
	return nil
}
