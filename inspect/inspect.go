// Package inspect renders the metadata of an existing image.
//
// Every query reads the blocks it needs afresh; nothing is cached and
// nothing is written.
package inspect

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-toyfs/alloc"
	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/dir"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/inode"
	"github.com/mit-pdos/go-toyfs/meta"
	"github.com/mit-pdos/go-toyfs/super"
)

const rule = "===================="

type Inspector struct {
	d disk.Disk
}

func MkInspector(d disk.Disk) *Inspector {
	return &Inspector{d: d}
}

func (in *Inspector) Super(w io.Writer) error {
	sb, err := super.Load(in.d)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "s_magic: 0x%x\n", sb.Magic)
	fmt.Fprintf(w, "s_flags: %s\n", sb.FlagString())
	fmt.Fprintf(w, "Free inodes: %d\n", sb.NIFree)
	fmt.Fprintf(w, "Free blocks: %d\n", sb.NBFree)
	fmt.Fprintln(w, rule)
	return nil
}

func modeString(ip *inode.Inode) string {
	kind := "-"
	if ip.IsDir() {
		kind = "d"
	} else if !ip.IsReg() {
		kind = "?"
	}
	return fmt.Sprintf("%s%04o", kind, ip.Perm())
}

func addrString(ip *inode.Inode) string {
	var s []string
	for _, bn := range ip.AddrList() {
		s = append(s, fmt.Sprint(bn))
	}
	return strings.Join(s, ",")
}

// Inodes prints the allocation state of every inode slot and the usage of the
// in-use ones.
func (in *Inspector) Inodes(w io.Writer) error {
	sb, err := super.Load(in.d)
	if err != nil {
		return err
	}
	t, err := inode.Load(in.d)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, rule)
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintln(tw, "Num\tState\tMode\tLinks\tUid\tGid\tSize\tBlocks\tAddrs")
	for i := range t {
		inum := common.Inum(i)
		if sb.IsInodeFree(inum) {
			fmt.Fprintf(tw, "%d\tFREE\n", inum)
			continue
		}
		ip := t.Get(inum)
		fmt.Fprintf(tw, "%d\tINUSE\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n", inum,
			modeString(ip), ip.Nlink, ip.Uid, ip.Gid, ip.Size, ip.Blocks,
			addrString(ip))
	}
	return tw.Flush()
}

// DirBlock prints the entries of block bn read as a directory block. A block
// holding anything else prints whatever its bytes decode to.
func (in *Inspector) DirBlock(w io.Writer, bn common.Bnum) error {
	blk, err := in.d.Read(bn)
	if err != nil {
		return errors.Wrapf(err, "directory block %d", bn)
	}
	r := dir.NewReader(blk)
	for {
		e, ok := r.Next()
		if !ok {
			break
		}
		fmt.Fprintf(w, "Inode: %d - name: %s\n", e.Ino, e.Name)
	}
	return nil
}

// Bitmap prints the blocks marked in-use.
func (in *Inspector) Bitmap(w io.Writer) error {
	blk, err := in.d.Read(common.BITMAPBLOCK)
	if err != nil {
		return errors.Wrap(err, "load bitmap")
	}
	bm := alloc.LoadBitmap(super.Init(), blk)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Used blocks: %d\n", bm.NumUsed())
	fmt.Fprintf(w, "Free blocks: %d\n", bm.NumFree())
	var s []string
	for _, bn := range bm.Used() {
		s = append(s, fmt.Sprint(bn))
	}
	fmt.Fprintf(w, "In use: %s\n", strings.Join(s, " "))
	fmt.Fprintln(w, rule)
	return nil
}

// Check loads all metadata and reports every inconsistency it finds.
func (in *Inspector) Check() ([]string, error) {
	fs, err := meta.Load(in.d)
	if err != nil {
		return nil, err
	}
	c := &checker{fs: fs, owner: make(map[common.Bnum]common.Inum)}
	c.check()
	c.checkRoot(in.d)
	return c.problems, nil
}

// CheckReport prints the result of Check.
func (in *Inspector) CheckReport(w io.Writer) error {
	problems, err := in.Check()
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		fmt.Fprintln(w, "clean: no problems found")
		return nil
	}
	for _, p := range problems {
		fmt.Fprintf(w, "problem: %s\n", p)
	}
	fmt.Fprintf(w, "%d problems found\n", len(problems))
	return nil
}
