package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/mkfs"
	"github.com/mit-pdos/go-toyfs/util"
)

const (
	exitOK     = 0
	exitOpen   = 1 // usage, open failure or unreadable bootstrap file
	exitFormat = 2
)

func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n\n%s [flags] DEVICE\n", args[0])
		flags.PrintDefaults()
	}
	file := flags.String("file", "sunshine.txt", "File copied into the root directory")
	debug := flags.Uint64("debug", 0, "Debug level")
	if err := flags.Parse(args[1:]); err != nil {
		return exitOpen
	}
	util.SetDebug(*debug)
	log := util.Logger()

	if flags.NArg() != 1 {
		flags.Usage()
		return exitOpen
	}

	opts, err := mkfs.LoadBootstrap(*file)
	if err != nil {
		log.Errorf("%v", err)
		return exitOpen
	}

	d, err := disk.NewFileDisk(flags.Arg(0), common.NBlocks)
	if err != nil {
		log.Errorf("unable to open block device: %v", err)
		return exitOpen
	}
	defer d.Close()

	if _, err := mkfs.Format(d, opts); err != nil {
		log.Errorf("%v", err)
		return exitFormat
	}
	util.DPrintf(0, "formatted %s\n", flags.Arg(0))
	return exitOK
}

func main() {
	os.Exit(run(os.Args, os.Stderr))
}
