package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mit-pdos/go-toyfs/disk"
	"github.com/mit-pdos/go-toyfs/inspect"
	"github.com/mit-pdos/go-toyfs/util"
)

const (
	exitOK   = 0
	exitOpen = 1 // usage or open failure
)

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n\n%s [flags] DEVICE\n", args[0])
		flags.PrintDefaults()
	}
	debug := flags.Uint64("debug", 0, "Debug level")
	if err := flags.Parse(args[1:]); err != nil {
		return exitOpen
	}
	util.SetDebug(*debug)

	if flags.NArg() != 1 {
		flags.Usage()
		return exitOpen
	}

	d, err := disk.OpenFileDisk(flags.Arg(0))
	if err != nil {
		util.Logger().Errorf("error opening device: %v", err)
		return exitOpen
	}
	defer d.Close()
	util.DPrintf(1, "device %s opened\n", flags.Arg(0))

	err = inspect.MkInspector(d).Shell(stdin, stdout)
	if err != nil {
		util.Logger().Errorf("%v", err)
	}
	return exitOK
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
