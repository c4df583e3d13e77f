package inspect

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-toyfs/common"
	"github.com/mit-pdos/go-toyfs/util"
)

const Prompt = "toyfs_db > "

func help(w io.Writer) {
	fmt.Fprintln(w, "Choose an option: --")
	fmt.Fprintln(w, "\t q      - quit")
	fmt.Fprintln(w, "\t s      - print superblock")
	fmt.Fprintln(w, "\t si     - print inode usage")
	fmt.Fprintln(w, "\t d <n>  - print directory entries of block n")
	fmt.Fprintln(w, "\t b      - print block bitmap")
	fmt.Fprintln(w, "\t c      - check metadata consistency")
	fmt.Fprintln(w, "\t h      - show this message")
}

// parseBlock accepts both "d 3" and "d3".
func parseBlock(cmd string, args []string) (common.Bnum, error) {
	s := strings.TrimPrefix(cmd, "d")
	if s == "" && len(args) > 0 {
		s = args[0]
	}
	if s == "" {
		return 0, errors.New("missing block number")
	}
	bn, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Errorf("bad block number %q", s)
	}
	return bn, nil
}

// Exec runs one command line. It reports false when the shell should stop.
func (in *Inspector) Exec(w io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := fields[0], fields[1:]
	var err error
	switch {
	case cmd == "q":
		return false
	case cmd == "h":
		help(w)
	case cmd == "s":
		err = in.Super(w)
	case cmd == "si":
		err = in.Inodes(w)
	case cmd == "b":
		err = in.Bitmap(w)
	case cmd == "c":
		err = in.CheckReport(w)
	case strings.HasPrefix(cmd, "d"):
		var bn common.Bnum
		bn, err = parseBlock(cmd, args)
		if err == nil {
			err = in.DirBlock(w, bn)
		}
	case strings.HasPrefix(cmd, "s"):
		fmt.Fprintln(w, "Invalid superblock option")
	default:
		fmt.Fprintln(w, "Wrong option")
	}
	if err != nil {
		util.DPrintf(1, "Exec %q: %v\n", line, err)
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return true
}

// Shell reads commands from r until "q" or end of input. Failing commands
// are reported and the loop goes on.
func (in *Inspector) Shell(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, Prompt)
		if !sc.Scan() {
			fmt.Fprintln(w)
			return sc.Err()
		}
		if !in.Exec(w, sc.Text()) {
			return nil
		}
	}
}
