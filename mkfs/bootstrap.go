package mkfs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-toyfs/common"
)

// ReadContent reads all of r, which must fit in one block.
func ReadContent(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(common.BlockSize)+1))
	if err != nil {
		return nil, errors.Wrap(err, "read bootstrap file")
	}
	if uint64(len(data)) > common.BlockSize {
		return nil, errors.Wrapf(common.ErrFileTooLarge, "more than %d bytes", common.BlockSize)
	}
	return data, nil
}

// LoadBootstrap reads the file at path and names it after its base name.
func LoadBootstrap(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, errors.Wrap(err, "open bootstrap file")
	}
	defer f.Close()
	data, err := ReadContent(f)
	if err != nil {
		return Options{}, errors.Wrap(err, path)
	}
	return Options{Name: filepath.Base(path), Content: data}, nil
}
