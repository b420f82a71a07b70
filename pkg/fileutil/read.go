package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/pluginkit/internal/errors"
)

// MaxFileSize is the default maximum size of a plugin resource file (100 KiB).
// Agent, command, and skill definitions larger than this are rejected.
const MaxFileSize = 100 * 1024

// ErrFileTooLarge indicates that a file exceeded the read limit.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// ReadFileWithLimit reads a file up to MaxFileSize.
// It returns an error if the file is larger than the limit.
func ReadFileWithLimit(path string) ([]byte, error) {
	return ReadFileWithMax(path, MaxFileSize)
}

// ReadFileWithMax reads a file of at most limit bytes.
// A limit of zero or less means MaxFileSize.
func ReadFileWithMax(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = MaxFileSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast when the size is already known to be too large
	info, err := f.Stat()
	if err == nil && info.Size() > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes (limit %d)", path, info.Size(), limit)
	}

	r := io.LimitReader(f, limit+1)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s exceeds %d bytes", path, limit)
	}

	return data, nil
}
