package marketplace

import (
	"io"
	"os"
	"path/filepath"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
)

// ErrSymlink is returned when a copied directory contains a symlink.
var ErrSymlink = errors.New("refusing to copy symlink")

// replaceDir copies src to a temporary sibling of dst, runs prepare on the
// copy, then swaps it into place. An existing dst is replaced. On failure
// dst is left untouched.
func replaceDir(src, dst string, prepare func(dir string) error) error {
	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, fileutil.DirPerm); err != nil {
		return errors.Wrapf(err, "creating directory %s", parent)
	}

	tmp, err := os.MkdirTemp(parent, ".pluginkit-*")
	if err != nil {
		return errors.Wrap(err, "creating temp directory")
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmp)
		}
	}()

	if err := os.Chmod(tmp, fileutil.DirPerm); err != nil {
		return errors.Wrap(err, "setting directory permissions")
	}
	if err := copyDir(src, tmp); err != nil {
		return err
	}
	if prepare != nil {
		if err := prepare(tmp); err != nil {
			return err
		}
	}

	if err := os.RemoveAll(dst); err != nil {
		return errors.Wrapf(err, "removing %s", dst)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return errors.Wrap(err, "renaming temp directory")
	}
	committed = true
	return nil
}

// copyDir recursively copies a directory from src to dst.
// dst is expected to already exist.
func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "reading directory %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			return errors.Wrapf(ErrSymlink, "%s", srcPath)
		case entry.IsDir():
			if err := os.MkdirAll(dstPath, fileutil.DirPerm); err != nil {
				return errors.Wrapf(err, "creating directory %s", dstPath)
			}
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// copyFile copies a single file from src to dst.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening source file %s", src)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return errors.Wrapf(err, "stating source file %s", src)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "creating destination file %s", dst)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.Wrapf(err, "copying %s to %s", src, dst)
	}

	return dstFile.Close()
}
