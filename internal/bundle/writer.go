package bundle

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/bricedupuy/chordshow/core/errors"
)

// CreateTarGz creates a tar.gz bundle from a source directory.
// The baseDir parameter specifies the directory name inside the bundle.
func CreateTarGz(srcDir, dstPath, baseDir string) error {
	outFile, err := createWithParent(dstPath)
	if err != nil {
		return err
	}
	defer outFile.Close()

	gw := gzip.NewWriter(outFile)
	defer gw.Close()

	return writeTree(gw, srcDir, baseDir)
}

// CreateTarXz creates a tar.xz bundle from a source directory.
// The baseDir parameter specifies the directory name inside the bundle.
func CreateTarXz(srcDir, dstPath, baseDir string) error {
	outFile, err := createWithParent(dstPath)
	if err != nil {
		return err
	}
	defer outFile.Close()

	xw, err := xz.NewWriter(outFile)
	if err != nil {
		return errors.NewIO("compress", dstPath, err)
	}
	defer xw.Close()

	return writeTree(xw, srcDir, baseDir)
}

// Create picks the compression from the destination suffix: .tar.xz or
// .tar.gz. The bundle's internal directory name is derived from the
// destination file name.
func Create(srcDir, dstPath string) error {
	base := filepath.Base(dstPath)
	switch {
	case strings.HasSuffix(base, ".tar.xz"):
		return CreateTarXz(srcDir, dstPath, strings.TrimSuffix(base, ".tar.xz"))
	case strings.HasSuffix(base, ".tar.gz"):
		return CreateTarGz(srcDir, dstPath, strings.TrimSuffix(base, ".tar.gz"))
	}
	return errors.NewUnsupported("bundle format", dstPath)
}

func createWithParent(dstPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return nil, errors.NewIO("mkdir", filepath.Dir(dstPath), err)
	}
	f, err := os.Create(dstPath)
	if err != nil {
		return nil, errors.NewIO("create", dstPath, err)
	}
	return f, nil
}

// writeTree streams srcDir into a tar stream under baseDir. Entry
// timestamps are normalized to the packing time.
func writeTree(w io.Writer, srcDir, baseDir string) error {
	tw := tar.NewWriter(w)
	defer tw.Close()

	now := time.Now()

	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		// Skip root directory
		if relPath == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}

		header.Name = baseDir + "/" + filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		}
		header.ModTime = now

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.IsDir() {
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			if _, err := io.Copy(tw, file); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return errors.NewIO("pack", srcDir, err)
	}
	return nil
}
